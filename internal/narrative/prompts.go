// internal/narrative/prompts.go
package narrative

import (
	"fmt"
	"strings"

	"vitalscan/internal/profile"
)

const diagnosisSystemPrompt = `You are an experienced wellness advisor. ` +
	`Based on the health questionnaire answers provided, write a clear, ` +
	`empathetic diagnostic summary of the person's current state of health ` +
	`and wellbeing. Address the person directly by name. Highlight risk ` +
	`areas and strengths. Do not prescribe medication and do not claim to ` +
	`replace a medical professional.`

const recommendationSystemPrompt = `You are an experienced wellness advisor ` +
	`for a nutrition company. Based on the diagnostic summary and the ` +
	`questionnaire answers, recommend concrete lifestyle changes and suggest ` +
	`suitable products from the catalog below. Explain briefly why each ` +
	`recommended product fits this person. Keep a warm, encouraging tone.`

// productCatalog is embedded verbatim into every recommendation prompt so
// the model only suggests products the company actually sells.
const productCatalog = `Product catalog:
- Formula 1 Nutritional Shake: balanced meal replacement with protein, fiber and micronutrients.
- Herbal Tea Concentrate: low-calorie instant tea for energy and metabolism support.
- Protein Drink Mix: 15g protein per serving, supports satiety and muscle maintenance.
- Aloe Concentrate: soothing digestive support drink.
- Multivitamin Complex: daily vitamins and minerals for general wellbeing.
- Fiber and Herb Tablets: supplemental fiber for digestive regularity.
- Omega-3 Fish Oil: EPA and DHA for heart and brain health.
- Calcium Plus: calcium with vitamin D for bone health.
- Night Recovery Drink: relaxing evening drink supporting restful sleep.
- Energy Sports Drink: electrolytes and carbohydrates for active days.
- Protein Bars: convenient high-protein snack.
- Collagen Beauty Booster: collagen peptides for skin, hair and nails.`

// diagnosisUserPrompt lays out every questionnaire answer for the model.
func diagnosisUserPrompt(p *profile.DiagnosticProfile) string {
	var b strings.Builder

	b.WriteString("Health questionnaire answers:\n")
	writeLine(&b, "Name", p.FullName())
	writeLine(&b, "Age", p.Age)
	writeLine(&b, "Gender", p.Gender)
	writeLine(&b, "Weight (kg)", p.Weight)
	writeLine(&b, "Height (m)", p.Height)
	if p.BMI != nil {
		writeLine(&b, "BMI", fmt.Sprintf("%.2f (%s)", *p.BMI, profile.BMICategory(*p.BMI)))
	}
	writeLine(&b, "Blood pressure", p.BloodPressure)
	writeLine(&b, "Pulse", p.Pulse)
	writeLine(&b, "Energy level", p.EnergyLevel)
	writeLine(&b, "Sleep habits", p.SleepHabits)
	writeLine(&b, "Eating habits", p.EatingHabits)
	writeLine(&b, "Physical activity", p.PhysicalActivity)
	writeLine(&b, "Stress level", p.StressLevel)
	writeLine(&b, "Symptoms", p.Symptoms)
	writeLine(&b, "Medical history", p.MedicalHistory)
	writeLine(&b, "Objectives", p.Objectives)
	writeLine(&b, "Additional comments", p.Comments)

	return b.String()
}

// recommendationUserPrompt chains the generated diagnosis with the catalog.
func recommendationUserPrompt(p *profile.DiagnosticProfile, diagnosis string) string {
	var b strings.Builder

	b.WriteString("Diagnostic summary:\n")
	b.WriteString(diagnosis)
	b.WriteString("\n\n")
	b.WriteString(diagnosisUserPrompt(p))
	b.WriteString("\n")
	b.WriteString(productCatalog)

	return b.String()
}

func writeLine(b *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, "- %s: %s\n", label, value)
}
