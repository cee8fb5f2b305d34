// internal/profile/profile.go
package profile

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DiagnosticProfile is the normalized form of one questionnaire submission.
// Every answer stays a string exactly as the respondent gave it; only BMI
// is derived, and only when weight and height both parse as numbers.
type DiagnosticProfile struct {
	Name             string   `json:"name"`
	Surname          string   `json:"surname"`
	Email            string   `json:"email"`
	Phone            string   `json:"phone"`
	Age              string   `json:"age"`
	Gender           string   `json:"gender"`
	Weight           string   `json:"weight"`
	Height           string   `json:"height"`
	BMI              *float64 `json:"bmi,omitempty"`
	BloodPressure    string   `json:"blood_pressure"`
	Pulse            string   `json:"pulse"`
	EnergyLevel      string   `json:"energy_level"`
	SleepHabits      string   `json:"sleep_habits"`
	EatingHabits     string   `json:"eating_habits"`
	PhysicalActivity string   `json:"physical_activity"`
	StressLevel      string   `json:"stress_level"`
	Symptoms         string   `json:"symptoms"`
	MedicalHistory   string   `json:"medical_history"`
	Objectives       string   `json:"objectives"`
	Comments         string   `json:"comments"`
	SurveyorName     string   `json:"surveyor_name"`
	SurveyorID       string   `json:"surveyor_id"`

	// Filled in by the narrative generator after submission.
	Diagnosis       string `json:"diagnosis,omitempty"`
	Recommendations string `json:"recommendations,omitempty"`
}

// FullName joins name and surname, tolerating either being blank.
func (p *DiagnosticProfile) FullName() string {
	return strings.TrimSpace(p.Name + " " + p.Surname)
}

// Normalize builds a DiagnosticProfile from a raw submission map. Values may
// be strings or string slices (multi-select questions); slices are joined
// with ", ". Unknown keys are ignored, missing keys become empty strings.
func Normalize(raw map[string]interface{}) *DiagnosticProfile {
	p := &DiagnosticProfile{
		Name:             field(raw, "name"),
		Surname:          field(raw, "surname"),
		Email:            field(raw, "email"),
		Phone:            field(raw, "phone"),
		Age:              field(raw, "age"),
		Gender:           field(raw, "gender"),
		Weight:           field(raw, "weight"),
		Height:           field(raw, "height"),
		BloodPressure:    field(raw, "blood_pressure"),
		Pulse:            field(raw, "pulse"),
		EnergyLevel:      field(raw, "energy_level"),
		SleepHabits:      field(raw, "sleep_habits"),
		EatingHabits:     field(raw, "eating_habits"),
		PhysicalActivity: field(raw, "physical_activity"),
		StressLevel:      field(raw, "stress_level"),
		Symptoms:         field(raw, "symptoms"),
		MedicalHistory:   field(raw, "medical_history"),
		Objectives:       field(raw, "objectives"),
		Comments:         field(raw, "comments"),
		SurveyorName:     field(raw, "surveyor_name"),
		SurveyorID:       field(raw, "surveyor_id"),
	}

	p.BMI = ComputeBMI(p.Weight, p.Height)
	return p
}

// field extracts a single answer, joining multi-select slices with ", ".
func field(raw map[string]interface{}, key string) string {
	v, ok := raw[key]
	if !ok || v == nil {
		return ""
	}

	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case []string:
		return joinNonEmpty(val)
	case []interface{}:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				parts = append(parts, s)
			} else if item != nil {
				parts = append(parts, fmt.Sprintf("%v", item))
			}
		}
		return joinNonEmpty(parts)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", val))
	}
}

func joinNonEmpty(parts []string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}

// ComputeBMI derives body mass index from weight in kilograms and height in
// meters, rounded to two decimals. Returns nil when either value does not
// parse or height is not positive; the profile then simply carries no BMI.
func ComputeBMI(weight, height string) *float64 {
	w, errW := strconv.ParseFloat(strings.TrimSpace(weight), 64)
	h, errH := strconv.ParseFloat(strings.TrimSpace(height), 64)
	if errW != nil || errH != nil || h <= 0 || w <= 0 {
		return nil
	}

	bmi := math.Round(w/(h*h)*100) / 100
	return &bmi
}

// BMICategory maps a BMI value to the standard WHO label.
func BMICategory(bmi float64) string {
	switch {
	case bmi < 18.5:
		return "Underweight"
	case bmi < 25:
		return "Normal weight"
	case bmi < 30:
		return "Overweight"
	case bmi < 35:
		return "Obesity class I"
	case bmi < 40:
		return "Obesity class II"
	default:
		return "Obesity class III"
	}
}
