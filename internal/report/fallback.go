// internal/report/fallback.go
package report

import (
	"context"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"vitalscan/internal/profile"
	"vitalscan/internal/store"
)

// FallbackEngine builds the PDF procedurally. It needs no external binary,
// so it always works, at the cost of a plainer layout.
type FallbackEngine struct {
	branding Branding
}

func NewFallbackEngine(branding Branding) *FallbackEngine {
	return &FallbackEngine{branding: branding}
}

func (e *FallbackEngine) Render(_ context.Context, rec *store.StoredDiagnostic, outPath string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	// Uncompressed output keeps the text searchable in the raw bytes.
	pdf.SetCompression(false)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetTextColor(26, 110, 74)
	pdf.CellFormat(0, 12, tr(e.branding.CompanyName+" Health Diagnostic Report"), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(90, 90, 90)
	if e.branding.Tagline != "" {
		pdf.CellFormat(0, 6, tr(e.branding.Tagline), "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(0, 6, "Generated on "+rec.CreatedAt.Format("02-01-2006"), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	e.sectionTitle(pdf, tr, "Personal Information")
	e.infoRow(pdf, tr, "Name", rec.Profile.FullName())
	e.infoRow(pdf, tr, "Age", rec.Profile.Age)
	e.infoRow(pdf, tr, "Gender", rec.Profile.Gender)
	e.infoRow(pdf, tr, "Weight (kg)", rec.Profile.Weight)
	e.infoRow(pdf, tr, "Height (m)", rec.Profile.Height)
	if rec.Profile.BMI != nil {
		e.infoRow(pdf, tr, "BMI", fmt.Sprintf("%.2f (%s)", *rec.Profile.BMI, profile.BMICategory(*rec.Profile.BMI)))
	}
	e.infoRow(pdf, tr, "Blood pressure", rec.Profile.BloodPressure)
	e.infoRow(pdf, tr, "Pulse", rec.Profile.Pulse)
	e.infoRow(pdf, tr, "Reported symptoms", rec.Profile.Symptoms)
	pdf.Ln(4)

	e.sectionTitle(pdf, tr, "Diagnostic Summary")
	e.paragraphs(pdf, tr, rec.Profile.Diagnosis)
	pdf.Ln(4)

	e.sectionTitle(pdf, tr, "Recommendations")
	e.paragraphs(pdf, tr, rec.Profile.Recommendations)
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	contact := e.branding.CompanyName
	if e.branding.ContactEmail != "" {
		contact += " - " + e.branding.ContactEmail
	}
	if e.branding.ContactPhone != "" {
		contact += " - " + e.branding.ContactPhone
	}
	pdf.MultiCell(0, 4, tr(contact), "", "L", false)
	pdf.MultiCell(0, 4, tr("This report is a wellness orientation and does not replace professional medical advice."), "", "L", false)

	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write fallback pdf: %w", err)
	}

	return nil
}

func (e *FallbackEngine) sectionTitle(pdf *gofpdf.Fpdf, tr func(string) string, title string) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.SetTextColor(26, 110, 74)
	pdf.CellFormat(0, 8, tr(title), "B", 1, "L", false, 0, "")
	pdf.Ln(2)
}

func (e *FallbackEngine) infoRow(pdf *gofpdf.Fpdf, tr func(string) string, label, value string) {
	if value == "" {
		return
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetTextColor(44, 62, 80)
	pdf.CellFormat(50, 6, tr(label), "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(0, 6, tr(value), "", "L", false)
}

func (e *FallbackEngine) paragraphs(pdf *gofpdf.Fpdf, tr func(string) string, text string) {
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(44, 62, 80)
	for _, para := range splitParagraphs(text) {
		pdf.MultiCell(0, 5, tr(para), "", "L", false)
		pdf.Ln(2)
	}
}
