// internal/notify/email_test.go
package notify

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vitalscan/internal/common/config"
	"vitalscan/internal/common/logger"
)

func newTestEmailer() *SMTPEmailer {
	return NewSMTPEmailer(
		config.SMTPConfig{
			Host:        "smtp.example.com",
			Port:        587,
			Username:    "reports@welltechflow.example",
			Password:    "secret",
			DefaultFrom: "reports@welltechflow.example",
		},
		config.BrandingConfig{
			CompanyName: "WellTechFlow",
			Facebook:    "https://facebook.com/welltechflow",
			Instagram:   "https://instagram.com/welltechflow",
		},
		"https://app.welltechflow.example",
		logger.NewNoOpLogger(),
	)
}

func TestRenderBody_ContainsLinksAndBranding(t *testing.T) {
	s := newTestEmailer()

	body, err := s.renderBody(&ReportMessage{
		DiagnosticID: "job-1",
		Name:         "Maria",
	})
	require.NoError(t, err)

	assert.Contains(t, body, "Hello Maria")
	assert.Contains(t, body, "WellTechFlow")
	assert.Contains(t, body, "https://app.welltechflow.example/view-report/job-1")
	assert.Contains(t, body, "https://app.welltechflow.example/schedule/job-1")
	assert.Contains(t, body, "https://facebook.com/welltechflow")
}

func TestBuildMIME_WithAttachment(t *testing.T) {
	s := newTestEmailer()

	pdfPath := filepath.Join(t.TempDir(), "diagnostic_job-1.pdf")
	require.NoError(t, os.WriteFile(pdfPath, []byte("%PDF-stub"), 0o644))

	msg := &ReportMessage{
		DiagnosticID: "job-1",
		Name:         "Maria",
		Email:        "maria@example.com",
		PDFPath:      pdfPath,
	}
	body, err := s.renderBody(msg)
	require.NoError(t, err)

	raw, err := s.buildMIME(msg, body)
	require.NoError(t, err)

	content := string(raw)
	assert.Contains(t, content, "To: maria@example.com")
	assert.Contains(t, content, "Content-Type: multipart/mixed")
	assert.Contains(t, content, "Content-Type: application/pdf")
	assert.Contains(t, content, `filename="diagnostic_job-1.pdf"`)
}

func TestBuildMIME_WithoutAttachment(t *testing.T) {
	s := newTestEmailer()

	msg := &ReportMessage{
		DiagnosticID: "job-2",
		Name:         "Maria",
		Email:        "maria@example.com",
	}
	body, err := s.renderBody(msg)
	require.NoError(t, err)

	raw, err := s.buildMIME(msg, body)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "application/pdf")
}

func TestBuildMIME_MissingAttachmentFile(t *testing.T) {
	s := newTestEmailer()

	msg := &ReportMessage{
		DiagnosticID: "job-3",
		Email:        "maria@example.com",
		PDFPath:      "/nonexistent/report.pdf",
	}
	_, err := s.buildMIME(msg, "<html></html>")
	assert.Error(t, err)
}
