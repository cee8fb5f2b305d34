// internal/notify/whatsapp_test.go
package notify

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vitalscan/internal/common/config"
	"vitalscan/internal/common/logger"
)

func newTestSender(t *testing.T, handler http.HandlerFunc) *WhatsAppSender {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewWhatsAppSender(config.WhatsAppConfig{
		BaseURL: srv.URL,
		Timeout: 5000,
		// No pause in tests.
		PostSendPause: 0,
	}, "WellTechFlow", logger.NewNoOpLogger())
}

func TestWhatsAppSender_PostsNormalizedLead(t *testing.T) {
	pdfPath := filepath.Join(t.TempDir(), "report.pdf")
	require.NoError(t, os.WriteFile(pdfPath, []byte("%PDF-stub"), 0o644))

	var got leadRequest
	sender := newTestSender(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/lead", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "queued"})
	})

	err := sender.SendReport(&ReportMessage{
		DiagnosticID: "job-1",
		Name:         "Maria",
		Phone:        "+593-098-284-0685",
		PDFPath:      pdfPath,
	})
	require.NoError(t, err)

	assert.Equal(t, "593982840685", got.Phone)
	assert.Equal(t, pdfPath, got.PDFPath)
	assert.Contains(t, got.Message, "Hello Maria")
	assert.Contains(t, got.Message, "WellTechFlow")

	// The default text itemizes what the report contains.
	assert.Contains(t, got.Message, "The report includes:")
	assert.Contains(t, got.Message, "assessment of your overall wellbeing")
	assert.Contains(t, got.Message, "analysis of your lifestyle habits")
	assert.Contains(t, got.Message, "Personalized recommendations")
	assert.Contains(t, got.Message, "Next steps")
}

func TestWhatsAppSender_MessageOverride(t *testing.T) {
	var got leadRequest
	sender := newTestSender(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	})

	err := sender.SendReport(&ReportMessage{
		DiagnosticID:    "job-5",
		Name:            "Maria",
		Phone:           "593982840685",
		MessageOverride: "Custom campaign text.",
	})
	require.NoError(t, err)

	assert.Equal(t, "Custom campaign text.", got.Message)
	assert.NotContains(t, got.Message, "The report includes:")
}

func TestWhatsAppSender_MissingPDFSendsWithoutAttachment(t *testing.T) {
	var got leadRequest
	sender := newTestSender(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	})

	err := sender.SendReport(&ReportMessage{
		DiagnosticID: "job-2",
		Name:         "Maria",
		Phone:        "593982840685",
		PDFPath:      "/nonexistent/report.pdf",
	})
	require.NoError(t, err)
	assert.Empty(t, got.PDFPath)
}

func TestWhatsAppSender_GatewayErrorStatus(t *testing.T) {
	sender := newTestSender(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	err := sender.SendReport(&ReportMessage{
		DiagnosticID: "job-3",
		Phone:        "593982840685",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestWhatsAppSender_NoPhone(t *testing.T) {
	sender := newTestSender(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("gateway must not be called without a phone number")
	})

	err := sender.SendReport(&ReportMessage{DiagnosticID: "job-4", Phone: "+- "})
	assert.Error(t, err)
}
