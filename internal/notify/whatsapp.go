// internal/notify/whatsapp.go
package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"vitalscan/internal/common/config"
	"vitalscan/internal/common/logger"
)

// MessageChannel delivers the report over an instant-messaging gateway.
type MessageChannel interface {
	SendReport(msg *ReportMessage) error
}

// WhatsAppSender posts lead messages to the WhatsApp gateway. The gateway
// picks up the PDF from a shared path, so the file must exist locally
// before the send.
type WhatsAppSender struct {
	baseURL       string
	client        *http.Client
	postSendPause time.Duration
	companyName   string
	logger        logger.Logger
}

func NewWhatsAppSender(cfg config.WhatsAppConfig, companyName string, log logger.Logger) *WhatsAppSender {
	return &WhatsAppSender{
		baseURL: cfg.BaseURL,
		client: &http.Client{
			Timeout: config.GetDuration(cfg.Timeout),
		},
		postSendPause: config.GetDuration(cfg.PostSendPause),
		companyName:   companyName,
		logger:        log,
	}
}

// messageFor returns the caller-supplied text when one is set, otherwise
// the personalized default with the itemized report contents.
func (w *WhatsAppSender) messageFor(msg *ReportMessage) string {
	if msg.MessageOverride != "" {
		return msg.MessageOverride
	}

	name := msg.Name
	if name == "" {
		name = "there"
	}

	return fmt.Sprintf(
		"Hello %s!\n\n"+
			"Your %s health diagnostic report is ready. We took a close look "+
			"at your answers and attached the detailed PDF report.\n\n"+
			"The report includes:\n"+
			"- An assessment of your overall wellbeing\n"+
			"- An analysis of your lifestyle habits\n"+
			"- Personalized recommendations\n"+
			"- Next steps to improve your wellbeing\n\n"+
			"We have also sent the report to your email.\n\n"+
			"Would you like to book a call to review the results together? "+
			"A wellness advisor is happy to help.",
		name, w.companyName,
	)
}

type leadRequest struct {
	Message string `json:"message"`
	Phone   string `json:"phone"`
	PDFPath string `json:"pdfPath,omitempty"`
}

// SendReport posts the lead to the gateway and then pauses briefly, which
// keeps bursts of jobs under the gateway's rate limit.
func (w *WhatsAppSender) SendReport(msg *ReportMessage) error {
	phone := NormalizePhone(msg.Phone)
	if phone == "" {
		return fmt.Errorf("no usable phone number")
	}

	pdfPath := msg.PDFPath
	if pdfPath != "" {
		if _, err := os.Stat(pdfPath); err != nil {
			w.logger.WithError(err).Warn("report file missing, sending message without it", map[string]interface{}{
				"diagnostic_id": msg.DiagnosticID,
			})
			pdfPath = ""
		}
	}

	req := leadRequest{
		Message: w.messageFor(msg),
		Phone:   phone,
		PDFPath: pdfPath,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode lead request: %w", err)
	}

	resp, err := w.client.Post(w.baseURL+"/lead", "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post lead: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	// Some gateway versions reply with plain text, so a decode failure is
	// not an error.
	var ack map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&ack); err == nil {
		w.logger.Debug("gateway acknowledged lead", map[string]interface{}{
			"diagnostic_id": msg.DiagnosticID,
			"response":      ack,
		})
	}

	if w.postSendPause > 0 {
		time.Sleep(w.postSendPause)
	}

	return nil
}
