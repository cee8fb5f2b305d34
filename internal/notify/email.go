// internal/notify/email.go
package notify

import (
	"bytes"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"html/template"
	"mime"
	"net/smtp"
	"os"
	"path/filepath"
	"strings"

	"vitalscan/internal/common/config"
	"vitalscan/internal/common/logger"
)

// EmailChannel delivers the report by email. The interface exists so the
// dispatcher can be tested with a stub instead of a live SMTP server.
type EmailChannel interface {
	SendReport(msg *ReportMessage) error
}

// ReportMessage is everything a channel needs to notify one respondent.
// Name carries the respondent's first name for greetings.
type ReportMessage struct {
	DiagnosticID string
	Name         string
	Email        string
	Phone        string
	PDFPath      string

	// MessageOverride replaces the generated messaging text when set.
	MessageOverride string
}

// SMTPEmailer sends branded HTML mail over SMTP with STARTTLS.
type SMTPEmailer struct {
	cfg      config.SMTPConfig
	branding config.BrandingConfig
	baseURL  string
	logger   logger.Logger
}

func NewSMTPEmailer(cfg config.SMTPConfig, branding config.BrandingConfig, baseURL string, log logger.Logger) *SMTPEmailer {
	return &SMTPEmailer{
		cfg:      cfg,
		branding: branding,
		baseURL:  baseURL,
		logger:   log,
	}
}

var emailBodyTemplate = template.Must(template.New("email").Parse(`<html>
<body style="font-family: Helvetica, Arial, sans-serif; color: #2c3e50;">
  <div style="max-width: 600px; margin: 0 auto;">
    <h2 style="color: #1a6e4a;">{{.CompanyName}}</h2>
    <p>Hello {{.Name}},</p>
    <p>Thank you for completing your health questionnaire. Your personalized
    diagnostic report is attached to this email as a PDF.</p>
    <p style="margin: 24px 0;">
      <a href="{{.ReportURL}}" style="background: #1a6e4a; color: #fff; padding: 10px 20px; text-decoration: none; border-radius: 4px;">View your report online</a>
    </p>
    <p>A wellness advisor would be happy to walk you through the results.
    You can book a free follow-up call here:</p>
    <p><a href="{{.ScheduleURL}}">{{.ScheduleURL}}</a></p>
    <p>Warm regards,<br>The {{.CompanyName}} team</p>
    <hr style="border: none; border-top: 1px solid #ddd; margin: 24px 0;">
    <p style="font-size: 11px; color: #888;">
      {{if .Facebook}}<a href="{{.Facebook}}" style="color: #888;">Facebook</a> &middot; {{end}}
      {{if .Instagram}}<a href="{{.Instagram}}" style="color: #888;">Instagram</a> &middot; {{end}}
      {{if .Twitter}}<a href="{{.Twitter}}" style="color: #888;">Twitter</a> &middot; {{end}}
      {{if .LinkedIn}}<a href="{{.LinkedIn}}" style="color: #888;">LinkedIn</a>{{end}}
    </p>
    <p style="font-size: 11px; color: #888;">This report is a wellness
    orientation and does not replace professional medical advice.</p>
  </div>
</body>
</html>`))

type emailBodyData struct {
	CompanyName string
	Name        string
	ReportURL   string
	ScheduleURL string
	Facebook    string
	Instagram   string
	Twitter     string
	LinkedIn    string
}

// SendReport builds a multipart MIME message with the HTML body and the PDF
// attached, then delivers it over SMTP.
func (s *SMTPEmailer) SendReport(msg *ReportMessage) error {
	if s.cfg.Host == "" || s.cfg.Username == "" {
		return fmt.Errorf("smtp transport not configured")
	}

	body, err := s.renderBody(msg)
	if err != nil {
		return err
	}

	raw, err := s.buildMIME(msg, body)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)

	if s.cfg.UseTLS {
		return s.sendSTARTTLS(addr, auth, msg.Email, raw)
	}

	return smtp.SendMail(addr, auth, s.from(), []string{msg.Email}, raw)
}

func (s *SMTPEmailer) from() string {
	if s.cfg.DefaultFrom != "" {
		return s.cfg.DefaultFrom
	}
	return s.cfg.Username
}

func (s *SMTPEmailer) renderBody(msg *ReportMessage) (string, error) {
	data := emailBodyData{
		CompanyName: s.branding.CompanyName,
		Name:        msg.Name,
		ReportURL:   fmt.Sprintf("%s/view-report/%s", strings.TrimRight(s.baseURL, "/"), msg.DiagnosticID),
		ScheduleURL: fmt.Sprintf("%s/schedule/%s", strings.TrimRight(s.baseURL, "/"), msg.DiagnosticID),
		Facebook:    s.branding.Facebook,
		Instagram:   s.branding.Instagram,
		Twitter:     s.branding.Twitter,
		LinkedIn:    s.branding.LinkedIn,
	}

	var buf bytes.Buffer
	if err := emailBodyTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render email body: %w", err)
	}
	return buf.String(), nil
}

// buildMIME assembles the multipart message. The attachment part is skipped
// when the report has no PDF, which happens after a double render failure.
func (s *SMTPEmailer) buildMIME(msg *ReportMessage, htmlBody string) ([]byte, error) {
	boundary := "vitalscan-" + msg.DiagnosticID

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", s.from())
	fmt.Fprintf(&buf, "To: %s\r\n", msg.Email)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", "Your Health Diagnostic Report"))
	buf.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", boundary)

	fmt.Fprintf(&buf, "--%s\r\n", boundary)
	buf.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
	buf.WriteString(htmlBody)
	buf.WriteString("\r\n")

	if msg.PDFPath != "" {
		data, err := os.ReadFile(msg.PDFPath)
		if err != nil {
			return nil, fmt.Errorf("read report attachment: %w", err)
		}

		fmt.Fprintf(&buf, "--%s\r\n", boundary)
		buf.WriteString("Content-Type: application/pdf\r\n")
		buf.WriteString("Content-Transfer-Encoding: base64\r\n")
		fmt.Fprintf(&buf, "Content-Disposition: attachment; filename=%q\r\n\r\n", filepath.Base(msg.PDFPath))

		encoded := base64.StdEncoding.EncodeToString(data)
		for len(encoded) > 76 {
			buf.WriteString(encoded[:76])
			buf.WriteString("\r\n")
			encoded = encoded[76:]
		}
		buf.WriteString(encoded)
		buf.WriteString("\r\n")
	}

	fmt.Fprintf(&buf, "--%s--\r\n", boundary)
	return buf.Bytes(), nil
}

func (s *SMTPEmailer) sendSTARTTLS(addr string, auth smtp.Auth, to string, raw []byte) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	defer client.Close()

	if err := client.StartTLS(&tls.Config{ServerName: s.cfg.Host}); err != nil {
		return fmt.Errorf("starttls: %w", err)
	}
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}
	if err := client.Mail(s.from()); err != nil {
		return fmt.Errorf("smtp mail: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("smtp rcpt: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(raw); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp close: %w", err)
	}

	return client.Quit()
}
