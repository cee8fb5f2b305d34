// internal/report/html.go
package report

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"vitalscan/internal/profile"
	"vitalscan/internal/store"
)

// Branding carries the company strings rendered into every report.
type Branding struct {
	CompanyName  string
	Tagline      string
	ContactEmail string
	ContactPhone string
}

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<style>
  body { font-family: Helvetica, Arial, sans-serif; color: #2c3e50; margin: 30px; }
  h1 { color: #1a6e4a; border-bottom: 2px solid #1a6e4a; padding-bottom: 8px; }
  h2 { color: #1a6e4a; margin-top: 28px; }
  table { border-collapse: collapse; width: 100%; margin-top: 12px; }
  td { border: 1px solid #ccc; padding: 6px 10px; }
  td.label { background: #f0f6f3; font-weight: bold; width: 35%; }
  .section { white-space: pre-line; line-height: 1.5; }
  .footer { margin-top: 40px; font-size: 11px; color: #777; border-top: 1px solid #ccc; padding-top: 10px; }
</style>
</head>
<body>
<h1>{{.Company.CompanyName}} Health Diagnostic Report</h1>
{{if .Company.Tagline}}<p><em>{{.Company.Tagline}}</em></p>{{end}}
<p>Generated on {{.Date}}</p>

<h2>Personal Information</h2>
<table>
  <tr><td class="label">Name</td><td>{{.FullName}}</td></tr>
  {{if .Profile.Age}}<tr><td class="label">Age</td><td>{{.Profile.Age}}</td></tr>{{end}}
  {{if .Profile.Gender}}<tr><td class="label">Gender</td><td>{{.Profile.Gender}}</td></tr>{{end}}
  {{if .Profile.Weight}}<tr><td class="label">Weight (kg)</td><td>{{.Profile.Weight}}</td></tr>{{end}}
  {{if .Profile.Height}}<tr><td class="label">Height (m)</td><td>{{.Profile.Height}}</td></tr>{{end}}
  {{if .BMILine}}<tr><td class="label">BMI</td><td>{{.BMILine}}</td></tr>{{end}}
  {{if .Profile.BloodPressure}}<tr><td class="label">Blood pressure</td><td>{{.Profile.BloodPressure}}</td></tr>{{end}}
  {{if .Profile.Pulse}}<tr><td class="label">Pulse</td><td>{{.Profile.Pulse}}</td></tr>{{end}}
  {{if .Profile.Symptoms}}<tr><td class="label">Reported symptoms</td><td>{{.Profile.Symptoms}}</td></tr>{{end}}
</table>

<h2>Diagnostic Summary</h2>
<div class="section">{{.Profile.Diagnosis}}</div>

<h2>Recommendations</h2>
<div class="section">{{.Profile.Recommendations}}</div>

<div class="footer">
  <p>{{.Company.CompanyName}}{{if .Company.ContactEmail}} &middot; {{.Company.ContactEmail}}{{end}}{{if .Company.ContactPhone}} &middot; {{.Company.ContactPhone}}{{end}}</p>
  <p>This report is a wellness orientation and does not replace professional medical advice.</p>
</div>
</body>
</html>`))

type templateData struct {
	Company  Branding
	Profile  *profile.DiagnosticProfile
	FullName string
	BMILine  string
	Date     string
}

// renderHTML produces the document body fed to the primary engine.
func renderHTML(rec *store.StoredDiagnostic, branding Branding) (string, error) {
	data := templateData{
		Company:  branding,
		Profile:  rec.Profile,
		FullName: rec.Profile.FullName(),
		Date:     rec.CreatedAt.Format("02-01-2006"),
	}
	if data.Date == "01-01-0001" {
		data.Date = time.Now().Format("02-01-2006")
	}
	if rec.Profile.BMI != nil {
		data.BMILine = fmt.Sprintf("%.2f (%s)", *rec.Profile.BMI, profile.BMICategory(*rec.Profile.BMI))
	}

	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute report template: %w", err)
	}

	return buf.String(), nil
}

// splitParagraphs breaks narrative text into paragraphs for the fallback
// engine, which has no HTML layout to lean on.
func splitParagraphs(text string) []string {
	parts := strings.Split(text, "\n\n")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
