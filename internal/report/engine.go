// internal/report/engine.go
package report

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	wkhtmltopdf "github.com/SebastiaanKlippert/go-wkhtmltopdf"

	"vitalscan/internal/store"
)

// Engine renders one diagnostic record into a PDF file at outPath.
type Engine interface {
	Render(ctx context.Context, rec *store.StoredDiagnostic, outPath string) error
}

// WKEngine drives the wkhtmltopdf binary. It is the primary engine and is
// only usable when the binary is present on the host.
type WKEngine struct {
	branding Branding

	probeOnce sync.Once
	probeErr  error
}

func NewWKEngine(branding Branding) *WKEngine {
	return &WKEngine{branding: branding}
}

// Available reports whether the wkhtmltopdf binary can be found. The probe
// runs once and is cached for the process lifetime.
func (e *WKEngine) Available() bool {
	e.probeOnce.Do(func() {
		path, err := exec.LookPath("wkhtmltopdf")
		if err != nil {
			e.probeErr = fmt.Errorf("wkhtmltopdf binary not found: %w", err)
			return
		}
		wkhtmltopdf.SetPath(path)
	})
	return e.probeErr == nil
}

func (e *WKEngine) Render(_ context.Context, rec *store.StoredDiagnostic, outPath string) error {
	if !e.Available() {
		return e.probeErr
	}

	html, err := renderHTML(rec, e.branding)
	if err != nil {
		return err
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return fmt.Errorf("init pdf generator: %w", err)
	}

	pdfg.PageSize.Set(wkhtmltopdf.PageSizeA4)
	pdfg.MarginTop.Set(15)
	pdfg.MarginBottom.Set(15)

	page := wkhtmltopdf.NewPageReader(strings.NewReader(html))
	page.Encoding.Set("UTF-8")
	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}

	if err := pdfg.WriteFile(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}

	return nil
}
