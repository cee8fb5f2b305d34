// internal/report/renderer.go
package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"vitalscan/internal/common/errors"
	"vitalscan/internal/common/logger"
	"vitalscan/internal/common/metrics"
	"vitalscan/internal/store"
)

// Renderer tries the primary engine first and degrades to the fallback.
// Only when both engines fail does rendering count as failed, and even
// then the job is expected to finish without an attachment.
type Renderer struct {
	primary  Engine
	fallback Engine
	outDir   string
	logger   logger.Logger
}

func NewRenderer(primary, fallback Engine, outDir string, log logger.Logger) *Renderer {
	return &Renderer{
		primary:  primary,
		fallback: fallback,
		outDir:   outDir,
		logger:   log,
	}
}

// ArtifactPath returns the PDF location for one diagnostic id.
func ArtifactPath(dir, id string) string {
	return filepath.Join(dir, fmt.Sprintf("diagnostic_%s.pdf", id))
}

// Render produces the PDF artifact and returns its path.
func (r *Renderer) Render(ctx context.Context, rec *store.StoredDiagnostic) (string, error) {
	if err := os.MkdirAll(r.outDir, 0o755); err != nil {
		return "", errors.NewRenderError(nil, fmt.Errorf("create output dir: %w", err))
	}

	outPath := ArtifactPath(r.outDir, rec.ID)

	var primaryErr error
	if r.primary != nil {
		primaryErr = r.primary.Render(ctx, rec, outPath)
		if primaryErr == nil {
			return outPath, nil
		}
		r.logger.WithError(primaryErr).Warn("primary render engine failed, using fallback", map[string]interface{}{
			"diagnostic_id": rec.ID,
		})
	}

	metrics.RenderFallbacks.Inc()
	if fallbackErr := r.fallback.Render(ctx, rec, outPath); fallbackErr != nil {
		return "", errors.NewRenderError(primaryErr, fallbackErr)
	}

	return outPath, nil
}
