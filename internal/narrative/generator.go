// internal/narrative/generator.go
package narrative

import (
	"context"

	"vitalscan/internal/common/errors"
	"vitalscan/internal/common/logger"
	"vitalscan/internal/profile"
)

// Fallback texts shown to the respondent when generation fails. The report
// still renders and is delivered with these in place of the narrative.
const (
	FallbackDiagnosis = "We could not generate your personalized diagnostic " +
		"summary at this time. A wellness advisor will review your answers " +
		"and contact you shortly."
	FallbackRecommendations = "We could not generate your personalized " +
		"recommendations at this time. Please reach out to your wellness " +
		"advisor to discuss next steps."
)

// Result holds the two generated narrative sections.
type Result struct {
	Diagnosis       string
	Recommendations string
}

// Generator produces the diagnosis and recommendation narratives with two
// chained completions. The second call embeds the output of the first.
type Generator struct {
	completer Completer
	logger    logger.Logger
}

func NewGenerator(completer Completer, log logger.Logger) *Generator {
	return &Generator{
		completer: completer,
		logger:    log,
	}
}

// Generate runs both completions for the profile. On any model failure it
// returns the fixed fallback texts together with a GenerationError so the
// caller can still persist and render something for the respondent.
func (g *Generator) Generate(ctx context.Context, p *profile.DiagnosticProfile) (Result, error) {
	fallback := Result{
		Diagnosis:       FallbackDiagnosis,
		Recommendations: FallbackRecommendations,
	}

	diagnosis, err := g.completer.Complete(ctx, diagnosisSystemPrompt, diagnosisUserPrompt(p))
	if err != nil {
		g.logger.WithError(err).Error("diagnosis generation failed", map[string]interface{}{
			"name": p.FullName(),
		})
		return fallback, wrapGenerationError(err)
	}

	recommendations, err := g.completer.Complete(ctx, recommendationSystemPrompt, recommendationUserPrompt(p, diagnosis))
	if err != nil {
		g.logger.WithError(err).Error("recommendation generation failed", map[string]interface{}{
			"name": p.FullName(),
		})
		return fallback, wrapGenerationError(err)
	}

	return Result{
		Diagnosis:       diagnosis,
		Recommendations: recommendations,
	}, nil
}

// wrapGenerationError keeps configuration errors distinguishable from
// model-call failures.
func wrapGenerationError(err error) error {
	if errors.HasCode(err, errors.ErrCodeConfiguration) {
		return err
	}
	return errors.NewGenerationError(err)
}
