// internal/narrative/generator_test.go
package narrative

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "vitalscan/internal/common/errors"
	"vitalscan/internal/common/logger"
	"vitalscan/internal/profile"
)

// fakeCompleter records each call and replies from a scripted queue.
type fakeCompleter struct {
	calls   []completionCall
	replies []string
	errs    []error
}

type completionCall struct {
	system string
	user   string
}

func (f *fakeCompleter) Complete(_ context.Context, system, user string) (string, error) {
	idx := len(f.calls)
	f.calls = append(f.calls, completionCall{system: system, user: user})

	var err error
	if idx < len(f.errs) {
		err = f.errs[idx]
	}
	if err != nil {
		return "", err
	}

	reply := ""
	if idx < len(f.replies) {
		reply = f.replies[idx]
	}
	return reply, nil
}

func testProfile() *profile.DiagnosticProfile {
	return profile.Normalize(map[string]interface{}{
		"name":     "Maria",
		"surname":  "Lopez",
		"age":      "34",
		"weight":   "70",
		"height":   "1.75",
		"symptoms": []string{"headache", "fatigue"},
	})
}

func TestGenerate_ChainsDiagnosisIntoRecommendation(t *testing.T) {
	fake := &fakeCompleter{
		replies: []string{"Generated diagnosis text.", "Generated recommendations."},
	}
	gen := NewGenerator(fake, logger.NewNoOpLogger())

	result, err := gen.Generate(context.Background(), testProfile())
	require.NoError(t, err)

	assert.Equal(t, "Generated diagnosis text.", result.Diagnosis)
	assert.Equal(t, "Generated recommendations.", result.Recommendations)

	require.Len(t, fake.calls, 2)

	// The first call carries the questionnaire answers including BMI.
	assert.Contains(t, fake.calls[0].user, "Maria Lopez")
	assert.Contains(t, fake.calls[0].user, "22.86")
	assert.Contains(t, fake.calls[0].user, "headache, fatigue")

	// The second call embeds the diagnosis output and the product catalog.
	assert.Contains(t, fake.calls[1].user, "Generated diagnosis text.")
	assert.Contains(t, fake.calls[1].user, "Product catalog:")
}

func TestGenerate_DiagnosisFailureReturnsFallback(t *testing.T) {
	fake := &fakeCompleter{
		errs: []error{errors.New("model unavailable")},
	}
	gen := NewGenerator(fake, logger.NewNoOpLogger())

	result, err := gen.Generate(context.Background(), testProfile())

	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeGenerationFailed))
	assert.Equal(t, FallbackDiagnosis, result.Diagnosis)
	assert.Equal(t, FallbackRecommendations, result.Recommendations)

	// The recommendation call must not be attempted after the first fails.
	assert.Len(t, fake.calls, 1)
}

func TestGenerate_RecommendationFailureReturnsFallback(t *testing.T) {
	fake := &fakeCompleter{
		replies: []string{"Diagnosis ok.", ""},
		errs:    []error{nil, errors.New("rate limited")},
	}
	gen := NewGenerator(fake, logger.NewNoOpLogger())

	result, err := gen.Generate(context.Background(), testProfile())

	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeGenerationFailed))
	assert.Equal(t, FallbackDiagnosis, result.Diagnosis)
	assert.Equal(t, FallbackRecommendations, result.Recommendations)
	assert.Len(t, fake.calls, 2)
}

func TestDiagnosisUserPrompt_SkipsEmptyAnswers(t *testing.T) {
	p := profile.Normalize(map[string]interface{}{"name": "Ana"})
	prompt := diagnosisUserPrompt(p)

	assert.Contains(t, prompt, "Name: Ana")
	assert.False(t, strings.Contains(prompt, "Symptoms"), "empty answers should be omitted")
	assert.False(t, strings.Contains(prompt, "BMI"), "absent BMI should be omitted")
}
