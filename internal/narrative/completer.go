// internal/narrative/completer.go
package narrative

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"

	"vitalscan/internal/common/errors"
)

// Completer produces one chat completion from a system and a user prompt.
// The pipeline depends on this interface so tests can substitute a fake.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// OpenAICompleter calls the OpenAI chat completions API.
type OpenAICompleter struct {
	client      openai.Client
	model       string
	maxTokens   int
	temperature float64
}

// NewOpenAICompleter builds a completer bound to one model and sampling
// configuration. An empty API key yields a completer that fails every call
// with a configuration error instead of making a doomed network request.
func NewOpenAICompleter(apiKey, model string, maxTokens int, temperature float64) Completer {
	if apiKey == "" {
		return unconfiguredCompleter{}
	}
	return &OpenAICompleter{
		client:      openai.NewClient(option.WithAPIKey(apiKey)),
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
	}
}

func (c *OpenAICompleter) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		MaxTokens:   openai.Int(int64(c.maxTokens)),
		Temperature: openai.Float(c.temperature),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}

// unconfiguredCompleter stands in when no API key is configured.
type unconfiguredCompleter struct{}

func (unconfiguredCompleter) Complete(context.Context, string, string) (string, error) {
	return "", errors.NewConfigurationError("OPENAI_API_KEY is not set")
}
