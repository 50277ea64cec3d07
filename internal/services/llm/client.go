// Package llm abstracts the language-model backends behind the narrow
// contract the analysis core needs: generate raw text from a prompt, and
// embed text into a vector.
package llm

import (
	"context"
	"fmt"

	"github.com/wordlens/wordlens/internal/models"
)

// GenerateOptions are the sampling parameters passed through to the backend.
type GenerateOptions struct {
	Temperature float64
	TopP        float64
	MaxTokens   int
}

// Client is the language-model contract. Generate returns untrusted raw
// text; the caller owns parse-with-fallback. Embed may be unsupported by a
// backend, in which case it returns a provider error.
type Client interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
	Embed(ctx context.Context, text, model string) ([]float32, error)
	Ping(ctx context.Context) error
}

// NewClient builds a Client for the given provider configuration.
func NewClient(name string, cfg models.ProviderConfig) (Client, error) {
	switch cfg.Kind {
	case models.ProviderOpenAICompatible, "":
		return newOpenAIClient(name, cfg)
	case models.ProviderAnthropic:
		return newAnthropicClient(name, cfg)
	default:
		return nil, fmt.Errorf("unsupported provider kind: %s", cfg.Kind)
	}
}
