package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wordlens/wordlens/internal/models"
	"github.com/wordlens/wordlens/internal/utils/clientcache"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	fiberlog "github.com/gofiber/fiber/v2/log"
)

const defaultAnthropicMaxTokens = 1024

var anthropicClients = clientcache.NewCache[*anthropic.Client]()

// anthropicClient is the alternate generation backend. It has no embedding
// endpoint; Embed reports a provider error so callers route embeddings to an
// OpenAI-compatible provider instead.
type anthropicClient struct {
	name   string
	client *anthropic.Client
	cfg    models.ProviderConfig
}

func newAnthropicClient(name string, cfg models.ProviderConfig) (*anthropicClient, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("provider %s: model is required", name)
	}

	client, err := anthropicClients.GetOrCreate(configHash(name, cfg), func() (*anthropic.Client, error) {
		fiberlog.Debugf("Creating Anthropic client for provider %s", name)
		return buildAnthropicClient(cfg), nil
	})
	if err != nil {
		return nil, err
	}

	return &anthropicClient{name: name, client: client, cfg: cfg}, nil
}

func buildAnthropicClient(cfg models.ProviderConfig) *anthropic.Client {
	clientOpts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}

	if cfg.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(cfg.BaseURL))
	}

	for key, value := range cfg.Headers {
		clientOpts = append(clientOpts, option.WithHeader(key, value))
	}

	client := anthropic.NewClient(clientOpts...)
	return &client
}

func (c *anthropicClient) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultAnthropicMaxTokens
	}

	params := anthropic.MessageNewParams{
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
		Model: anthropic.Model(c.cfg.Model),
	}
	if opts.Temperature > 0 {
		params.Temperature = anthropic.Float(opts.Temperature)
	}
	if opts.TopP > 0 {
		params.TopP = anthropic.Float(opts.TopP)
	}

	start := time.Now()
	message, err := c.client.Messages.New(ctx, params)
	if err != nil {
		fiberlog.Errorf("Provider %s: message request failed after %v: %v", c.name, time.Since(start), err)
		return "", models.NewProviderError(c.name, "message request failed", err)
	}

	var sb strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	fiberlog.Debugf("Provider %s: message completed in %v", c.name, time.Since(start))
	return sb.String(), nil
}

func (c *anthropicClient) Embed(ctx context.Context, text, model string) ([]float32, error) {
	return nil, models.NewProviderError(c.name, "embeddings are not supported by the anthropic backend", nil)
}

func (c *anthropicClient) Ping(ctx context.Context) error {
	_, err := c.Generate(ctx, "ping", GenerateOptions{MaxTokens: 1})
	return err
}
