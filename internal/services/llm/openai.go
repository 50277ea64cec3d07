package llm

import (
	"context"
	"fmt"
	"hash/fnv"
	"net/http"
	"time"

	"github.com/wordlens/wordlens/internal/models"
	"github.com/wordlens/wordlens/internal/utils/clientcache"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/openai/openai-go/v2"
	openaiOption "github.com/openai/openai-go/v2/option"
)

var openaiClients = clientcache.NewCache[*openai.Client]()

// openAIClient talks to any server exposing the OpenAI API shape, which
// covers local model servers as well as the hosted API.
type openAIClient struct {
	name   string
	client *openai.Client
	cfg    models.ProviderConfig
}

func newOpenAIClient(name string, cfg models.ProviderConfig) (*openAIClient, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("provider %s: model is required", name)
	}

	client, err := openaiClients.GetOrCreate(configHash(name, cfg), func() (*openai.Client, error) {
		fiberlog.Debugf("Creating OpenAI-compatible client for provider %s", name)
		return buildOpenAIClient(cfg), nil
	})
	if err != nil {
		return nil, err
	}

	return &openAIClient{name: name, client: client, cfg: cfg}, nil
}

func buildOpenAIClient(cfg models.ProviderConfig) *openai.Client {
	opts := []openaiOption.RequestOption{
		openaiOption.WithAPIKey(cfg.APIKey),
	}

	if cfg.BaseURL != "" {
		opts = append(opts, openaiOption.WithBaseURL(cfg.BaseURL))
	}

	for key, value := range cfg.Headers {
		opts = append(opts, openaiOption.WithHeader(key, value))
	}

	if cfg.TimeoutMs > 0 {
		timeout := time.Duration(cfg.TimeoutMs) * time.Millisecond
		httpClient := &http.Client{Timeout: timeout}
		opts = append(opts, openaiOption.WithHTTPClient(httpClient))
	}

	client := openai.NewClient(opts...)
	return &client
}

func (c *openAIClient) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Model: openai.ChatModel(c.cfg.Model),
	}
	if opts.Temperature > 0 {
		params.Temperature = openai.Float(opts.Temperature)
	}
	if opts.TopP > 0 {
		params.TopP = openai.Float(opts.TopP)
	}
	if opts.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(opts.MaxTokens))
	}

	start := time.Now()
	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		fiberlog.Errorf("Provider %s: generate request failed after %v: %v", c.name, time.Since(start), err)
		return "", models.NewProviderError(c.name, "generate request failed", err)
	}
	if len(completion.Choices) == 0 {
		return "", models.NewProviderError(c.name, "generate returned no choices", nil)
	}

	fiberlog.Debugf("Provider %s: generate completed in %v", c.name, time.Since(start))
	return completion.Choices[0].Message.Content, nil
}

func (c *openAIClient) Embed(ctx context.Context, text, model string) ([]float32, error) {
	if model == "" {
		model = c.cfg.EmbeddingModel
	}
	if model == "" {
		return nil, models.NewProviderError(c.name, "no embedding model configured", nil)
	}

	resp, err := c.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{
			OfString: openai.String(text),
		},
		Model: openai.EmbeddingModel(model),
	})
	if err != nil {
		return nil, models.NewProviderError(c.name, "embedding request failed", err)
	}
	if len(resp.Data) == 0 {
		return nil, models.NewProviderError(c.name, "embedding returned no data", nil)
	}

	raw := resp.Data[0].Embedding
	vector := make([]float32, len(raw))
	for i, v := range raw {
		vector[i] = float32(v)
	}
	return vector, nil
}

// Ping issues a minimal generate call to verify reachability.
func (c *openAIClient) Ping(ctx context.Context) error {
	_, err := c.Generate(ctx, "ping", GenerateOptions{MaxTokens: 1})
	return err
}

func configHash(name string, cfg models.ProviderConfig) string {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%s|%s|%s|%s|%d", name, cfg.Kind, cfg.BaseURL, cfg.Model, cfg.APIKey, cfg.TimeoutMs)
	return fmt.Sprintf("%x", h.Sum64())
}
