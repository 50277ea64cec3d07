package embedding

import (
	"context"
	"time"

	"github.com/wordlens/wordlens/internal/models"
	"github.com/wordlens/wordlens/internal/services/cache"
	"github.com/wordlens/wordlens/internal/services/circuitbreaker"
	"github.com/wordlens/wordlens/internal/services/llm"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"golang.org/x/sync/singleflight"
)

// RemoteProvider delegates to an external embedding model server. Computed
// vectors are cached under embedding:{model}:{text-hash} with a multi-hour
// TTL, and concurrent requests for the same text are collapsed to a single
// upstream call.
type RemoteProvider struct {
	client  llm.Client
	model   string
	store   cache.Store
	ttl     time.Duration
	breaker *circuitbreaker.CircuitBreaker
	group   singleflight.Group
}

func NewRemoteProvider(client llm.Client, model string, store cache.Store, ttl time.Duration) *RemoteProvider {
	return &RemoteProvider{
		client:  client,
		model:   model,
		store:   store,
		ttl:     ttl,
		breaker: circuitbreaker.NewForProvider("embedding:" + model),
	}
}

func (p *RemoteProvider) Model() string {
	return p.model
}

func (p *RemoteProvider) GenerateEmbedding(ctx context.Context, text string) (*models.EmbeddingResult, error) {
	key := cache.EmbeddingKey(p.model, text)

	if cached, ok := p.store.Get(key); ok {
		if result, ok := cached.(*models.EmbeddingResult); ok {
			fiberlog.Debugf("embedding: cache hit for %s", key)
			return result, nil
		}
	}

	v, err, _ := p.group.Do(key, func() (any, error) {
		// A concurrent caller may have filled the cache while we waited.
		if cached, ok := p.store.Get(key); ok {
			if result, ok := cached.(*models.EmbeddingResult); ok {
				return result, nil
			}
		}

		vector, err := p.client.Embed(ctx, text, p.model)
		if err != nil {
			p.breaker.RecordFailure()
			return nil, err
		}
		p.breaker.RecordSuccess()

		result := &models.EmbeddingResult{
			Vector:    vector,
			Dimension: len(vector),
			Model:     p.model,
		}

		if !p.store.Set(key, result, p.ttl) {
			fiberlog.Warnf("embedding: failed to cache result for %s", key)
		}
		return result, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*models.EmbeddingResult), nil
}

// IsAvailable reflects the breaker state: a tripped breaker means the model
// server is currently unreachable regardless of configuration.
func (p *RemoteProvider) IsAvailable(ctx context.Context) bool {
	return p.breaker.CanExecute()
}
