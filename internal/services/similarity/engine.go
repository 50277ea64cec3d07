package similarity

import (
	"context"
	"time"

	"github.com/wordlens/wordlens/internal/models"
	"github.com/wordlens/wordlens/internal/services/cache"

	fiberlog "github.com/gofiber/fiber/v2/log"
)

// Engine runs semantic search over stored vectors. It tries the native
// backend when one is configured and available, falls back to the
// brute-force scan on error or unavailability, and caches the final ranked
// list. Result TTL is shorter than embedding TTL because rankings depend on
// the whole stored corpus.
type Engine struct {
	native    Backend
	fallback  Backend
	store     cache.Store
	resultTTL time.Duration
}

// NewEngine builds an engine. native may be nil; fallback must not be.
func NewEngine(native, fallback Backend, store cache.Store, resultTTL time.Duration) *Engine {
	return &Engine{
		native:    native,
		fallback:  fallback,
		store:     store,
		resultTTL: resultTTL,
	}
}

// Search ranks stored vectors under model against the query vector.
// queryText, limit, threshold, provider and model together key the cached
// ranked list.
func (e *Engine) Search(ctx context.Context, queryText string, vector []float32, provider, model string, limit int, threshold float64) ([]models.SemanticSearchResult, error) {
	key := cache.SearchKey(queryText, limit, threshold, provider, model)

	if cached, ok := e.store.Get(key); ok {
		if results, ok := cached.([]models.SemanticSearchResult); ok {
			fiberlog.Debugf("similarity: result cache hit for %s", key)
			return results, nil
		}
	}

	results, err := e.query(ctx, vector, model, limit, threshold)
	if err != nil {
		return nil, err
	}

	if !e.store.Set(key, results, e.resultTTL) {
		fiberlog.Warnf("similarity: failed to cache results for %s", key)
	}
	return results, nil
}

func (e *Engine) query(ctx context.Context, vector []float32, model string, limit int, threshold float64) ([]models.SemanticSearchResult, error) {
	if e.native != nil && e.native.Available(ctx) {
		results, err := e.native.QueryNearest(ctx, vector, model, limit, threshold)
		if err == nil {
			fiberlog.Debugf("similarity: %s returned %d results", e.native.Name(), len(results))
			return results, nil
		}
		fiberlog.Warnf("similarity: %s failed, falling back to %s: %v", e.native.Name(), e.fallback.Name(), err)
	}

	results, err := e.fallback.QueryNearest(ctx, vector, model, limit, threshold)
	if err != nil {
		return nil, err
	}
	fiberlog.Debugf("similarity: %s returned %d results", e.fallback.Name(), len(results))
	return results, nil
}
