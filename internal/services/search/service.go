// Package search composes the embedding providers, the vector store, and
// the similarity engine into the semantic-search surface: indexing words
// and ranking stored words against a query.
package search

import (
	"context"
	"strings"

	"github.com/wordlens/wordlens/internal/models"
	"github.com/wordlens/wordlens/internal/services/embedding"
	"github.com/wordlens/wordlens/internal/services/similarity"
	"github.com/wordlens/wordlens/internal/services/vectorstore"

	fiberlog "github.com/gofiber/fiber/v2/log"
)

// Service runs semantic search requests end to end.
type Service struct {
	providers *embedding.Factory
	store     *vectorstore.Store
	engine    *similarity.Engine

	defaultLimit     int
	defaultThreshold float64
}

func NewService(providers *embedding.Factory, store *vectorstore.Store, engine *similarity.Engine, defaultLimit int, defaultThreshold float64) *Service {
	return &Service{
		providers:        providers,
		store:            store,
		engine:           engine,
		defaultLimit:     defaultLimit,
		defaultThreshold: defaultThreshold,
	}
}

// Search embeds query with the selected provider and ranks stored vectors
// for that provider's model. Zero limit/threshold select the configured
// defaults.
func (s *Service) Search(ctx context.Context, query string, limit int, threshold float64, source models.EmbeddingSource, requestID string) ([]models.SemanticSearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, models.NewValidationError("query must not be empty", nil)
	}
	if limit <= 0 {
		limit = s.defaultLimit
	}
	if threshold <= 0 || threshold > 1 {
		threshold = s.defaultThreshold
	}

	provider, err := s.providers.Get(source)
	if err != nil {
		return nil, models.NewValidationError(err.Error(), nil)
	}

	result, err := provider.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, err
	}

	fiberlog.Debugf("[%s] search: embedded query with %s (dimension %d)", requestID, result.Model, result.Dimension)
	return s.engine.Search(ctx, query, result.Vector, string(source), result.Model, limit, threshold)
}

// IndexWord embeds word with the selected provider and upserts the vector
// under (word, model), overwriting any previous embedding for that pair.
func (s *Service) IndexWord(ctx context.Context, word string, source models.EmbeddingSource, requestID string) (*models.EmbeddingResult, error) {
	word = strings.TrimSpace(word)
	if word == "" {
		return nil, models.NewValidationError("word must not be empty", nil)
	}

	provider, err := s.providers.Get(source)
	if err != nil {
		return nil, models.NewValidationError(err.Error(), nil)
	}

	result, err := provider.GenerateEmbedding(ctx, word)
	if err != nil {
		return nil, err
	}

	if err := s.store.Upsert(ctx, strings.ToLower(word), result.Model, result.Vector); err != nil {
		return nil, models.NewInternalError("failed to persist embedding", err)
	}

	fiberlog.Infof("[%s] search: indexed %q under model %s", requestID, word, result.Model)
	return result, nil
}

// LoadLocalModel loads the static vector table for the local provider.
func (s *Service) LoadLocalModel(path string) error {
	local := s.providers.Local()
	if local == nil {
		return models.NewValidationError("local embedding provider not configured", nil)
	}
	return local.LoadModel(path)
}

// ProviderAvailability reports current loaded/reachable state per provider.
func (s *Service) ProviderAvailability(ctx context.Context) map[string]bool {
	availability := make(map[string]bool, 2)
	for _, source := range []models.EmbeddingSource{models.EmbeddingSourceRemote, models.EmbeddingSourceLocal} {
		provider, err := s.providers.Get(source)
		if err != nil {
			continue
		}
		availability[string(source)] = provider.IsAvailable(ctx)
	}
	return availability
}

// StoredCount reports how many embeddings are persisted, for stats.
func (s *Service) StoredCount(ctx context.Context) int64 {
	count, err := s.store.Count(ctx, "")
	if err != nil {
		fiberlog.Warnf("search: failed to count stored embeddings: %v", err)
		return 0
	}
	return count
}
