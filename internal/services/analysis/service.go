// Package analysis orchestrates word analyses: it composes language-model
// calls for synonyms, antonyms, definitions, and contextual meanings behind
// the tiered cache, running independent sub-operations concurrently and
// aggregating them into one result with a derived confidence score.
package analysis

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/wordlens/wordlens/internal/models"
	"github.com/wordlens/wordlens/internal/services/cache"
	"github.com/wordlens/wordlens/internal/services/circuitbreaker"
	"github.com/wordlens/wordlens/internal/services/llm"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"golang.org/x/sync/singleflight"
)

const defaultRelatedLimit = 10

var defaultGenerateOptions = llm.GenerateOptions{
	Temperature: 0.3,
	TopP:        0.9,
	MaxTokens:   512,
}

// Service is the analysis orchestrator. All collaborators are injected at
// construction; the service holds no hidden global state.
type Service struct {
	client  llm.Client
	store   cache.Store
	redis   *cache.RedisTier
	ttl     models.AnalysisTTLConfig
	breaker *circuitbreaker.CircuitBreaker
	group   singleflight.Group
}

func NewService(client llm.Client, store cache.Store, redis *cache.RedisTier, ttl models.AnalysisTTLConfig) *Service {
	return &Service{
		client:  client,
		store:   store,
		redis:   redis,
		ttl:     ttl,
		breaker: circuitbreaker.NewForProvider("language_model"),
	}
}

// Analyze produces a complete AnalysisResult for (word, optional context).
// The aggregate cache key is checked first; on a hit no sub-cache is
// touched. On a miss the sub-operations run concurrently and are joined
// before aggregation. A sub-operation failure degrades to an empty partial
// result; only total failure surfaces an error.
func (s *Service) Analyze(ctx context.Context, word, wordContext, requestID string) (*models.AnalysisResult, error) {
	word = strings.TrimSpace(word)
	if word == "" {
		return nil, models.NewValidationError("word must not be empty", nil)
	}

	key := cache.AnalysisKey(word, wordContext)
	if result, ok := getTiered[*models.AnalysisResult](ctx, s, key, s.analysisTTL()); ok {
		fiberlog.Infof("[%s] analysis: aggregate cache hit for %s", requestID, key)
		return result, nil
	}
	fiberlog.Debugf("[%s] analysis: aggregate cache miss for %s, computing", requestID, key)

	var (
		wg          sync.WaitGroup
		synonyms    []models.RelatedWord
		antonyms    []models.RelatedWord
		definition  string
		meanings    []models.ContextualMeaning
		synErr      error
		antErr      error
		defErr      error
		ctxErr      error
		withContext = strings.TrimSpace(wordContext) != ""
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		synonyms, synErr = s.GetSynonyms(ctx, word, wordContext, defaultRelatedLimit, requestID)
	}()
	go func() {
		defer wg.Done()
		antonyms, antErr = s.GetAntonyms(ctx, word, wordContext, defaultRelatedLimit, requestID)
	}()
	go func() {
		defer wg.Done()
		definition, defErr = s.GetDefinition(ctx, word, "", requestID)
	}()
	if withContext {
		wg.Add(1)
		go func() {
			defer wg.Done()
			meanings, ctxErr = s.GetContextualMeaning(ctx, word, wordContext, requestID)
		}()
	}
	wg.Wait()

	subErrs := []error{synErr, antErr, defErr}
	if withContext {
		subErrs = append(subErrs, ctxErr)
	}
	failed := 0
	for _, err := range subErrs {
		if err != nil {
			failed++
		}
	}
	if failed == len(subErrs) {
		fiberlog.Errorf("[%s] analysis: all %d sub-operations failed for %q", requestID, failed, word)
		return nil, models.NewAnalysisFailedError(word, errors.Join(subErrs...))
	}
	if failed > 0 {
		fiberlog.Warnf("[%s] analysis: %d/%d sub-operations failed for %q, returning partial result", requestID, failed, len(subErrs), word)
	}

	result := &models.AnalysisResult{
		Word:       strings.ToLower(word),
		Definition: definition,
		Synonyms:   emptyIfNil(synonyms),
		Antonyms:   emptyIfNil(antonyms),
		Contexts:   meanings,
	}
	result.ComputeConfidence()

	s.setTiered(ctx, key, result, s.analysisTTL())
	return result, nil
}

// GetSynonyms returns up to limit synonyms for word, cached independently
// of the aggregate analysis.
func (s *Service) GetSynonyms(ctx context.Context, word, wordContext string, limit int, requestID string) ([]models.RelatedWord, error) {
	return s.relatedWords(ctx, cache.OpSynonyms, "synonyms", word, wordContext, limit, s.seconds(s.ttl.SynonymSeconds), requestID)
}

// GetAntonyms returns up to limit antonyms for word.
func (s *Service) GetAntonyms(ctx context.Context, word, wordContext string, limit int, requestID string) ([]models.RelatedWord, error) {
	return s.relatedWords(ctx, cache.OpAntonyms, "antonyms", word, wordContext, limit, s.seconds(s.ttl.AntonymSeconds), requestID)
}

// GetDefinition returns the definition of word, optionally constrained to a
// part of speech. Definitions change rarely, so this carries the longest TTL.
func (s *Service) GetDefinition(ctx context.Context, word, partOfSpeech, requestID string) (string, error) {
	word = strings.TrimSpace(word)
	if word == "" {
		return "", models.NewValidationError("word must not be empty", nil)
	}

	key := cache.DefinitionKey(word, partOfSpeech)
	ttl := s.seconds(s.ttl.DefinitionSeconds)
	if cached, ok := getTiered[string](ctx, s, key, ttl); ok {
		fiberlog.Debugf("[%s] analysis: definition cache hit for %s", requestID, key)
		return cached, nil
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		if cached, ok := getTiered[string](ctx, s, key, ttl); ok {
			return cached, nil
		}

		raw, err := s.generate(ctx, renderDefinitionPrompt(word, partOfSpeech))
		if err != nil {
			return "", err
		}

		definition := parseDefinition(raw)
		s.setTiered(ctx, key, definition, ttl)
		return definition, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// GetContextualMeaning explains word inside wordContext.
func (s *Service) GetContextualMeaning(ctx context.Context, word, wordContext, requestID string) ([]models.ContextualMeaning, error) {
	word = strings.TrimSpace(word)
	if word == "" {
		return nil, models.NewValidationError("word must not be empty", nil)
	}
	if strings.TrimSpace(wordContext) == "" {
		return nil, models.NewValidationError("context must not be empty", nil)
	}

	key := cache.SubOperationKey(cache.OpContext, word, wordContext)
	ttl := s.seconds(s.ttl.ContextSeconds)
	if cached, ok := getTiered[[]models.ContextualMeaning](ctx, s, key, ttl); ok {
		fiberlog.Debugf("[%s] analysis: context cache hit for %s", requestID, key)
		return cached, nil
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		if cached, ok := getTiered[[]models.ContextualMeaning](ctx, s, key, ttl); ok {
			return cached, nil
		}

		raw, err := s.generate(ctx, renderContextPrompt(word, wordContext))
		if err != nil {
			return nil, err
		}

		meanings, mode := parseContextualMeanings(raw, wordContext)
		if mode == ParseFallback {
			fiberlog.Warnf("[%s] analysis: %s parse of contextual meaning for %q", requestID, mode, word)
		}

		s.setTiered(ctx, key, meanings, ttl)
		return meanings, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.ContextualMeaning), nil
}

func (s *Service) relatedWords(ctx context.Context, op, relation, word, wordContext string, limit int, ttl time.Duration, requestID string) ([]models.RelatedWord, error) {
	word = strings.TrimSpace(word)
	if word == "" {
		return nil, models.NewValidationError("word must not be empty", nil)
	}
	if limit <= 0 {
		limit = defaultRelatedLimit
	}

	key := cache.SubOperationKey(op, word, wordContext)
	if cached, ok := getTiered[[]models.RelatedWord](ctx, s, key, ttl); ok {
		fiberlog.Debugf("[%s] analysis: %s cache hit for %s", requestID, op, key)
		return clampRelated(cached, limit), nil
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		if cached, ok := getTiered[[]models.RelatedWord](ctx, s, key, ttl); ok {
			return cached, nil
		}

		raw, err := s.generate(ctx, renderRelatedWordsPrompt(relation, word, wordContext, limit))
		if err != nil {
			return nil, err
		}

		words, mode := parseRelatedWords(raw, limit)
		if mode == ParseFallback {
			fiberlog.Warnf("[%s] analysis: %s parse of %s for %q recovered %d words", requestID, mode, relation, word, len(words))
		}

		s.setTiered(ctx, key, words, ttl)
		return words, nil
	})
	if err != nil {
		return nil, err
	}
	return clampRelated(v.([]models.RelatedWord), limit), nil
}

func (s *Service) generate(ctx context.Context, prompt string) (string, error) {
	if !s.breaker.CanExecute() {
		return "", &models.AppError{
			Type:      models.ErrorTypeCircuitBreaker,
			Message:   "language model circuit breaker is open",
			Retryable: true,
		}
	}

	raw, err := s.client.Generate(ctx, prompt, defaultGenerateOptions)
	if err != nil {
		s.breaker.RecordFailure()
		return "", err
	}
	s.breaker.RecordSuccess()
	return raw, nil
}

// getTiered reads key from the in-process store first, then from the Redis
// tier, promoting Redis hits into memory. A cache failure at either tier is
// a miss, never a functional failure.
func getTiered[T any](ctx context.Context, s *Service, key string, ttl time.Duration) (T, bool) {
	var zero T

	if cached, ok := s.store.Get(key); ok {
		if typed, ok := cached.(T); ok {
			return typed, true
		}
	}

	if s.redis != nil {
		var fromRedis T
		if s.redis.GetJSON(ctx, key, &fromRedis) {
			s.store.Set(key, fromRedis, ttl)
			return fromRedis, true
		}
	}

	return zero, false
}

func (s *Service) setTiered(ctx context.Context, key string, value any, ttl time.Duration) {
	if !s.store.Set(key, value, ttl) {
		fiberlog.Warnf("analysis: failed to cache %s in memory tier", key)
	}
	if s.redis != nil {
		s.redis.SetJSON(ctx, key, value, ttl)
	}
}

func (s *Service) analysisTTL() time.Duration {
	return s.seconds(s.ttl.AnalysisSeconds)
}

func (s *Service) seconds(n int) time.Duration {
	if n <= 0 {
		return time.Hour
	}
	return time.Duration(n) * time.Second
}

func clampRelated(words []models.RelatedWord, limit int) []models.RelatedWord {
	if len(words) > limit {
		return words[:limit]
	}
	return words
}

func emptyIfNil(words []models.RelatedWord) []models.RelatedWord {
	if words == nil {
		return []models.RelatedWord{}
	}
	return words
}
