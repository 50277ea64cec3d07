package analysis

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/wordlens/wordlens/internal/models"
	"github.com/wordlens/wordlens/internal/services/cache"
	"github.com/wordlens/wordlens/internal/services/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClient routes prompts to canned responses by sub-operation. A nil
// entry simulates a transport failure for that sub-operation. Response
// fields are read-only after construction.
type fakeClient struct {
	synonyms  *string
	antonyms  *string
	define    *string
	contexts  *string
	generated atomic.Int64
}

func strPtr(s string) *string { return &s }

func (f *fakeClient) Generate(ctx context.Context, prompt string, opts llm.GenerateOptions) (string, error) {
	f.generated.Add(1)

	var resp *string
	switch {
	case strings.Contains(prompt, " synonyms "):
		resp = f.synonyms
	case strings.Contains(prompt, " antonyms "):
		resp = f.antonyms
	case strings.Contains(prompt, "dictionary definition"):
		resp = f.define
	case strings.Contains(prompt, "Explain what the word"):
		resp = f.contexts
	}
	if resp == nil {
		return "", models.NewProviderError("fake", "transport failure", errors.New("connection refused"))
	}
	return *resp, nil
}

func (f *fakeClient) Embed(ctx context.Context, text, model string) ([]float32, error) {
	return nil, models.NewProviderError("fake", "no embeddings", nil)
}

func (f *fakeClient) Ping(ctx context.Context) error { return nil }

func newTestService(t *testing.T, client llm.Client) (*Service, *cache.MemoryStore) {
	t.Helper()
	store := cache.NewMemoryStore(cache.MemoryStoreOptions{})
	t.Cleanup(store.Stop)

	ttl := models.AnalysisTTLConfig{
		AnalysisSeconds:   60,
		SynonymSeconds:    60,
		AntonymSeconds:    60,
		DefinitionSeconds: 120,
		ContextSeconds:    90,
	}
	return NewService(client, store, nil, ttl), store
}

func TestAnalyzeFullResult(t *testing.T) {
	client := &fakeClient{
		synonyms: strPtr(`[{"word": "joyful", "confidence": 0.9}, {"word": "content", "confidence": 0.7}]`),
		antonyms: strPtr(`[{"word": "sad", "confidence": 0.8}]`),
		define:   strPtr("feeling or showing pleasure"),
		contexts: strPtr(`[{"context": "daily life", "meaning": "in good spirits"}]`),
	}
	svc, _ := newTestService(t, client)

	result, err := svc.Analyze(context.Background(), "Happy", "daily life", "req-1")
	require.NoError(t, err)

	assert.Equal(t, "happy", result.Word)
	assert.Equal(t, "feeling or showing pleasure", result.Definition)
	require.Len(t, result.Synonyms, 2)
	require.Len(t, result.Antonyms, 1)
	require.Len(t, result.Contexts, 1)

	// Derived confidence: mean of 0.9, 0.7, 0.8.
	assert.InDelta(t, 0.8, result.Confidence, 1e-9)
}

func TestAnalyzeEmptyWordRejected(t *testing.T) {
	svc, _ := newTestService(t, &fakeClient{})

	_, err := svc.Analyze(context.Background(), "  ", "", "req-1")
	require.Error(t, err)
	assert.True(t, models.IsType(err, models.ErrorTypeValidation))
}

func TestAnalyzePartialFailure(t *testing.T) {
	// Antonym lookup fails; the result degrades instead of erroring.
	client := &fakeClient{
		synonyms: strPtr(`[{"word": "joyful", "confidence": 0.9}]`),
		define:   strPtr("feeling or showing pleasure"),
	}
	svc, _ := newTestService(t, client)

	result, err := svc.Analyze(context.Background(), "happy", "", "req-1")
	require.NoError(t, err)

	assert.Empty(t, result.Antonyms)
	assert.NotEmpty(t, result.Synonyms)
	assert.NotEmpty(t, result.Definition)
}

func TestAnalyzeAllSubOperationsFail(t *testing.T) {
	svc, _ := newTestService(t, &fakeClient{})

	_, err := svc.Analyze(context.Background(), "happy", "", "req-1")
	require.Error(t, err)
	assert.True(t, models.IsType(err, models.ErrorTypeAnalysisFailed))
}

func TestAnalyzeAggregateCacheHit(t *testing.T) {
	client := &fakeClient{
		synonyms: strPtr(`[{"word": "joyful", "confidence": 0.9}]`),
		antonyms: strPtr(`[{"word": "sad", "confidence": 0.8}]`),
		define:   strPtr("feeling or showing pleasure"),
	}
	svc, _ := newTestService(t, client)

	first, err := svc.Analyze(context.Background(), "happy", "", "req-1")
	require.NoError(t, err)
	callsAfterFirst := client.generated.Load()

	second, err := svc.Analyze(context.Background(), "happy", "", "req-2")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, callsAfterFirst, client.generated.Load(), "cache hit must not touch the model")
}

func TestAnalyzeNoContextSkipsContextCall(t *testing.T) {
	client := &fakeClient{
		synonyms: strPtr(`[{"word": "joyful", "confidence": 0.9}]`),
		antonyms: strPtr(`[{"word": "sad", "confidence": 0.8}]`),
		define:   strPtr("feeling or showing pleasure"),
	}
	svc, _ := newTestService(t, client)

	result, err := svc.Analyze(context.Background(), "happy", "", "req-1")
	require.NoError(t, err)

	assert.Empty(t, result.Contexts)
	assert.Equal(t, int64(3), client.generated.Load(), "exactly three sub-operations without context")
}

func TestGetSynonymsFallbackParsing(t *testing.T) {
	client := &fakeClient{synonyms: strPtr("happy, joyful, content")}
	svc, _ := newTestService(t, client)

	words, err := svc.GetSynonyms(context.Background(), "glad", "", 10, "req-1")
	require.NoError(t, err)

	require.Len(t, words, 3)
	for _, w := range words {
		assert.InDelta(t, 0.7, w.Confidence, 1e-9)
	}
}

func TestGetDefinitionUsesOwnCacheKey(t *testing.T) {
	client := &fakeClient{define: strPtr("to move quickly on foot")}
	svc, store := newTestService(t, client)

	_, err := svc.GetDefinition(context.Background(), "run", "verb", "req-1")
	require.NoError(t, err)

	assert.True(t, store.Has(cache.DefinitionKey("run", "verb")))
	assert.False(t, store.Has(cache.DefinitionKey("run", "noun")))
}

func TestGetContextualMeaningValidation(t *testing.T) {
	svc, _ := newTestService(t, &fakeClient{})

	_, err := svc.GetContextualMeaning(context.Background(), "happy", "", "req-1")
	require.Error(t, err)
	assert.True(t, models.IsType(err, models.ErrorTypeValidation))
}
