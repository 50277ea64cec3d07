package similarity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/wordlens/wordlens/internal/models"
	"github.com/wordlens/wordlens/internal/services/cache"
	"github.com/wordlens/wordlens/internal/services/vectorstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticLister struct {
	vectors []vectorstore.StoredVector
	err     error
}

func (l *staticLister) ListAll(ctx context.Context, model string, limit int) ([]vectorstore.StoredVector, error) {
	return l.vectors, l.err
}

type stubBackend struct {
	name      string
	available bool
	results   []models.SemanticSearchResult
	err       error
	calls     int
}

func (s *stubBackend) Name() string                            { return s.name }
func (s *stubBackend) Available(ctx context.Context) bool      { return s.available }
func (s *stubBackend) QueryNearest(ctx context.Context, vector []float32, model string, limit int, threshold float64) ([]models.SemanticSearchResult, error) {
	s.calls++
	return s.results, s.err
}

// corpus is a fixture shared by the brute-force and equivalence tests. The
// expected ranking for query (1,0,0) at threshold 0.5 is east, northeast.
var corpus = []vectorstore.StoredVector{
	{SubjectID: "east", Vector: []float32{1, 0, 0}},
	{SubjectID: "northeast", Vector: []float32{1, 1, 0}},
	{SubjectID: "north", Vector: []float32{0, 1, 0}},
	{SubjectID: "west", Vector: []float32{-1, 0, 0}},
}

func TestBruteForceRanking(t *testing.T) {
	b := NewBruteForce(&staticLister{vectors: corpus})

	results, err := b.QueryNearest(context.Background(), []float32{1, 0, 0}, "m", 10, 0.5)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "east", results[0].SubjectID)
	assert.InDelta(t, 1.0, results[0].Similarity, 1e-9)
	assert.Equal(t, "northeast", results[1].SubjectID)
	assert.InDelta(t, 0.70710678, results[1].Similarity, 1e-6)
}

func TestBruteForceLimit(t *testing.T) {
	b := NewBruteForce(&staticLister{vectors: corpus})

	results, err := b.QueryNearest(context.Background(), []float32{1, 0, 0}, "m", 1, 0.5)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "east", results[0].SubjectID)
}

func TestBruteForceSkipsDimensionMismatch(t *testing.T) {
	vectors := append([]vectorstore.StoredVector{
		{SubjectID: "short", Vector: []float32{1, 0}},
	}, corpus...)
	b := NewBruteForce(&staticLister{vectors: vectors})

	results, err := b.QueryNearest(context.Background(), []float32{1, 0, 0}, "m", 10, 0.5)
	require.NoError(t, err)

	for _, r := range results {
		assert.NotEqual(t, "short", r.SubjectID, "mismatched vector must be excluded, not fatal")
	}
}

func TestEngineFallbackEquivalence(t *testing.T) {
	// A native backend that errors must hand the query to the fallback, and
	// the fallback ranking must match the precomputed fixture ranking.
	native := &stubBackend{name: "native", available: true, err: errors.New("index down")}
	fallback := NewBruteForce(&staticLister{vectors: corpus})

	store := cache.NewMemoryStore(cache.MemoryStoreOptions{})
	defer store.Stop()

	e := NewEngine(native, fallback, store, time.Minute)
	results, err := e.Search(context.Background(), "east", []float32{1, 0, 0}, "remote", "m", 10, 0.5)
	require.NoError(t, err)

	require.Equal(t, 1, native.calls, "native path tried first")
	require.Len(t, results, 2)
	assert.Equal(t, "east", results[0].SubjectID)
	assert.Equal(t, "northeast", results[1].SubjectID)
}

func TestEngineSkipsUnavailableNative(t *testing.T) {
	native := &stubBackend{name: "native", available: false}
	fallback := NewBruteForce(&staticLister{vectors: corpus})

	store := cache.NewMemoryStore(cache.MemoryStoreOptions{})
	defer store.Stop()

	e := NewEngine(native, fallback, store, time.Minute)
	_, err := e.Search(context.Background(), "east", []float32{1, 0, 0}, "remote", "m", 10, 0.5)
	require.NoError(t, err)

	assert.Zero(t, native.calls, "unavailable native backend is never queried")
}

func TestEngineCachesRankedResults(t *testing.T) {
	fallbackLister := &staticLister{vectors: corpus}
	fallback := NewBruteForce(fallbackLister)

	store := cache.NewMemoryStore(cache.MemoryStoreOptions{})
	defer store.Stop()

	e := NewEngine(nil, fallback, store, time.Minute)

	first, err := e.Search(context.Background(), "east", []float32{1, 0, 0}, "remote", "m", 10, 0.5)
	require.NoError(t, err)

	// Mutating the corpus does not change a cached ranking.
	fallbackLister.vectors = nil
	second, err := e.Search(context.Background(), "east", []float32{1, 0, 0}, "remote", "m", 10, 0.5)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// A different threshold is a different key and sees the new corpus.
	third, err := e.Search(context.Background(), "east", []float32{1, 0, 0}, "remote", "m", 10, 0.6)
	require.NoError(t, err)
	assert.Empty(t, third)
}

func TestEngineNativeResultsUsedWhenHealthy(t *testing.T) {
	nativeResults := []models.SemanticSearchResult{{SubjectID: "east", Similarity: 1}}
	native := &stubBackend{name: "native", available: true, results: nativeResults}
	fallback := &stubBackend{name: "fallback", available: true}

	store := cache.NewMemoryStore(cache.MemoryStoreOptions{})
	defer store.Stop()

	e := NewEngine(native, fallback, store, time.Minute)
	results, err := e.Search(context.Background(), "east", []float32{1, 0, 0}, "remote", "m", 10, 0.5)
	require.NoError(t, err)

	assert.Equal(t, nativeResults, results)
	assert.Zero(t, fallback.calls)
}
