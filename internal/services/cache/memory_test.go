package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, opts MemoryStoreOptions) *MemoryStore {
	t.Helper()
	s := NewMemoryStore(opts)
	t.Cleanup(s.Stop)
	return s
}

func TestMemoryStoreTTLExpiry(t *testing.T) {
	s := newTestStore(t, MemoryStoreOptions{})

	require.True(t, s.Set("analysis:bright:_", "value", 120*time.Millisecond))

	// Well inside the TTL the entry is live.
	time.Sleep(60 * time.Millisecond)
	v, ok := s.Get("analysis:bright:_")
	require.True(t, ok)
	assert.Equal(t, "value", v)

	// Past expiry the entry must be a miss even though no sweep ran.
	time.Sleep(100 * time.Millisecond)
	_, ok = s.Get("analysis:bright:_")
	assert.False(t, ok)
	assert.False(t, s.Has("analysis:bright:_"))
}

func TestMemoryStoreLastWriteWins(t *testing.T) {
	s := newTestStore(t, MemoryStoreOptions{})

	require.True(t, s.Set("analysis:sharp:_", "first", time.Minute))
	require.True(t, s.Set("analysis:sharp:_", "second", time.Minute))

	v, ok := s.Get("analysis:sharp:_")
	require.True(t, ok)
	assert.Equal(t, "second", v)
	assert.Equal(t, 1, s.Stats().LiveKeyCount, "overwrite must not double-count")
}

func TestMemoryStoreDeleteMatching(t *testing.T) {
	s := newTestStore(t, MemoryStoreOptions{})

	require.True(t, s.Set("analysis:foo:x", 1, time.Minute))
	require.True(t, s.Set("analysis:foo:y", 2, time.Minute))
	require.True(t, s.Set("embedding:m:z", 3, time.Minute))

	removed, err := s.DeleteMatching("^analysis:foo")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	assert.False(t, s.Has("analysis:foo:x"))
	assert.False(t, s.Has("analysis:foo:y"))
	assert.True(t, s.Has("embedding:m:z"))
}

func TestMemoryStoreDeleteMatchingBadPattern(t *testing.T) {
	s := newTestStore(t, MemoryStoreOptions{})

	_, err := s.DeleteMatching("[unclosed")
	assert.Error(t, err)
}

func TestMemoryStoreCapacityEviction(t *testing.T) {
	s := newTestStore(t, MemoryStoreOptions{MaxKeys: 3})

	for i := 0; i < 3; i++ {
		require.True(t, s.Set(fmt.Sprintf("definition:w%d:_", i), i, time.Minute))
	}
	require.True(t, s.Set("definition:w3:_", 3, time.Minute))

	// FIFO: the oldest key is gone, capacity holds.
	assert.False(t, s.Has("definition:w0:_"))
	assert.True(t, s.Has("definition:w3:_"))
	assert.Equal(t, 3, s.Stats().LiveKeyCount)
}

func TestMemoryStoreStatsAndFlush(t *testing.T) {
	s := newTestStore(t, MemoryStoreOptions{})

	require.True(t, s.Set("synonyms:calm:_", "x", time.Minute))

	_, hit := s.Get("synonyms:calm:_")
	require.True(t, hit)
	_, miss := s.Get("synonyms:unknown:_")
	require.False(t, miss)

	stats := s.Stats()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
	assert.InDelta(t, 0.5, stats.HitRate, 1e-9)
	assert.Positive(t, stats.ApproxSizeBytes)

	s.Flush()
	stats = s.Stats()
	assert.Equal(t, 0, stats.LiveKeyCount)
	assert.Equal(t, uint64(1), stats.Hits, "counters survive flush")
	assert.Equal(t, uint64(1), stats.Misses, "counters survive flush")
}

func TestMemoryStoreExpiredEntryCountsAsMiss(t *testing.T) {
	s := newTestStore(t, MemoryStoreOptions{})

	require.True(t, s.Set("context:word:home", "v", 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	_, ok := s.Get("context:word:home")
	require.False(t, ok)
	assert.Equal(t, uint64(1), s.Stats().Misses)
}

func TestMemoryStoreSweepReclaims(t *testing.T) {
	s := newTestStore(t, MemoryStoreOptions{SweepInterval: 20 * time.Millisecond})

	require.True(t, s.Set("embedding:m:a", "v", 10*time.Millisecond))
	time.Sleep(60 * time.Millisecond)

	// Keys() reflects only live entries after the sweep ran.
	assert.Empty(t, s.Keys())
}
