package cache

import (
	"container/list"
	"regexp"
	"sync"
	"time"

	fiberlog "github.com/gofiber/fiber/v2/log"
)

const (
	defaultTTL     = time.Hour
	defaultMaxKeys = 10000
	// entryOverheadBytes approximates per-entry bookkeeping for the size
	// estimate reported by Stats.
	entryOverheadBytes = 96
)

type entry struct {
	value     any
	createdAt time.Time
	ttl       time.Duration
	hitCount  uint64
	elem      *list.Element
}

func (e *entry) expiredAt(now time.Time) bool {
	return now.After(e.createdAt.Add(e.ttl))
}

// MemoryStore is the in-process TTL cache. Capacity is bounded by a maximum
// key count; once full, entries are evicted FIFO by insertion order until the
// new write fits. Expiry is enforced lazily on every read regardless of sweep
// timing; the optional background sweep only reclaims memory earlier.
type MemoryStore struct {
	mu         sync.RWMutex
	entries    map[string]*entry
	order      *list.List // insertion order, front = oldest
	maxKeys    int
	defaultTTL time.Duration

	hits   uint64
	misses uint64

	sweepInterval time.Duration
	stopSweep     chan struct{}
	sweepOnce     sync.Once
}

// MemoryStoreOptions configures a MemoryStore. Zero values select defaults.
type MemoryStoreOptions struct {
	DefaultTTL    time.Duration
	MaxKeys       int
	SweepInterval time.Duration
}

// NewMemoryStore creates a MemoryStore. If opts.SweepInterval > 0 a
// background sweep goroutine runs until Stop is called.
func NewMemoryStore(opts MemoryStoreOptions) *MemoryStore {
	ttl := opts.DefaultTTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	maxKeys := opts.MaxKeys
	if maxKeys <= 0 {
		maxKeys = defaultMaxKeys
	}

	s := &MemoryStore{
		entries:       make(map[string]*entry),
		order:         list.New(),
		maxKeys:       maxKeys,
		defaultTTL:    ttl,
		sweepInterval: opts.SweepInterval,
		stopSweep:     make(chan struct{}),
	}

	if s.sweepInterval > 0 {
		go s.sweepLoop()
	}

	return s
}

// Set stores value under key. Overwriting an existing key keeps a single
// live entry (last write wins) and resets its age.
func (s *MemoryStore) Set(key string, value any, ttl time.Duration) bool {
	if key == "" {
		return false
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.entries[key]; ok {
		existing.value = value
		existing.createdAt = time.Now()
		existing.ttl = ttl
		s.order.MoveToBack(existing.elem)
		return true
	}

	// Enforce capacity before admitting the new key.
	for len(s.entries) >= s.maxKeys {
		oldest := s.order.Front()
		if oldest == nil {
			fiberlog.Warnf("cache: capacity %d exceeded but eviction queue empty, rejecting set for %s", s.maxKeys, key)
			return false
		}
		s.removeLocked(oldest.Value.(string))
	}

	e := &entry{
		value:     value,
		createdAt: time.Now(),
		ttl:       ttl,
	}
	e.elem = s.order.PushBack(key)
	s.entries[key] = e
	return true
}

// Get returns the live value for key. An expired-but-unswept entry counts as
// a miss and is removed.
func (s *MemoryStore) Get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		s.misses++
		return nil, false
	}
	if e.expiredAt(time.Now()) {
		s.removeLocked(key)
		s.misses++
		return nil, false
	}

	e.hitCount++
	s.hits++
	return e.value, true
}

// Delete removes key if present.
func (s *MemoryStore) Delete(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[key]; !ok {
		return 0
	}
	s.removeLocked(key)
	return 1
}

// DeleteMatching removes every live key matching the regular expression.
// The whole matching set is removed under one write lock, so a reader never
// observes it partially deleted.
func (s *MemoryStore) DeleteMatching(pattern string) (int, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	removed := 0
	for key, e := range s.entries {
		if e.expiredAt(now) {
			s.removeLocked(key)
			continue
		}
		if re.MatchString(key) {
			s.removeLocked(key)
			removed++
		}
	}
	return removed, nil
}

// Has reports whether key is present and unexpired. Unlike Get it does not
// touch the hit/miss counters.
func (s *MemoryStore) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	return ok && !e.expiredAt(time.Now())
}

// Keys returns all live keys.
func (s *MemoryStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := time.Now()
	keys := make([]string, 0, len(s.entries))
	for key, e := range s.entries {
		if !e.expiredAt(now) {
			keys = append(keys, key)
		}
	}
	return keys
}

// Stats returns cumulative counters and the current live size.
func (s *MemoryStore) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := time.Now()
	live := 0
	var size int64
	for key, e := range s.entries {
		if e.expiredAt(now) {
			continue
		}
		live++
		size += int64(len(key)) + entryOverheadBytes
	}

	total := s.hits + s.misses
	rate := 0.0
	if total > 0 {
		rate = float64(s.hits) / float64(total)
	}

	return Stats{
		LiveKeyCount:    live,
		Hits:            s.hits,
		Misses:          s.misses,
		HitRate:         rate,
		ApproxSizeBytes: size,
	}
}

// Flush removes all entries. Counters are preserved.
func (s *MemoryStore) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]*entry)
	s.order.Init()
}

// Stop terminates the background sweep goroutine, if any.
func (s *MemoryStore) Stop() {
	s.sweepOnce.Do(func() {
		close(s.stopSweep)
	})
}

func (s *MemoryStore) removeLocked(key string) {
	if e, ok := s.entries[key]; ok {
		s.order.Remove(e.elem)
		delete(s.entries, key)
	}
}

func (s *MemoryStore) sweepLoop() {
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopSweep:
			return
		}
	}
}

func (s *MemoryStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	swept := 0
	for key, e := range s.entries {
		if e.expiredAt(now) {
			s.removeLocked(key)
			swept++
		}
	}
	if swept > 0 {
		fiberlog.Debugf("cache: sweep reclaimed %d expired entries", swept)
	}
}
