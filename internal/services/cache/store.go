// Package cache provides the tiered result cache: an in-process TTL store
// with capacity-bounded eviction and pattern invalidation, a deterministic
// key policy with approximate key lookup, and an optional Redis second tier.
package cache

import "time"

// Stats is a point-in-time snapshot of store counters. Hits and misses are
// cumulative since process start and survive Flush.
type Stats struct {
	LiveKeyCount    int     `json:"live_key_count"`
	Hits            uint64  `json:"hits"`
	Misses          uint64  `json:"misses"`
	HitRate         float64 `json:"hit_rate"`
	ApproxSizeBytes int64   `json:"approx_size_bytes"`
}

// Store is the in-process TTL cache contract. A failed Set reports false and
// is treated by callers as a cache miss, never as a functional failure.
type Store interface {
	// Set stores value under key with the given TTL; ttl <= 0 uses the
	// store's default.
	Set(key string, value any, ttl time.Duration) bool
	// Get returns the live value for key. Expired entries are never
	// returned, even before the sweep reclaims them.
	Get(key string) (any, bool)
	// Delete removes key, reporting how many entries were removed (0 or 1).
	Delete(key string) int
	// DeleteMatching removes all live keys matching the regular expression
	// pattern, atomically with respect to readers.
	DeleteMatching(pattern string) (int, error)
	// Has reports whether key is present and unexpired.
	Has(key string) bool
	// Keys returns all live keys.
	Keys() []string
	// Stats returns cumulative counters and current size.
	Stats() Stats
	// Flush removes all entries. Hit/miss counters are preserved.
	Flush()
}
