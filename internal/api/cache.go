package api

import (
	"runtime"

	"github.com/wordlens/wordlens/internal/models"
	"github.com/wordlens/wordlens/internal/services/cache"
	"github.com/wordlens/wordlens/internal/services/search"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
)

// CacheHandler serves cache administration: pattern invalidation, stats,
// and the approximate key lookup debug surface.
type CacheHandler struct {
	store     cache.Store
	redisTier *cache.RedisTier
	searchSvc *search.Service
}

func NewCacheHandler(store cache.Store, redisTier *cache.RedisTier, searchSvc *search.Service) *CacheHandler {
	return &CacheHandler{store: store, redisTier: redisTier, searchSvc: searchSvc}
}

// Clear handles DELETE /v1/cache. Without a pattern it flushes both tiers;
// with one it removes matching keys from both.
func (h *CacheHandler) Clear(c *fiber.Ctx) error {
	reqID := requestID(c)
	pattern := c.Query("pattern")

	if pattern == "" {
		h.store.Flush()
		h.redisTier.Flush(c.UserContext())
		fiberlog.Infof("[%s] cache flushed", reqID)
		return c.JSON(fiber.Map{"flushed": true})
	}

	removed, err := h.store.DeleteMatching(pattern)
	if err != nil {
		return writeError(c, models.NewValidationError("invalid pattern", err))
	}
	removed += h.redisTier.DeleteMatching(c.UserContext(), globFromPattern(pattern))

	fiberlog.Infof("[%s] cache invalidation removed %d entries for pattern %q", reqID, removed, pattern)
	return c.JSON(fiber.Map{"removed": removed})
}

// Stats handles GET /v1/cache/stats.
func (h *CacheHandler) Stats(c *fiber.Ctx) error {
	stats := h.store.Stats()

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return c.JSON(fiber.Map{
		"cache": stats,
		"embeddings": fiber.Map{
			"stored":    h.searchSvc.StoredCount(c.UserContext()),
			"providers": h.searchSvc.ProviderAvailability(c.UserContext()),
		},
		"system": fiber.Map{
			"goroutines":  runtime.NumGoroutine(),
			"heap_bytes":  mem.HeapAlloc,
			"num_gc":      mem.NumGC,
			"go_max_proc": runtime.GOMAXPROCS(0),
		},
	})
}

// SimilarKeys handles GET /v1/cache/similar-keys. It is a secondary lookup
// aid for operators; exact-match lookup remains the only hit path.
func (h *CacheHandler) SimilarKeys(c *fiber.Ctx) error {
	key := c.Query("key")
	if key == "" {
		return writeError(c, models.NewValidationError("key is required", nil))
	}
	threshold := c.QueryFloat("threshold", 0.8)
	if threshold <= 0 || threshold > 1 {
		return writeError(c, models.NewValidationError("threshold must be in (0, 1]", nil))
	}

	matches := cache.FindSimilarKeys(h.store, key, threshold)
	if matches == nil {
		matches = []string{}
	}
	return c.JSON(fiber.Map{"key": key, "threshold": threshold, "matches": matches})
}

// globFromPattern converts the leading-anchor regexp form used by the
// in-process store into a Redis glob. Only prefix patterns translate
// faithfully; anything else matches conservatively by wildcard wrap.
func globFromPattern(pattern string) string {
	if len(pattern) > 0 && pattern[0] == '^' {
		return pattern[1:] + "*"
	}
	return "*" + pattern + "*"
}
