// Package similarity ranks stored vectors against a query vector. It
// prefers a database-native vector operator and falls back to an in-process
// brute-force cosine scan, so search keeps working when the native backend
// is down. Both paths produce equivalent rankings.
package similarity

import (
	"context"

	"github.com/wordlens/wordlens/internal/models"
)

// Backend is one execution strategy for nearest-vector search. The fallback
// decision between backends is an explicit, testable branch in the Engine,
// not an exception-driven side effect.
type Backend interface {
	// QueryNearest returns up to limit stored vectors under model whose
	// similarity to vector is at least threshold, ranked descending.
	QueryNearest(ctx context.Context, vector []float32, model string, limit int, threshold float64) ([]models.SemanticSearchResult, error)
	// Available reports whether this backend can currently serve queries.
	Available(ctx context.Context) bool
	// Name identifies the backend in logs.
	Name() string
}
