package similarity

import (
	"context"
	"sort"

	"github.com/wordlens/wordlens/internal/models"
	"github.com/wordlens/wordlens/internal/services/vectorstore"

	fiberlog "github.com/gofiber/fiber/v2/log"
)

// VectorLister is the slice of the vector store the brute-force scan needs.
type VectorLister interface {
	ListAll(ctx context.Context, model string, limit int) ([]vectorstore.StoredVector, error)
}

// BruteForceBackend is the self-contained fallback path: it loads stored
// vectors (bounded by the store's scan cap), scores each with cosine
// similarity in-process, and has no dependency on any native index.
type BruteForceBackend struct {
	store VectorLister
}

func NewBruteForce(store VectorLister) *BruteForceBackend {
	return &BruteForceBackend{store: store}
}

func (b *BruteForceBackend) Name() string {
	return "brute_force"
}

// Available is always true: the fallback is a hard functional requirement
// and must work whenever the process itself is up.
func (b *BruteForceBackend) Available(ctx context.Context) bool {
	return true
}

func (b *BruteForceBackend) QueryNearest(ctx context.Context, vector []float32, model string, limit int, threshold float64) ([]models.SemanticSearchResult, error) {
	stored, err := b.store.ListAll(ctx, model, 0)
	if err != nil {
		return nil, err
	}

	results := make([]models.SemanticSearchResult, 0, limit)
	mismatched := 0
	for _, sv := range stored {
		if len(sv.Vector) != len(vector) {
			// A dimension mismatch is not fatal to the search; the stored
			// vector simply cannot match and is skipped.
			mismatched++
			continue
		}
		sim := Cosine(vector, sv.Vector)
		if sim >= threshold {
			results = append(results, models.SemanticSearchResult{
				SubjectID:  sv.SubjectID,
				Similarity: sim,
			})
		}
	}
	if mismatched > 0 {
		fiberlog.Warnf("similarity: skipped %d stored vectors with mismatched dimension for model %s", mismatched, model)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}
