package similarity

import (
	"context"

	"github.com/wordlens/wordlens/internal/models"
	"github.com/wordlens/wordlens/internal/services/vectorstore"
)

// NativeBackend delegates ranking and thresholding to the vector store's
// pgvector operator. Threshold conversion to the operator's distance metric
// happens inside the store and is exact for pgvector's bounded cosine
// distance.
type NativeBackend struct {
	store *vectorstore.Store
}

func NewNative(store *vectorstore.Store) *NativeBackend {
	return &NativeBackend{store: store}
}

func (n *NativeBackend) Name() string {
	return "pgvector"
}

func (n *NativeBackend) Available(ctx context.Context) bool {
	return n.store != nil && n.store.NativeAvailable(ctx)
}

func (n *NativeBackend) QueryNearest(ctx context.Context, vector []float32, model string, limit int, threshold float64) ([]models.SemanticSearchResult, error) {
	return n.store.QueryNearest(ctx, vector, model, limit, threshold)
}
