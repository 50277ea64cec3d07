// Package embedding provides a uniform interface over heterogeneous
// embedding backends: a remote model server and a locally loaded static
// vector table. Provider selection is a per-call parameter, never global
// state, so one subject may hold one stored embedding per (subject, model).
package embedding

import (
	"context"
	"fmt"

	"github.com/wordlens/wordlens/internal/models"
)

// Provider generates embeddings for text.
type Provider interface {
	// GenerateEmbedding embeds text. Transport failures surface as
	// provider errors; they are never silently swallowed.
	GenerateEmbedding(ctx context.Context, text string) (*models.EmbeddingResult, error)
	// IsAvailable reflects the provider's current loaded/reachable state,
	// not configuration intent.
	IsAvailable(ctx context.Context) bool
	// Model identifies the provider+model that produced the vectors; cache
	// and storage partition on it.
	Model() string
}

// Factory selects a provider implementation per request.
type Factory struct {
	remote *RemoteProvider
	local  *LocalProvider
}

func NewFactory(remote *RemoteProvider, local *LocalProvider) *Factory {
	return &Factory{remote: remote, local: local}
}

// Get returns the provider for source, defaulting to remote.
func (f *Factory) Get(source models.EmbeddingSource) (Provider, error) {
	switch source {
	case models.EmbeddingSourceRemote, "":
		if f.remote == nil {
			return nil, fmt.Errorf("remote embedding provider not configured")
		}
		return f.remote, nil
	case models.EmbeddingSourceLocal:
		if f.local == nil {
			return nil, fmt.Errorf("local embedding provider not configured")
		}
		return f.local, nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", source)
	}
}

// Local returns the local provider, if configured, for the load-model surface.
func (f *Factory) Local() *LocalProvider {
	return f.local
}
