package embedding

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/wordlens/wordlens/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeVectorTable(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vectors.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLocalProviderRequiresLoad(t *testing.T) {
	p := NewLocalProvider(3)

	_, err := p.GenerateEmbedding(context.Background(), "happy")
	require.Error(t, err)
	assert.True(t, models.IsType(err, models.ErrorTypeModelNotLoaded))
	assert.False(t, p.IsAvailable(context.Background()))
}

func TestLocalProviderLookup(t *testing.T) {
	path := writeVectorTable(t, "happy 0.1 0.2 0.3\nsad -0.1 -0.2 -0.3\n")

	p := NewLocalProvider(3)
	require.NoError(t, p.LoadModel(path))
	assert.True(t, p.IsAvailable(context.Background()))

	result, err := p.GenerateEmbedding(context.Background(), "happy")
	require.NoError(t, err)
	assert.Equal(t, 3, result.Dimension)
	assert.InDelta(t, 0.1, result.Vector[0], 1e-6)
	assert.InDelta(t, 0.3, result.Vector[2], 1e-6)
}

func TestLocalProviderFirstTokenOnly(t *testing.T) {
	path := writeVectorTable(t, "happy 1 0 0\n")

	p := NewLocalProvider(3)
	require.NoError(t, p.LoadModel(path))

	result, err := p.GenerateEmbedding(context.Background(), "Happy days are here")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0, 0}, result.Vector)
}

func TestLocalProviderOutOfVocabulary(t *testing.T) {
	path := writeVectorTable(t, "happy 1 0 0\n")

	p := NewLocalProvider(3)
	require.NoError(t, p.LoadModel(path))

	result, err := p.GenerateEmbedding(context.Background(), "zyzzyva")
	require.NoError(t, err, "out-of-vocabulary words must soft-fail")
	assert.Equal(t, []float32{0, 0, 0}, result.Vector)
	assert.Equal(t, 3, result.Dimension)
}

func TestLocalProviderSkipsMalformedRows(t *testing.T) {
	path := writeVectorTable(t, "happy 1 0 0\nbroken 1 0\nnotnum a b c\nsad 0 1 0\n")

	p := NewLocalProvider(3)
	require.NoError(t, p.LoadModel(path))

	result, err := p.GenerateEmbedding(context.Background(), "sad")
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 1, 0}, result.Vector)

	// Malformed rows fall out of the vocabulary entirely.
	result, err = p.GenerateEmbedding(context.Background(), "broken")
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 0, 0}, result.Vector)
}

func TestLocalProviderHeaderRow(t *testing.T) {
	path := writeVectorTable(t, "2 3\nhappy 1 0 0\nsad 0 1 0\n")

	p := NewLocalProvider(0)
	require.NoError(t, p.LoadModel(path))

	result, err := p.GenerateEmbedding(context.Background(), "happy")
	require.NoError(t, err)
	assert.Equal(t, 3, result.Dimension)
}

func TestLocalProviderEmptyTable(t *testing.T) {
	path := writeVectorTable(t, "\n")

	p := NewLocalProvider(3)
	assert.Error(t, p.LoadModel(path))
}
