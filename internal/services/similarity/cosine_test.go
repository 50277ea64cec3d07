package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosineSymmetry(t *testing.T) {
	pairs := [][2][]float32{
		{{1, 0, 0}, {0, 1, 0}},
		{{0.5, 0.5}, {0.7, 0.1}},
		{{-1, 2, -3}, {4, -5, 6}},
	}

	for _, p := range pairs {
		assert.InDelta(t, Cosine(p[0], p[1]), Cosine(p[1], p[0]), 1e-12)
	}
}

func TestCosineSelfSimilarity(t *testing.T) {
	for _, v := range [][]float32{{1, 2, 3}, {0.001, -0.002}, {5}} {
		assert.InDelta(t, 1.0, Cosine(v, v), 1e-9)
	}
}

func TestCosineZeroVector(t *testing.T) {
	zero := []float32{0, 0, 0}
	assert.Equal(t, 0.0, Cosine(zero, []float32{1, 2, 3}))
	assert.Equal(t, 0.0, Cosine([]float32{1, 2, 3}, zero))
	assert.Equal(t, 0.0, Cosine(zero, zero), "even against itself")
}

func TestCosineDimensionMismatch(t *testing.T) {
	assert.Equal(t, 0.0, Cosine([]float32{1, 2}, []float32{1, 2, 3}))
	assert.Equal(t, 0.0, Cosine(nil, nil))
}

func TestCosineOrthogonalAndOpposite(t *testing.T) {
	assert.InDelta(t, 0.0, Cosine([]float32{1, 0}, []float32{0, 1}), 1e-12)
	assert.InDelta(t, -1.0, Cosine([]float32{1, 0}, []float32{-1, 0}), 1e-9)
}
