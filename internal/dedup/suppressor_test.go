package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuppress_ScenarioD(t *testing.T) {
	// Items 0 and 1 are near-identical (cosine ~0.999), item 2 is
	// orthogonal to both.
	vectors := [][]float32{
		{1, 0.01, 0},
		{1, 0, 0},
		{0, 0, 1},
	}

	kept := Suppress(vectors, 0.92)

	assert.Equal(t, []bool{true, false, true}, kept)
}

func TestSuppress_NoneSimilar(t *testing.T) {
	vectors := [][]float32{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}

	kept := Suppress(vectors, 0.92)

	assert.Equal(t, []bool{true, true, true}, kept)
}

func TestCosineSimilarity_Identical(t *testing.T) {
	v := []float32{1, 2, 3}
	assert.InDelta(t, 1.0, CosineSimilarity(v, v), 1e-6)
}

func TestCosineSimilarity_MismatchedLength(t *testing.T) {
	assert.Equal(t, float32(0), CosineSimilarity([]float32{1, 2}, []float32{1}))
}
