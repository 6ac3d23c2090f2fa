package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddAndSearch(t *testing.T) {
	idx := NewVectorIndex(3)

	require.NoError(t, idx.Add(1, []float32{1, 0, 0}))
	require.NoError(t, idx.Add(2, []float32{0, 1, 0}))
	require.NoError(t, idx.Add(3, []float32{0.9, 0.1, 0}))

	matches, err := idx.Search([]float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	assert.Equal(t, int64(1), matches[0].ID)
	assert.Equal(t, int64(3), matches[1].ID)
	assert.InDelta(t, 1.0, matches[0].Score, 1e-5)
	assert.Greater(t, matches[0].Score, matches[1].Score)
}

func TestSearchScoreIsCosineSimilarity(t *testing.T) {
	idx := NewVectorIndex(2)

	// Orthogonal to the query: cosine similarity 0.
	require.NoError(t, idx.Add(1, []float32{0, 5}))

	matches, err := idx.Search([]float32{3, 0}, 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.InDelta(t, 0.0, matches[0].Score, 1e-5)
}

func TestSearchEmptyIndex(t *testing.T) {
	idx := NewVectorIndex(4)

	matches, err := idx.Search([]float32{1, 2, 3, 4}, 5)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestDimensionMismatch(t *testing.T) {
	idx := NewVectorIndex(3)

	assert.Error(t, idx.Add(1, []float32{1, 2}))

	_, err := idx.Search([]float32{1, 2}, 1)
	assert.Error(t, err)
}

func TestNormalizeVectorScaleInvariance(t *testing.T) {
	idx := NewVectorIndex(2)
	require.NoError(t, idx.Add(1, []float32{10, 0}))

	// A scaled copy of the stored vector must score as identical.
	matches, err := idx.Search([]float32{0.001, 0}, 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.InDelta(t, 1.0, matches[0].Score, 1e-5)
}
