// Package index provides the in-process vector index over item
// embeddings. The index is rebuilt from the database at startup and
// updated synchronously on insert; it is an HNSW graph with cosine
// distance over normalized vectors.
package index

import (
	"fmt"
	"math"
	"sync"

	"github.com/coder/hnsw"
)

// Match is a single nearest-neighbour result. Score is 1 - distance,
// where distance is the cosine distance between normalized vectors, so
// higher means more similar.
type Match struct {
	ID    int64
	Score float32
}

// VectorIndex maps item IDs to embedding vectors of a fixed dimension.
type VectorIndex struct {
	mu    sync.RWMutex
	graph *hnsw.Graph[int64]
	dim   int
	size  int
}

// NewVectorIndex creates an empty index for vectors of the given dimension.
func NewVectorIndex(dim int) *VectorIndex {
	graph := hnsw.NewGraph[int64]()
	graph.Distance = hnsw.CosineDistance
	graph.M = 16
	graph.Ml = 0.25
	graph.EfSearch = 20

	return &VectorIndex{
		graph: graph,
		dim:   dim,
	}
}

// Dimensions returns the vector dimension the index accepts.
func (x *VectorIndex) Dimensions() int {
	return x.dim
}

// Len returns the number of indexed vectors.
func (x *VectorIndex) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.size
}

// Add inserts a vector under the given item ID. Embeddings are immutable,
// so an ID is only ever added once.
func (x *VectorIndex) Add(id int64, vector []float32) error {
	if len(vector) != x.dim {
		return fmt.Errorf("vector dimension mismatch: expected %d, got %d", x.dim, len(vector))
	}

	vec := make([]float32, len(vector))
	copy(vec, vector)
	normalize(vec)

	x.mu.Lock()
	defer x.mu.Unlock()

	x.graph.Add(hnsw.MakeNode(id, vec))
	x.size++
	return nil
}

// Search returns up to k nearest neighbours of the query vector, most
// similar first.
func (x *VectorIndex) Search(query []float32, k int) ([]Match, error) {
	if len(query) != x.dim {
		return nil, fmt.Errorf("query dimension mismatch: expected %d, got %d", x.dim, len(query))
	}

	q := make([]float32, len(query))
	copy(q, query)
	normalize(q)

	x.mu.RLock()
	defer x.mu.RUnlock()

	if x.size == 0 {
		return []Match{}, nil
	}

	nodes := x.graph.Search(q, k)
	matches := make([]Match, 0, len(nodes))
	for _, node := range nodes {
		distance := x.graph.Distance(q, node.Value)
		matches = append(matches, Match{ID: node.Key, Score: 1 - distance})
	}
	return matches, nil
}

// normalize scales a vector to unit length in place. Zero vectors are
// left untouched.
func normalize(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return
	}
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
}
