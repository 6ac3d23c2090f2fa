package match

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlakar/foundling/internal/db"
	"github.com/mlakar/foundling/internal/embed"
	"github.com/mlakar/foundling/internal/index"
	"github.com/mlakar/foundling/internal/model"
	"github.com/mlakar/foundling/internal/store"
)

// fakeEmbedder returns canned vectors per text, or fails.
type fakeEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.vectors[text], nil
}

func (f *fakeEmbedder) Dimensions() int { return 3 }

func newTestEngine(t *testing.T, embedder embed.Service) (*Engine, *store.Store) {
	t.Helper()
	s, err := store.New(context.Background(), db.NewTestDB(t), index.NewVectorIndex(3))
	require.NoError(t, err)
	return NewEngine(s, embedder, time.Second), s
}

func TestListPassesThrough(t *testing.T) {
	engine, s := newTestEngine(t, nil)
	ctx := context.Background()

	_, err := s.CreateItem(ctx, &model.ItemDraft{Title: "Umbrella"})
	require.NoError(t, err)

	items, err := engine.List(ctx, "", "")
	require.NoError(t, err)
	assert.Len(t, items, 1)

	items, err = engine.List(ctx, "umbrella", model.ItemStatusLost)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestSimilarRanksByCloseness(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"black leather wallet": {1, 0, 0},
	}}
	engine, s := newTestEngine(t, embedder)
	ctx := context.Background()

	wallet, err := s.CreateItem(ctx, &model.ItemDraft{
		Title:     "Wallet",
		Embedding: []float32{0.95, 0.05, 0},
	})
	require.NoError(t, err)
	_, err = s.CreateItem(ctx, &model.ItemDraft{
		Title:     "Laptop",
		Embedding: []float32{0, 1, 0},
	})
	require.NoError(t, err)

	results, err := engine.Similar(ctx, "black leather wallet", "")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, wallet.ID, results[0].Item.ID)
}

func TestSimilarEmbeddingFailure(t *testing.T) {
	embedder := &fakeEmbedder{err: embed.ErrUnavailable}
	engine, s := newTestEngine(t, embedder)
	ctx := context.Background()

	// Even with matching items present, a failed embedding must fail the
	// query rather than fall back to lexical search.
	_, err := s.CreateItem(ctx, &model.ItemDraft{Title: "Wallet", Embedding: []float32{1, 0, 0}})
	require.NoError(t, err)

	_, err = engine.Similar(ctx, "wallet", "")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestSimilarNoEmbedderConfigured(t *testing.T) {
	engine, _ := newTestEngine(t, nil)

	_, err := engine.Similar(context.Background(), "wallet", "")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestSimilarNoMatchesAboveThreshold(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"black leather wallet": {1, 0, 0},
	}}
	engine, s := newTestEngine(t, embedder)
	ctx := context.Background()

	// Electronics only: all orthogonal to the query, scores at 0.
	_, err := s.CreateItem(ctx, &model.ItemDraft{Title: "Laptop", Embedding: []float32{0, 1, 0}})
	require.NoError(t, err)

	results, err := engine.Similar(ctx, "black leather wallet", "")
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.False(t, errors.Is(err, ErrUnavailable))
}
