// Package match composes the item store's retrieval strategies. Lexical
// and semantic search are deliberately separate operations; callers pick
// one, and no ranking fusion is attempted.
package match

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mlakar/foundling/internal/embed"
	"github.com/mlakar/foundling/internal/model"
	"github.com/mlakar/foundling/internal/store"
)

// ErrUnavailable is returned when a semantic query cannot be served
// because the embedding provider failed. There is no silent fallback to
// lexical search: results labelled semantic must be semantic.
var ErrUnavailable = errors.New("matching unavailable")

// Engine answers listing and search queries over the item store.
type Engine struct {
	store        *store.Store
	embedder     embed.Service
	embedTimeout time.Duration
}

// NewEngine creates a matching engine. embedder may be nil when no
// embedding provider is configured; semantic queries then fail with
// ErrUnavailable.
func NewEngine(s *store.Store, embedder embed.Service, embedTimeout time.Duration) *Engine {
	return &Engine{
		store:        s,
		embedder:     embedder,
		embedTimeout: embedTimeout,
	}
}

// List serves plain and lexical listings straight from the store.
func (e *Engine) List(ctx context.Context, textQuery, status string) ([]model.Item, error) {
	return e.store.ListItems(ctx, textQuery, status)
}

// Similar embeds the query text and ranks items by vector closeness,
// returning only results above the relevance threshold.
func (e *Engine) Similar(ctx context.Context, queryText, status string) ([]model.ScoredItem, error) {
	if e.embedder == nil {
		return nil, fmt.Errorf("%w: no embedding provider configured", ErrUnavailable)
	}

	embedCtx, cancel := context.WithTimeout(ctx, e.embedTimeout)
	defer cancel()

	vector, err := e.embedder.Embed(embedCtx, queryText)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return e.store.SimilaritySearch(ctx, vector, status,
		store.DefaultSimilarityThreshold, store.DefaultSimilarityLimit)
}
