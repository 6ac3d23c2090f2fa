// Package store owns the persisted item records and the two indexes over
// them: the FTS5 lexical index (maintained by the database itself) and
// the in-process vector index (mirrored from the item_embeddings table).
package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mlakar/foundling/internal/index"
)

// Store provides access to items, users and the item indexes.
type Store struct {
	db      *sql.DB
	vectors *index.VectorIndex
}

// New creates a Store and rebuilds the vector index from the persisted
// embeddings.
func New(ctx context.Context, db *sql.DB, vectors *index.VectorIndex) (*Store, error) {
	s := &Store{db: db, vectors: vectors}
	if err := s.loadVectors(ctx); err != nil {
		return nil, fmt.Errorf("loading vector index: %w", err)
	}
	return s, nil
}
