package store

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"
)

// insertEmbedding stores an item's vector inside the creating transaction
// so the row and its vector are committed together.
func insertEmbedding(ctx context.Context, tx *sql.Tx, itemID int64, vector []float32) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO item_embeddings (item_id, dim, embedding) VALUES (?, ?, ?)`,
		itemID, len(vector), serializeVector(vector),
	)
	if err != nil {
		return fmt.Errorf("storing embedding: %w", err)
	}
	return nil
}

// loadVectors rebuilds the in-process vector index from the persisted
// embeddings. Rows whose dimension does not match the configured index
// are skipped with a warning; they become searchable again once the
// provider dimension matches (re-embedding is out of scope).
func (s *Store) loadVectors(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT item_id, dim, embedding FROM item_embeddings`,
	)
	if err != nil {
		return fmt.Errorf("reading embeddings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var itemID int64
		var dim int
		var blob []byte
		if err := rows.Scan(&itemID, &dim, &blob); err != nil {
			return fmt.Errorf("scanning embedding: %w", err)
		}

		if dim != s.vectors.Dimensions() {
			slog.Warn("skipping embedding with stale dimension",
				"item_id", itemID, "dim", dim, "expected", s.vectors.Dimensions())
			continue
		}

		vector, err := deserializeVector(blob, dim)
		if err != nil {
			return fmt.Errorf("decoding embedding for item %d: %w", itemID, err)
		}
		if err := s.vectors.Add(itemID, vector); err != nil {
			return fmt.Errorf("indexing embedding for item %d: %w", itemID, err)
		}
	}
	return rows.Err()
}

// serializeVector encodes a vector as little-endian float32 bytes.
func serializeVector(vector []float32) []byte {
	buf := make([]byte, 4*len(vector))
	for i, v := range vector {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// deserializeVector decodes little-endian float32 bytes.
func deserializeVector(data []byte, dim int) ([]float32, error) {
	if len(data) != 4*dim {
		return nil, fmt.Errorf("embedding blob has %d bytes, expected %d", len(data), 4*dim)
	}
	vector := make([]float32, dim)
	for i := range vector {
		vector[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vector, nil
}
