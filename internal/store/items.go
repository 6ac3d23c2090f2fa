package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/mlakar/foundling/internal/model"
)

// ErrTitleRequired is returned when an item draft has an empty title.
var ErrTitleRequired = errors.New("item title is required")

// listLimit caps plain and lexical listings.
const listLimit = 100

// DefaultSimilarityThreshold and DefaultSimilarityLimit are the defaults
// for similarity search.
const (
	DefaultSimilarityThreshold float32 = 0.7
	DefaultSimilarityLimit             = 5
)

const itemColumns = `id, title, description, location, category, status,
	owner_id, contact_email, contact_phone, created_at`

// CreateItem persists a new item, including its embedding when present.
// The FTS trigger and the vector index are updated in the same call, so
// both indexes stay in sync with the row set.
func (s *Store) CreateItem(ctx context.Context, draft *model.ItemDraft) (*model.Item, error) {
	if strings.TrimSpace(draft.Title) == "" {
		return nil, ErrTitleRequired
	}

	status := draft.Status
	if status == "" {
		status = model.ItemStatusLost
	}

	if len(draft.Embedding) > 0 && len(draft.Embedding) != s.vectors.Dimensions() {
		return nil, fmt.Errorf("embedding dimension mismatch: expected %d, got %d",
			s.vectors.Dimensions(), len(draft.Embedding))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO items (title, description, location, category, status,
		                    owner_id, contact_email, contact_phone)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		draft.Title, nullString(draft.Description), nullString(draft.Location),
		nullString(draft.Category), status, draft.OwnerID,
		nullString(draft.ContactEmail), nullString(draft.ContactPhone),
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	if len(draft.Embedding) > 0 {
		if err := insertEmbedding(ctx, tx, id, draft.Embedding); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing item: %w", err)
	}

	if len(draft.Embedding) > 0 {
		if err := s.vectors.Add(id, draft.Embedding); err != nil {
			return nil, fmt.Errorf("indexing embedding: %w", err)
		}
	}

	return s.GetItem(ctx, id)
}

// GetItem returns an item by ID, or nil if it does not exist.
func (s *Store) GetItem(ctx context.Context, id int64) (*model.Item, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ?`, id,
	)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// ListItems returns items ordered by creation time descending, capped at
// 100 rows. A non-empty textQuery restricts results to items whose title
// matches every term of the query (FTS5 tokenized AND match); a non-empty
// status restricts to that status.
func (s *Store) ListItems(ctx context.Context, textQuery, status string) ([]model.Item, error) {
	where, args := []string{}, []any{}
	from := `items`

	if textQuery != "" {
		match := ftsMatchExpr(textQuery)
		if match == "" {
			// Query had no indexable terms, so nothing can match.
			return []model.Item{}, nil
		}
		from = `items_fts JOIN items ON items.id = items_fts.rowid`
		where, args = append(where, `items_fts MATCH ?`), append(args, match)
	}
	if status != "" {
		where, args = append(where, `items.status = ?`), append(args, status)
	}

	query := `SELECT items.id, items.title, items.description, items.location,
		items.category, items.status, items.owner_id, items.contact_email,
		items.contact_phone, items.created_at FROM ` + from
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += ` ORDER BY items.created_at DESC, items.id DESC LIMIT ?`
	args = append(args, listLimit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// MarkFound transitions an item to found. The update is a single atomic
// statement and idempotent: marking an already-found item succeeds and
// leaves it found. Returns nil if the id does not exist.
func (s *Store) MarkFound(ctx context.Context, id int64) (*model.Item, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE items SET status = ? WHERE id = ?`, model.ItemStatusFound, id,
	)
	if err != nil {
		return nil, fmt.Errorf("marking item found: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("marking item found: %w", err)
	}
	if affected == 0 {
		return nil, nil
	}

	return s.GetItem(ctx, id)
}

// SimilaritySearch ranks items by vector closeness to the query vector.
// Only items scoring strictly above the threshold are returned, most
// similar first, capped at limit. Items without an embedding are never
// returned. A non-empty status restricts to that status.
func (s *Store) SimilaritySearch(ctx context.Context, vector []float32, status string, threshold float32, limit int) ([]model.ScoredItem, error) {
	if limit <= 0 {
		limit = DefaultSimilarityLimit
	}

	// Over-fetch so that the status filter can drop candidates without
	// starving the result set.
	candidates := limit
	if status != "" {
		candidates = limit * 5
	}

	matches, err := s.vectors.Search(vector, candidates)
	if err != nil {
		return nil, fmt.Errorf("searching vector index: %w", err)
	}

	results := []model.ScoredItem{}
	for _, match := range matches {
		if match.Score <= threshold {
			// Matches arrive ordered by score, so the rest are below too.
			break
		}

		item, err := s.GetItem(ctx, match.ID)
		if err != nil {
			return nil, err
		}
		if item == nil {
			continue
		}
		if status != "" && item.Status != status {
			continue
		}

		results = append(results, model.ScoredItem{Item: item, Score: match.Score})
		if len(results) == limit {
			break
		}
	}
	return results, nil
}

// ftsMatchExpr turns free text into an FTS5 match expression: terms are
// lowercased, quoted to neutralise FTS operators, and implicitly ANDed.
func ftsMatchExpr(query string) string {
	terms := strings.FieldsFunc(query, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(terms) == 0 {
		return ""
	}

	quoted := make([]string, len(terms))
	for i, term := range terms {
		quoted[i] = `"` + strings.ToLower(term) + `"`
	}
	return strings.Join(quoted, " ")
}

// scanItem reads an item from a row or rows cursor.
func scanItem(row interface{ Scan(...any) error }) (*model.Item, error) {
	item := &model.Item{}
	var description, location, category, contactEmail, contactPhone sql.NullString
	var ownerID sql.NullInt64

	err := row.Scan(&item.ID, &item.Title, &description, &location, &category,
		&item.Status, &ownerID, &contactEmail, &contactPhone, &item.CreatedAt)
	if err != nil {
		return nil, err
	}

	item.Description = description.String
	item.Location = location.String
	item.Category = category.String
	item.ContactEmail = contactEmail.String
	item.ContactPhone = contactPhone.String
	if ownerID.Valid {
		item.OwnerID = &ownerID.Int64
	}
	return item, nil
}

// nullString maps "" to NULL so optional columns stay NULL in the schema.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
