package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema: the item table plus the lexical
// index (FTS5, over title) and the vector side-table, both keyed by item
// id and kept in sync with inserts.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    email         TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS items (
    id            INTEGER PRIMARY KEY,
    title         TEXT NOT NULL CHECK (title <> ''),
    description   TEXT,
    location      TEXT,
    category      TEXT,
    status        TEXT NOT NULL DEFAULT 'lost' CHECK (status IN ('lost', 'found')),
    owner_id      INTEGER REFERENCES users(id),
    contact_email TEXT,
    contact_phone TEXT,
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_items_created_at ON items(created_at DESC);

CREATE VIRTUAL TABLE IF NOT EXISTS items_fts USING fts5(
    title,
    content='items',
    content_rowid='id'
);

-- Items are never deleted and titles never change, so the insert trigger
-- is the only one needed to keep the lexical index in sync.
CREATE TRIGGER IF NOT EXISTS items_fts_insert AFTER INSERT ON items BEGIN
    INSERT INTO items_fts (rowid, title) VALUES (new.id, new.title);
END;

CREATE TABLE IF NOT EXISTS item_embeddings (
    item_id   INTEGER PRIMARY KEY REFERENCES items(id),
    dim       INTEGER NOT NULL,
    embedding BLOB NOT NULL
);
`

// EnsureSchema creates all tables, indexes and triggers if they don't
// already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
