package model

import "time"

// Item represents a single lost-or-found report.
type Item struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	Location     string    `json:"location,omitempty"`
	Category     string    `json:"category,omitempty"`
	Status       string    `json:"status"`
	OwnerID      *int64    `json:"owner_id,omitempty"`
	ContactEmail string    `json:"contact_email,omitempty"`
	ContactPhone string    `json:"contact_phone,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Item statuses. The only permitted transition is lost -> found.
const (
	ItemStatusLost  = "lost"
	ItemStatusFound = "found"
)

// ValidStatus reports whether s is a known item status.
func ValidStatus(s string) bool {
	return s == ItemStatusLost || s == ItemStatusFound
}

// ItemDraft holds the caller-supplied fields of a new item. ID, creation
// time and the embedding column are assigned by the store; Status defaults
// to lost when empty.
type ItemDraft struct {
	Title        string
	Description  string
	Location     string
	Category     string
	Status       string
	OwnerID      *int64
	ContactEmail string
	ContactPhone string
	Embedding    []float32
}

// EmbeddingText returns the text an item is embedded from: the title,
// with the description appended after a single space when present.
func (d *ItemDraft) EmbeddingText() string {
	if d.Description == "" {
		return d.Title
	}
	return d.Title + " " + d.Description
}

// ScoredItem is a similarity search result.
type ScoredItem struct {
	Item  *Item   `json:"item"`
	Score float32 `json:"score"`
}
