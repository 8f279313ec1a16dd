package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Entry is one catalog record (a bound book) in its canonical shape.
//
// It is NOT tied to Redis, Postgres or any upload backend.
// Every stored record is normalized into this structure on read.
type Entry struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is assigned by the store on creation and never reused.
	ID string `json:"id"`

	// ─────────────────────────────
	// Description
	// ─────────────────────────────

	Title  string `json:"title"`
	Author string `json:"author"`

	// Price is nil when the book is not for sale.
	Price *decimal.Decimal `json:"price"`

	// Description is nil when empty.
	Description *string `json:"description"`

	// Photos are externally hosted image URLs in display order.
	Photos []string `json:"photos"`

	// ─────────────────────────────
	// Metadata
	// ─────────────────────────────

	// CreatedAt is the sole sort key of the listing (newest first).
	CreatedAt time.Time `json:"createdAt"`

	// UpdatedAt is set on every edit; zero until the first one.
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}

// Fields is the writable part of an entry, as sent to the store on create
// and update. Update overwrites every field.
type Fields struct {
	Title       string
	Author      string
	Price       *decimal.Decimal
	Description *string
	Photos      []string
}

// Record is an entry as read back from a store, before photo normalization.
type Record struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Author      string           `json:"author"`
	Price       *decimal.Decimal `json:"price"`
	Description *string          `json:"description"`
	Photos      PhotoSet         `json:"photos"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt,omitzero"`
}

// Entry normalizes the record into the canonical shape.
func (r *Record) Entry() Entry {
	return Entry{
		ID:          r.ID,
		Title:       r.Title,
		Author:      r.Author,
		Price:       r.Price,
		Description: OptionalText(derefString(r.Description)),
		Photos:      r.Photos.Normalize(),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// DisplayPrice returns the formatted price and whether it should be shown at
// all. A missing price or one that is not strictly positive is hidden.
func (e Entry) DisplayPrice() (string, bool) {
	if e.Price == nil || !e.Price.IsPositive() {
		return "", false
	}
	return e.Price.String(), true
}

// DescriptionText returns the description or "".
func (e Entry) DescriptionText() string {
	return derefString(e.Description)
}

// OptionalText maps "" to nil.
func OptionalText(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
