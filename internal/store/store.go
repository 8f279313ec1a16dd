// Package store defines the entry document store and its live subscription.
package store

import (
	"context"

	"github.com/MrSnakeDoc/bindery/internal/domain"
)

// Store persists entries. Implementations live in the redis, postgres and
// memory subpackages.
type Store interface {
	// Create appends a record with a fresh id and creation timestamp.
	Create(ctx context.Context, f domain.Fields) (string, error)

	// Get returns domain.ErrNotFound when no record has this id.
	Get(ctx context.Context, id string) (*domain.Record, error)

	// Update overwrites the fields of an existing record and stamps UpdatedAt.
	// It returns domain.ErrNotFound when the id does not exist.
	Update(ctx context.Context, id string, f domain.Fields) error

	// Delete removes a record. Deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error

	// List returns every record, newest CreatedAt first.
	List(ctx context.Context) ([]*domain.Record, error)

	// Subscribe opens a live query over the whole collection. The first
	// snapshot is delivered right away, then one after every change.
	Subscribe(ctx context.Context) (Subscription, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int64, error)

	Ping(ctx context.Context) error
	Close() error
}

// Subscription is a cancellable handle on a live list query. The owner must
// call Close exactly when it stops listening; extra calls are no-ops.
type Subscription interface {
	// Snapshots delivers the full ordered record list. It is closed after
	// Close or when the underlying connection is lost.
	Snapshots() <-chan []*domain.Record

	// Err reports why the snapshot channel closed, nil after a plain Close.
	Err() error

	Close() error
}
