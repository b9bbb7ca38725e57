// Package store defines the publish journal datastore abstraction. The
// journal is an audit log of publish attempts; it is optional, best-effort,
// and never consulted on the publish path itself. Business logic depends on
// the Store interface, never on concrete implementations.
package store

import (
	"context"

	domain "github.com/donaldgifford/listing-manager/pkg/types"
)

// AttemptQuery defines optional filters for journal queries.
type AttemptQuery struct {
	SKU        string
	FailedOnly bool
	Limit      int // default 50
	Offset     int
}

// Store defines all data access operations for the publish journal.
type Store interface {
	// RecordPublishAttempt inserts one journal row. The attempt's ID and
	// CreatedAt are assigned by the store.
	RecordPublishAttempt(ctx context.Context, a *domain.PublishAttempt) error

	// ListPublishAttempts returns journal rows newest-first with the
	// total count matching the filter.
	ListPublishAttempts(ctx context.Context, q *AttemptQuery) ([]domain.PublishAttempt, int, error)

	// Migrate applies pending SQL schema migrations.
	Migrate(ctx context.Context) error

	// Ping verifies the database connection is alive.
	Ping(ctx context.Context) error
}
