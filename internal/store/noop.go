package store

import (
	"context"
	"log/slog"

	domain "github.com/donaldgifford/listing-manager/pkg/types"
)

// Noop implements Store by discarding writes with a debug log. It is used
// when no journal database is configured; the publish path works the same
// either way.
type Noop struct {
	log *slog.Logger
}

// NewNoop creates a journal that discards attempts with a log message.
func NewNoop(log *slog.Logger) *Noop {
	return &Noop{log: log}
}

// RecordPublishAttempt logs and discards the attempt.
func (n *Noop) RecordPublishAttempt(_ context.Context, a *domain.PublishAttempt) error {
	n.log.Debug("publish attempt discarded (no journal configured)",
		"sku", a.SKU,
		"failed_step", a.FailedStep,
	)
	return nil
}

// ListPublishAttempts returns an empty result.
func (*Noop) ListPublishAttempts(
	_ context.Context,
	_ *AttemptQuery,
) ([]domain.PublishAttempt, int, error) {
	return nil, 0, nil
}

// Migrate is a no-op.
func (*Noop) Migrate(_ context.Context) error {
	return nil
}

// Ping always succeeds.
func (*Noop) Ping(_ context.Context) error {
	return nil
}
