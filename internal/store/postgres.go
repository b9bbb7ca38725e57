package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domain "github.com/donaldgifford/listing-manager/pkg/types"
)

const defaultPoolSize = 10

// PostgresStore implements Store using pgxpool (connection-pooled
// PostgreSQL).
//
// TODO(test): PostgresStore methods require live Postgres, tested via integration tests.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore with connection pooling.
func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	cfg.MaxConns = defaultPoolSize

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Close gracefully shuts down the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping verifies the database connection is alive.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate applies pending SQL schema migrations.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	return RunMigrations(ctx, s.pool)
}

const queryInsertAttempt = `
INSERT INTO publish_attempts (
	sku, offer_id, listing_id, failed_step,
	upstream_error_id, message, environment
) VALUES (
	@sku, @offer_id, @listing_id, @failed_step,
	@upstream_error_id, @message, @environment
)
RETURNING id, created_at`

// RecordPublishAttempt inserts one journal row.
func (s *PostgresStore) RecordPublishAttempt(
	ctx context.Context,
	a *domain.PublishAttempt,
) error {
	args := pgx.NamedArgs{
		"sku":               a.SKU,
		"offer_id":          a.OfferID,
		"listing_id":        a.ListingID,
		"failed_step":       a.FailedStep,
		"upstream_error_id": a.UpstreamErrorID,
		"message":           a.Message,
		"environment":       a.Environment,
	}

	if err := s.pool.QueryRow(ctx, queryInsertAttempt, args).Scan(&a.ID, &a.CreatedAt); err != nil {
		return fmt.Errorf("inserting publish attempt: %w", err)
	}
	return nil
}

const queryListAttempts = `
SELECT id, sku, offer_id, listing_id, failed_step,
       upstream_error_id, message, environment, created_at,
       count(*) OVER () AS total
FROM publish_attempts
WHERE (@sku = '' OR sku = @sku)
  AND (NOT @failed_only::boolean OR failed_step <> '')
ORDER BY created_at DESC
LIMIT @limit OFFSET @offset`

// ListPublishAttempts returns journal rows newest-first plus the total
// count matching the filter.
func (s *PostgresStore) ListPublishAttempts(
	ctx context.Context,
	q *AttemptQuery,
) ([]domain.PublishAttempt, int, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 50
	}

	args := pgx.NamedArgs{
		"sku":         q.SKU,
		"failed_only": q.FailedOnly,
		"limit":       limit,
		"offset":      q.Offset,
	}

	rows, err := s.pool.Query(ctx, queryListAttempts, args)
	if err != nil {
		return nil, 0, fmt.Errorf("querying publish attempts: %w", err)
	}
	defer rows.Close()

	var (
		attempts []domain.PublishAttempt
		total    int
	)
	for rows.Next() {
		var a domain.PublishAttempt
		if err := rows.Scan(
			&a.ID, &a.SKU, &a.OfferID, &a.ListingID, &a.FailedStep,
			&a.UpstreamErrorID, &a.Message, &a.Environment, &a.CreatedAt,
			&total,
		); err != nil {
			return nil, 0, fmt.Errorf("scanning publish attempt: %w", err)
		}
		attempts = append(attempts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating publish attempts: %w", err)
	}

	return attempts, total, nil
}
