//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/donaldgifford/listing-manager/internal/store"
	domain "github.com/donaldgifford/listing-manager/pkg/types"
)

func setupPostgres(t *testing.T) *store.PostgresStore {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("lm_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, pgContainer.Terminate(ctx))
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	s, err := store.NewPostgresStore(ctx, connStr)
	require.NoError(t, err)

	t.Cleanup(func() {
		s.Close()
	})

	require.NoError(t, s.Migrate(ctx))

	return s
}

func successAttempt(sku string) *domain.PublishAttempt {
	return &domain.PublishAttempt{
		SKU:         sku,
		OfferID:     "offer-42",
		ListingID:   "110551234567",
		Environment: "SANDBOX",
	}
}

func failedAttempt(sku, step string) *domain.PublishAttempt {
	return &domain.PublishAttempt{
		SKU:             sku,
		OfferID:         "offer-41",
		FailedStep:      step,
		UpstreamErrorID: "25002",
		Message:         "listing violates policy",
		Environment:     "SANDBOX",
	}
}

func TestPostgresStore_Ping(t *testing.T) {
	s := setupPostgres(t)
	require.NoError(t, s.Ping(context.Background()))
}

func TestPostgresStore_MigrateIsIdempotent(t *testing.T) {
	s := setupPostgres(t)
	require.NoError(t, s.Migrate(context.Background()))
}

func TestPostgresStore_RecordPublishAttempt(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	t.Run("success row", func(t *testing.T) {
		a := successAttempt("record-test-1")
		require.NoError(t, s.RecordPublishAttempt(ctx, a))
		assert.NotEmpty(t, a.ID)
		assert.False(t, a.CreatedAt.IsZero())
	})

	t.Run("failed row keeps step and upstream id", func(t *testing.T) {
		a := failedAttempt("record-test-2", "publish")
		require.NoError(t, s.RecordPublishAttempt(ctx, a))
		assert.NotEmpty(t, a.ID)

		attempts, total, err := s.ListPublishAttempts(ctx, &store.AttemptQuery{SKU: "record-test-2"})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, attempts, 1)
		assert.Equal(t, "publish", attempts[0].FailedStep)
		assert.Equal(t, "25002", attempts[0].UpstreamErrorID)
		assert.Equal(t, "listing violates policy", attempts[0].Message)
	})
}

func TestPostgresStore_ListPublishAttempts(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()

	// Three attempts for one SKU, one of them failed, plus an
	// unrelated SKU.
	require.NoError(t, s.RecordPublishAttempt(ctx, successAttempt("list-test-1")))
	require.NoError(t, s.RecordPublishAttempt(ctx, failedAttempt("list-test-1", "offer")))
	require.NoError(t, s.RecordPublishAttempt(ctx, successAttempt("list-test-1")))
	require.NoError(t, s.RecordPublishAttempt(ctx, successAttempt("list-test-2")))

	t.Run("no filters", func(t *testing.T) {
		attempts, total, err := s.ListPublishAttempts(ctx, &store.AttemptQuery{Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, 4, total)
		assert.Len(t, attempts, 4)
	})

	t.Run("newest first", func(t *testing.T) {
		attempts, _, err := s.ListPublishAttempts(ctx, &store.AttemptQuery{Limit: 10})
		require.NoError(t, err)
		require.NotEmpty(t, attempts)
		for i := 1; i < len(attempts); i++ {
			assert.False(t, attempts[i-1].CreatedAt.Before(attempts[i].CreatedAt))
		}
	})

	t.Run("sku filter", func(t *testing.T) {
		attempts, total, err := s.ListPublishAttempts(ctx, &store.AttemptQuery{SKU: "list-test-2", Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, attempts, 1)
		assert.Equal(t, "list-test-2", attempts[0].SKU)
	})

	t.Run("failed only", func(t *testing.T) {
		attempts, total, err := s.ListPublishAttempts(ctx, &store.AttemptQuery{FailedOnly: true, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, attempts, 1)
		assert.Equal(t, "offer", attempts[0].FailedStep)
	})

	t.Run("pagination total count is correct", func(t *testing.T) {
		attempts, total, err := s.ListPublishAttempts(ctx, &store.AttemptQuery{Limit: 1, Offset: 3})
		require.NoError(t, err)
		assert.Equal(t, 4, total)
		assert.Len(t, attempts, 1)
	})

	t.Run("no matches", func(t *testing.T) {
		attempts, total, err := s.ListPublishAttempts(ctx, &store.AttemptQuery{SKU: "nonexistent"})
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, attempts)
	})
}
