package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/listing-manager/internal/api/handlers"
	"github.com/donaldgifford/listing-manager/internal/store"
	domain "github.com/donaldgifford/listing-manager/pkg/types"
)

// fakeJournal scripts the journal reads and records the query.
type fakeJournal struct {
	store.Noop
	attempts  []domain.PublishAttempt
	total     int
	err       error
	lastQuery *store.AttemptQuery
}

func (f *fakeJournal) ListPublishAttempts(
	_ context.Context, q *store.AttemptQuery,
) ([]domain.PublishAttempt, int, error) {
	f.lastQuery = q
	if f.err != nil {
		return nil, 0, f.err
	}
	return f.attempts, f.total, nil
}

func newHistoryAPI(t *testing.T, journal store.Store) humatest.TestAPI {
	t.Helper()

	h := handlers.NewHistoryHandler(journal)
	_, api := humatest.New(t)
	handlers.RegisterHistoryRoutes(api, h)
	return api
}

func TestHistoryHandler_ListHistory(t *testing.T) {
	t.Parallel()

	journal := &fakeJournal{
		attempts: []domain.PublishAttempt{
			{
				ID:        "a1",
				SKU:       "TP-T480-01",
				OfferID:   "offer-42",
				ListingID: "110551234567",
				CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
			},
			{
				ID:         "a2",
				SKU:        "TP-T480-01",
				OfferID:    "offer-41",
				FailedStep: "publish",
				Message:    "listing violates policy",
				CreatedAt:  time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC),
			},
		},
		total: 2,
	}
	api := newHistoryAPI(t, journal)

	resp := api.Get("/api/v1/history?sku=TP-T480-01&limit=10")
	require.Equal(t, http.StatusOK, resp.Code)

	var out struct {
		Attempts []domain.PublishAttempt `json:"attempts"`
		Total    int                     `json:"total"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out))

	assert.Equal(t, 2, out.Total)
	require.Len(t, out.Attempts, 2)
	assert.Equal(t, "110551234567", out.Attempts[0].ListingID)
	assert.Equal(t, "publish", out.Attempts[1].FailedStep)

	require.NotNil(t, journal.lastQuery)
	assert.Equal(t, "TP-T480-01", journal.lastQuery.SKU)
	assert.Equal(t, 10, journal.lastQuery.Limit)
	assert.False(t, journal.lastQuery.FailedOnly)
}

func TestHistoryHandler_ListHistory_FailedOnly(t *testing.T) {
	t.Parallel()

	journal := &fakeJournal{}
	api := newHistoryAPI(t, journal)

	resp := api.Get("/api/v1/history?failed_only=true")
	require.Equal(t, http.StatusOK, resp.Code)

	require.NotNil(t, journal.lastQuery)
	assert.True(t, journal.lastQuery.FailedOnly)
}

func TestHistoryHandler_ListHistory_NoopJournal(t *testing.T) {
	t.Parallel()

	// Without a database the endpoint shape is unchanged, just empty.
	api := newHistoryAPI(t, &fakeJournal{})

	resp := api.Get("/api/v1/history")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"total":0`)
}

func TestHistoryHandler_ListHistory_StoreError(t *testing.T) {
	t.Parallel()

	api := newHistoryAPI(t, &fakeJournal{err: assert.AnError})

	resp := api.Get("/api/v1/history")
	require.Equal(t, http.StatusInternalServerError, resp.Code)
}

func TestHistoryHandler_ListHistory_LimitTooLarge(t *testing.T) {
	t.Parallel()

	api := newHistoryAPI(t, &fakeJournal{})

	resp := api.Get("/api/v1/history?limit=500")
	require.Equal(t, http.StatusUnprocessableEntity, resp.Code)
}
