package quota_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/listing-manager/internal/ebay"
	"github.com/donaldgifford/listing-manager/internal/quota"
)

type staticTokens struct{}

func (staticTokens) Token(_ context.Context) (string, error) {
	return "app-token", nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const analyticsJSON = `{
	"rateLimits": [{
		"apiContext": "buy",
		"apiName": "browse",
		"resources": [{
			"name": "buy.browse",
			"rates": [{
				"count": 200,
				"limit": 5000,
				"remaining": 4800,
				"reset": "2026-03-02T00:00:00.000Z",
				"timeWindow": 86400
			}]
		}]
	}]
}`

func newTestPoller(t *testing.T, handler http.HandlerFunc) *quota.Poller {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	analytics := ebay.NewAnalyticsClient(
		staticTokens{},
		ebay.Endpoints{},
		ebay.WithAnalyticsURL(srv.URL),
	)

	p, err := quota.NewPoller(analytics, time.Hour, testLogger())
	require.NoError(t, err)
	return p
}

func TestPoller_PollsImmediatelyOnStart(t *testing.T) {
	t.Parallel()

	var polls atomic.Int32

	p := newTestPoller(t, func(w http.ResponseWriter, _ *http.Request) {
		polls.Add(1)
		_, _ = w.Write([]byte(analyticsJSON))
	})

	p.Start()
	defer func() { <-p.Stop().Done() }()

	require.Eventually(t, func() bool {
		state, _ := p.Last()
		return state != nil
	}, 2*time.Second, 10*time.Millisecond)

	state, observedAt := p.Last()
	assert.Equal(t, int64(4800), state.Remaining)
	assert.Equal(t, int64(5000), state.Limit)
	assert.False(t, observedAt.IsZero())
	assert.Equal(t, int32(1), polls.Load())
}

func TestPoller_FailedPollLeavesNoObservation(t *testing.T) {
	t.Parallel()

	var polls atomic.Int32

	p := newTestPoller(t, func(w http.ResponseWriter, _ *http.Request) {
		polls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	p.Start()
	defer func() { <-p.Stop().Done() }()

	require.Eventually(t, func() bool {
		return polls.Load() > 0
	}, 2*time.Second, 10*time.Millisecond)

	state, observedAt := p.Last()
	assert.Nil(t, state)
	assert.True(t, observedAt.IsZero())
}

func TestPoller_LastBeforeFirstPoll(t *testing.T) {
	t.Parallel()

	p := newTestPoller(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(analyticsJSON))
	})

	state, observedAt := p.Last()
	assert.Nil(t, state)
	assert.True(t, observedAt.IsZero())
}
