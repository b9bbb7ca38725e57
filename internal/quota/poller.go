// Package quota polls the eBay Analytics API for Browse quota state on a
// schedule and caches the last observation for the quota endpoint.
package quota

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/donaldgifford/listing-manager/internal/ebay"
	"github.com/donaldgifford/listing-manager/internal/metrics"
)

const pollTimeout = 30 * time.Second

// Poller periodically queries the Analytics API and keeps the most recent
// quota state. Polls are best-effort: a failed poll keeps the previous
// observation and only logs the failure.
type Poller struct {
	analytics *ebay.AnalyticsClient
	cron      *cron.Cron
	log       *slog.Logger

	mu         sync.Mutex
	last       *ebay.QuotaState
	observedAt time.Time
}

// NewPoller creates a poller running at the given interval.
func NewPoller(
	analytics *ebay.AnalyticsClient,
	interval time.Duration,
	log *slog.Logger,
) (*Poller, error) {
	c := cron.New()

	p := &Poller{
		analytics: analytics,
		cron:      c,
		log:       log,
	}

	if _, err := c.AddFunc("@every "+interval.String(), p.poll); err != nil {
		return nil, err
	}

	return p, nil
}

// Start begins polling and runs one poll immediately so the quota endpoint
// has data before the first interval elapses.
func (p *Poller) Start() {
	p.log.Info("quota poller started")
	go p.poll()
	p.cron.Start()
}

// Stop gracefully stops the poller, waiting for a running poll to finish.
func (p *Poller) Stop() context.Context {
	p.log.Info("quota poller stopping")
	return p.cron.Stop()
}

// Last returns the most recent quota observation and when it was made.
// Nil until the first successful poll.
func (p *Poller) Last() (*ebay.QuotaState, time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last, p.observedAt
}

func (p *Poller) poll() {
	ctx, cancel := context.WithTimeout(context.Background(), pollTimeout)
	defer cancel()

	state, err := p.analytics.GetBrowseQuota(ctx)
	if err != nil {
		p.log.Error("quota poll failed", "error", err)
		return
	}

	p.mu.Lock()
	p.last = state
	p.observedAt = time.Now()
	p.mu.Unlock()

	metrics.EbayQuotaRemaining.Set(float64(state.Remaining))
	metrics.EbayQuotaLimit.Set(float64(state.Limit))

	p.log.Debug("quota polled",
		"remaining", state.Remaining,
		"limit", state.Limit,
		"reset_at", state.ResetAt,
	)
}
