package tokens

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	domain "github.com/donaldgifford/listing-manager/pkg/types"
)

// ExpiryBuffer is the safety margin before access token expiry at which a
// refresh is triggered. It covers clock skew and in-flight request latency
// and is the only timing constant in the manager.
const ExpiryBuffer = 5 * time.Minute

// recentTTL bounds how long a coalesced refresh result is kept. The cache
// only needs to cover concurrent near-expiry requests, not act as storage.
const recentTTL = 10 * time.Minute

var (
	// ErrNotAuthenticated means no usable credentials are present at all.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrTokenExpired means the access token is stale and there is no
	// usable refresh path; the seller must reconnect.
	ErrTokenExpired = errors.New("token expired")
)

// RefreshFailedError wraps an upstream rejection of a refresh exchange.
// Callers clear stored credentials on this error: a refresh token the
// upstream has invalidated must not be silently reused.
type RefreshFailedError struct {
	Err error
}

func (e *RefreshFailedError) Error() string {
	return fmt.Sprintf("token refresh failed: %v", e.Err)
}

func (e *RefreshFailedError) Unwrap() error {
	return e.Err
}

// Refresher performs the upstream refresh-token exchange.
type Refresher interface {
	Refresh(ctx context.Context, prev *domain.TokenSet) (*domain.TokenSet, error)
}

type recentEntry struct {
	ts       *domain.TokenSet
	storedAt time.Time
}

// Manager derives a currently-valid access token from a TokenSet,
// refreshing transparently when the token is within the expiry buffer.
//
// The manager holds no authoritative state: the encrypted cookie is the
// source of truth and every request presents its own TokenSet. The only
// in-process state is a best-effort cache of recent refresh results keyed
// by credential identity, so concurrent near-expiry requests coalesce onto
// a single upstream exchange instead of racing. The cache is invalidated
// on refresh failure and disconnect and is never trusted across process
// instances.
type Manager struct {
	refresher Refresher
	nowFunc   func() time.Time

	mu     sync.Mutex
	locks  map[string]*sync.Mutex
	recent map[string]recentEntry
}

// ManagerOption configures the Manager.
type ManagerOption func(*Manager)

// WithManagerNowFunc overrides the time function for testing.
func WithManagerNowFunc(f func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowFunc = f
	}
}

// NewManager creates a token lifecycle manager.
func NewManager(refresher Refresher, opts ...ManagerOption) *Manager {
	m := &Manager{
		refresher: refresher,
		nowFunc:   time.Now,
		locks:     make(map[string]*sync.Mutex),
		recent:    make(map[string]recentEntry),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Ensure returns an access token valid for an outgoing API call. If the
// presented TokenSet is fresh the token is returned as-is; if it is within
// the expiry buffer a single refresh exchange runs and the replacement
// TokenSet is returned alongside the token so the caller can write it back
// to the cookie. Refresh failures are never retried.
func (m *Manager) Ensure(
	ctx context.Context,
	ts *domain.TokenSet,
) (string, *domain.TokenSet, error) {
	if ts == nil || (ts.AccessToken == "" && ts.RefreshToken == "") {
		return "", nil, ErrNotAuthenticated
	}

	now := m.nowFunc()
	if ts.AccessToken != "" && now.Before(ts.ExpiresAt.Add(-ExpiryBuffer)) {
		return ts.AccessToken, nil, nil
	}

	if !m.refreshUsable(ts, now) {
		return "", nil, ErrTokenExpired
	}

	refreshed, err := m.refresh(ctx, ts, false)
	if err != nil {
		return "", nil, err
	}
	return refreshed.AccessToken, refreshed, nil
}

// ForceRefresh runs a refresh exchange regardless of remaining lifetime
// and returns the replacement TokenSet.
func (m *Manager) ForceRefresh(
	ctx context.Context,
	ts *domain.TokenSet,
) (*domain.TokenSet, error) {
	if ts == nil || !ts.HasRefreshToken() {
		return nil, ErrNotAuthenticated
	}
	if !m.refreshUsable(ts, m.nowFunc()) {
		return nil, ErrTokenExpired
	}
	return m.refresh(ctx, ts, true)
}

// Forget invalidates any cached refresh result for the TokenSet's
// credential identity. Called on disconnect.
func (m *Manager) Forget(ts *domain.TokenSet) {
	if ts == nil || ts.RefreshToken == "" {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.recent, identityKey(ts.RefreshToken))
	delete(m.locks, identityKey(ts.RefreshToken))
}

// NeedsRefresh reports whether the TokenSet is inside the expiry buffer.
func (m *Manager) NeedsRefresh(ts *domain.TokenSet) bool {
	if ts == nil || ts.AccessToken == "" {
		return true
	}
	return !m.nowFunc().Before(ts.ExpiresAt.Add(-ExpiryBuffer))
}

func (m *Manager) refreshUsable(ts *domain.TokenSet, now time.Time) bool {
	if !ts.HasRefreshToken() {
		return false
	}
	// A zero refresh expiry means the upstream never declared one.
	return ts.RefreshExpiresAt.IsZero() || now.Before(ts.RefreshExpiresAt)
}

// refresh serializes refresh exchanges per credential identity. A caller
// that loses the race re-checks the shared result under the lock and
// reuses it instead of issuing a second upstream exchange, unless force
// is set.
func (m *Manager) refresh(
	ctx context.Context,
	ts *domain.TokenSet,
	force bool,
) (*domain.TokenSet, error) {
	key := identityKey(ts.RefreshToken)
	lock := m.identityLock(key)

	lock.Lock()
	defer lock.Unlock()

	if !force {
		if cached := m.cachedResult(key); cached != nil {
			return cached, nil
		}
	}

	refreshed, err := m.refresher.Refresh(ctx, ts)
	if err != nil {
		m.mu.Lock()
		delete(m.recent, key)
		m.mu.Unlock()
		return nil, &RefreshFailedError{Err: err}
	}

	now := m.nowFunc()
	m.mu.Lock()
	m.recent[key] = recentEntry{ts: refreshed, storedAt: now}
	// The upstream may have rotated the refresh token; make the result
	// reachable under the new identity too.
	if refreshed.RefreshToken != ts.RefreshToken && refreshed.RefreshToken != "" {
		m.recent[identityKey(refreshed.RefreshToken)] = recentEntry{ts: refreshed, storedAt: now}
	}
	m.pruneLocked(now)
	m.mu.Unlock()

	return refreshed, nil
}

// cachedResult returns a recent refresh result for the identity if it is
// still comfortably valid, nil otherwise.
func (m *Manager) cachedResult(key string) *domain.TokenSet {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.recent[key]
	if !ok {
		return nil
	}

	now := m.nowFunc()
	if now.Sub(entry.storedAt) > recentTTL ||
		!now.Before(entry.ts.ExpiresAt.Add(-ExpiryBuffer)) {
		delete(m.recent, key)
		return nil
	}
	return entry.ts
}

func (m *Manager) identityLock(key string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()

	lock, ok := m.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[key] = lock
	}
	return lock
}

func (m *Manager) pruneLocked(now time.Time) {
	for k, entry := range m.recent {
		if now.Sub(entry.storedAt) > recentTTL {
			delete(m.recent, k)
		}
	}

	// Locks track live cache identities; an identity with no remaining
	// cache entry loses its lock too, otherwise the map grows with every
	// seller that ever refreshed. A holder of a dropped lock finishes
	// undisturbed; the next caller allocates a fresh one.
	for k := range m.locks {
		if _, ok := m.recent[k]; !ok {
			delete(m.locks, k)
		}
	}
}

func identityKey(refreshToken string) string {
	sum := sha256.Sum256([]byte(refreshToken))
	return hex.EncodeToString(sum[:])
}
