package client

import (
	"context"
	"time"
)

// SessionStatus mirrors the /oauth/status response.
type SessionStatus struct {
	Connected        bool       `json:"connected"`
	ExpiresAt        *time.Time `json:"expires_at,omitempty"`
	RefreshExpiresAt *time.Time `json:"refresh_expires_at,omitempty"`
	NeedsRefresh     bool       `json:"needs_refresh"`
	HasRefreshToken  bool       `json:"has_refresh_token"`
}

// GetSessionStatus returns the server's view of the session. Note that the
// CLI carries no session cookie, so against a fresh shell this reports
// disconnected even when a browser session exists.
func (c *Client) GetSessionStatus(ctx context.Context) (*SessionStatus, error) {
	var status SessionStatus
	if err := c.get(ctx, "/oauth/status", &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// QuotaStatus mirrors the /api/v1/quota response.
type QuotaStatus struct {
	DailyLimit int64     `json:"daily_limit"`
	DailyUsed  int64     `json:"daily_used"`
	Remaining  int64     `json:"remaining"`
	ResetAt    time.Time `json:"reset_at"`

	Upstream *struct {
		Limit      int64     `json:"limit"`
		Remaining  int64     `json:"remaining"`
		ResetAt    time.Time `json:"reset_at"`
		ObservedAt time.Time `json:"observed_at"`
	} `json:"upstream,omitempty"`
}

// GetQuota returns the current eBay API quota status.
func (c *Client) GetQuota(ctx context.Context) (*QuotaStatus, error) {
	var quota QuotaStatus
	if err := c.get(ctx, "/api/v1/quota", &quota); err != nil {
		return nil, err
	}
	return &quota, nil
}
