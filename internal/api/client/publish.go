package client

import (
	"context"
	"net/url"
	"strconv"

	domain "github.com/donaldgifford/listing-manager/pkg/types"
)

// Publish submits a draft to the publish endpoint. Upstream step failures
// come back as API errors carrying the failed step and any minted offer ID
// in the response body.
func (c *Client) Publish(ctx context.Context, draft *domain.ListingDraft) (*domain.PublishResult, error) {
	var result domain.PublishResult
	if err := c.post(ctx, "/listing/publish", draft, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// HistoryResult mirrors the /api/v1/history response.
type HistoryResult struct {
	Attempts []domain.PublishAttempt `json:"attempts"`
	Total    int                     `json:"total"`
}

// ListHistory returns the publish journal, newest first.
func (c *Client) ListHistory(ctx context.Context, sku string, failedOnly bool, limit int) (*HistoryResult, error) {
	params := url.Values{}
	if sku != "" {
		params.Set("sku", sku)
	}
	if failedOnly {
		params.Set("failed_only", "true")
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	path := "/api/v1/history"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var result HistoryResult
	if err := c.get(ctx, path, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
