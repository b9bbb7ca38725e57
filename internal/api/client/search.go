package client

import (
	"context"

	"github.com/donaldgifford/listing-manager/pkg/pricing"
	domain "github.com/donaldgifford/listing-manager/pkg/types"
)

// SearchRequest is the request body for the search endpoints.
type SearchRequest struct {
	Query      string `json:"query"`
	CategoryID string `json:"category_id,omitempty"`
	Limit      int    `json:"limit,omitempty"`
}

// SearchResult mirrors the /api/v1/search response.
type SearchResult struct {
	Offers  []domain.CompetitorOffer `json:"offers"`
	Total   int                      `json:"total"`
	HasMore bool                     `json:"has_more"`
}

// Search runs a competitor search.
func (c *Client) Search(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	var result SearchResult
	if err := c.post(ctx, "/api/v1/search", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// PricingResult mirrors the /api/v1/search/pricing response.
type PricingResult struct {
	Stats          pricing.Stats `json:"stats"`
	SuggestedGross float64       `json:"suggested_gross"`
	SuggestedNet   float64       `json:"suggested_net"`
	VATRate        float64       `json:"vat_rate"`
}

// GetPricing aggregates competitor prices for a query.
func (c *Client) GetPricing(ctx context.Context, req SearchRequest) (*PricingResult, error) {
	var result PricingResult
	if err := c.post(ctx, "/api/v1/search/pricing", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
