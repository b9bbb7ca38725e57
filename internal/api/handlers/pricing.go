package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/listing-manager/internal/ebay"
	"github.com/donaldgifford/listing-manager/pkg/pricing"
)

// PricingHandler aggregates competitor prices and derives a suggested
// price for a draft.
type PricingHandler struct {
	browse  ebay.BrowseAPI
	config  pricing.Config
	vatRate float64
}

// NewPricingHandler creates a new PricingHandler.
func NewPricingHandler(browse ebay.BrowseAPI, cfg pricing.Config, vatRate float64) *PricingHandler {
	return &PricingHandler{browse: browse, config: cfg, vatRate: vatRate}
}

// PricingInput is the request body for the pricing endpoint.
type PricingInput struct {
	Body struct {
		Query      string `json:"query" minLength:"1" doc:"eBay search query for comparable listings"`
		CategoryID string `json:"category_id,omitempty" doc:"eBay category ID"`
		Limit      int    `json:"limit,omitempty" minimum:"1" doc:"Maximum comparables to aggregate (default 50)"`
	}
}

// PricingOutput is the response body for the pricing endpoint.
type PricingOutput struct {
	Body struct {
		Stats          pricing.Stats `json:"stats" doc:"Aggregated comparable totals (price + shipping)"`
		SuggestedGross float64       `json:"suggested_gross" doc:"Suggested gross price after undercut and floor"`
		SuggestedNet   float64       `json:"suggested_net" doc:"Suggested price net of VAT, informational only"`
		VATRate        float64       `json:"vat_rate" example:"0.19"`
	}
}

// GetPricing searches comparable listings and aggregates their totals into
// price statistics plus a suggested price. An empty comparable set yields
// zero stats and the configured floor price, not an error; "no competition"
// is a valid answer.
func (h *PricingHandler) GetPricing(ctx context.Context, input *PricingInput) (*PricingOutput, error) {
	limit := input.Body.Limit
	if limit <= 0 {
		limit = 50
	}

	resp, err := h.browse.Search(ctx, ebay.SearchRequest{
		Query:      input.Body.Query,
		CategoryID: input.Body.CategoryID,
		Limit:      limit,
	})
	if err != nil {
		return nil, huma.Error502BadGateway("eBay API error: " + err.Error())
	}

	stats := pricing.Aggregate(ebay.ToCompetitorOffers(resp.Items))
	suggested := pricing.Suggest(stats, h.config)

	out := &PricingOutput{}
	out.Body.Stats = stats
	out.Body.SuggestedGross = suggested
	out.Body.SuggestedNet = pricing.NetPrice(suggested, h.vatRate)
	out.Body.VATRate = h.vatRate
	return out, nil
}

// RegisterPricingRoutes registers the pricing endpoint with the Huma API.
func RegisterPricingRoutes(api huma.API, h *PricingHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "get-pricing",
		Method:      http.MethodPost,
		Path:        "/api/v1/search/pricing",
		Summary:     "Aggregate competitor prices",
		Description: "Searches comparable listings and returns price statistics plus a suggested price.",
		Tags:        []string{"search"},
		Errors:      []int{http.StatusBadGateway},
	}, h.GetPricing)
}
