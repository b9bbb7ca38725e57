package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/listing-manager/internal/ebay"
	domain "github.com/donaldgifford/listing-manager/pkg/types"
)

// SearchHandler handles competitor search requests.
type SearchHandler struct {
	browse ebay.BrowseAPI
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(browse ebay.BrowseAPI) *SearchHandler {
	return &SearchHandler{browse: browse}
}

// SearchInput is the request body for the search endpoint.
type SearchInput struct {
	Body struct {
		Query      string            `json:"query" minLength:"1" doc:"eBay search query" example:"DDR4 ECC REG 32GB server RAM"`
		CategoryID string            `json:"category_id,omitempty" doc:"eBay category ID" example:"170083"`
		Limit      int               `json:"limit,omitempty" minimum:"1" doc:"Maximum results to return (default 10)" example:"10"`
		Offset     int               `json:"offset,omitempty" minimum:"0" doc:"Result offset for pagination"`
		Sort       string            `json:"sort,omitempty" doc:"Sort order" example:"price"`
		Filters    map[string]string `json:"filters,omitempty" doc:"Additional eBay filters"`
	}
}

// SearchOutput is the response body for the search endpoint.
type SearchOutput struct {
	Body struct {
		Offers  []domain.CompetitorOffer `json:"offers" doc:"Competitor offers with shipping-inclusive totals"`
		Total   int                      `json:"total" doc:"Total matching items"`
		HasMore bool                     `json:"has_more" doc:"Whether more results are available"`
	}
}

// Search proxies a search request to the eBay Browse API and reduces the
// results to comparable competitor offers.
func (h *SearchHandler) Search(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	limit := input.Body.Limit
	if limit <= 0 {
		limit = 10
	}

	resp, err := h.browse.Search(ctx, ebay.SearchRequest{
		Query:      input.Body.Query,
		CategoryID: input.Body.CategoryID,
		Limit:      limit,
		Offset:     input.Body.Offset,
		Sort:       input.Body.Sort,
		Filters:    input.Body.Filters,
	})
	if err != nil {
		return nil, huma.Error502BadGateway("eBay API error: " + err.Error())
	}

	out := &SearchOutput{}
	out.Body.Offers = ebay.ToCompetitorOffers(resp.Items)
	out.Body.Total = resp.Total
	out.Body.HasMore = resp.HasMore
	return out, nil
}

// RegisterSearchRoutes registers search endpoints with the Huma API.
func RegisterSearchRoutes(api huma.API, h *SearchHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "search-competitors",
		Method:      http.MethodPost,
		Path:        "/api/v1/search",
		Summary:     "Search competing eBay listings",
		Description: "Proxies a search request to the eBay Browse API and returns competitor offers.",
		Tags:        []string{"search"},
		Errors:      []int{http.StatusBadGateway},
	}, h.Search)
}
