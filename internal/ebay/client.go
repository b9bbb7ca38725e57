// Package ebay provides eBay REST API clients (Browse, Sell, Analytics)
// abstracted behind interfaces for testability.
package ebay

import (
	"context"

	domain "github.com/donaldgifford/listing-manager/pkg/types"
)

// SearchRequest defines the parameters for an eBay Browse search.
type SearchRequest struct {
	Query      string
	CategoryID string
	Limit      int
	Offset     int
	Sort       string
	Filters    map[string]string
}

// SearchResponse holds the results of an eBay Browse search.
type SearchResponse struct {
	Items   []ItemSummary
	Total   int
	Offset  int
	Limit   int
	HasMore bool
}

// BrowseAPI defines the competitor search surface of the eBay Browse API.
type BrowseAPI interface {
	Search(ctx context.Context, req SearchRequest) (*SearchResponse, error)
}

// TokenProvider defines the interface for obtaining the application OAuth2
// token used by the Browse and Analytics APIs.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// SellAPI defines the Sell Inventory operations of the three-step publish
// workflow. Every call takes the seller's access token explicitly: user
// tokens are request-scoped (read from the session cookie per request),
// not process-scoped like the application token.
type SellAPI interface {
	// UpsertInventoryItem creates or replaces an inventory item keyed by
	// SKU. Idempotent PUT.
	UpsertInventoryItem(ctx context.Context, token, sku string, item InventoryItemPayload) error

	// CreateOffer creates an offer for an inventory item and returns the
	// new offer ID. Not idempotent; a retry after an ambiguous network
	// failure can create a duplicate offer.
	CreateOffer(ctx context.Context, token string, offer OfferPayload) (string, error)

	// PublishOffer converts an offer into a live listing and returns the
	// listing ID.
	PublishOffer(ctx context.Context, token, offerID string) (string, error)
}

// AccountAPI defines the Sell Account reads needed to build a draft. The
// four lists are independent and may be fetched concurrently.
type AccountAPI interface {
	PaymentPolicies(ctx context.Context, token string) ([]domain.Policy, error)
	FulfillmentPolicies(ctx context.Context, token string) ([]domain.Policy, error)
	ReturnPolicies(ctx context.Context, token string) ([]domain.Policy, error)
	MerchantLocations(ctx context.Context, token string) ([]domain.Policy, error)
}
