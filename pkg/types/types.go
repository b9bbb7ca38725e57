// Package domain defines the core business types for the listing manager.
package domain

import (
	"time"
)

// Environment selects the eBay environment a process talks to. Sandbox and
// production hostnames are distinct and never interchangeable.
type Environment string

// Environment constants.
const (
	EnvSandbox    Environment = "SANDBOX"
	EnvProduction Environment = "PRODUCTION"
)

// TokenSet holds the user OAuth tokens for one connected seller session.
// Expiry fields are absolute times derived from issue time plus the
// server-declared lifetime. A TokenSet is replaced wholesale on refresh,
// never field-patched.
type TokenSet struct {
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	ExpiresAt        time.Time `json:"expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
	TokenType        string    `json:"token_type"`
}

// HasRefreshToken reports whether a usable refresh token is present.
func (t *TokenSet) HasRefreshToken() bool {
	return t != nil && t.RefreshToken != ""
}

// Condition is the inventory item condition sent to the Sell API. Only the
// two enumerated values are valid upstream; anything else maps to
// ConditionUsedExcellent.
type Condition string

// Condition constants.
const (
	ConditionNew           Condition = "NEW"
	ConditionUsedExcellent Condition = "USED_EXCELLENT"
)

// NormalizeCondition maps an arbitrary input condition to one of the two
// conditions the marketplace accepts. Unknown values fall back to
// USED_EXCELLENT; this is the documented default, not an error.
func NormalizeCondition(raw string) Condition {
	if Condition(raw) == ConditionNew {
		return ConditionNew
	}
	return ConditionUsedExcellent
}

// PolicyIDs carries the three required business policy identifiers plus the
// merchant location key an offer must reference.
type PolicyIDs struct {
	PaymentPolicyID     string `json:"payment_policy_id"`
	FulfillmentPolicyID string `json:"fulfillment_policy_id"`
	ReturnPolicyID      string `json:"return_policy_id"`
	MerchantLocationKey string `json:"merchant_location_key"`
}

// ListingDraft is the per-request input to the publish workflow. Drafts are
// transient; they are validated, converted to upstream payloads, and
// discarded with the request.
type ListingDraft struct {
	SKU             string    `json:"sku"`
	Title           string    `json:"title"`
	DescriptionHTML string    `json:"description_html"`
	CategoryID      string    `json:"category_id"`
	PriceGross      float64   `json:"price_gross"`
	Currency        string    `json:"currency"`
	Quantity        int       `json:"quantity"`
	Condition       string    `json:"condition"`
	Images          []string  `json:"images,omitempty"`
	Policies        PolicyIDs `json:"policies"`
}

// PublishStep identifies one step of the three-step publish workflow.
type PublishStep string

// Publish step constants, in execution order.
const (
	StepInventory PublishStep = "inventory"
	StepOffer     PublishStep = "offer"
	StepPublish   PublishStep = "publish"
)

// PublishResult is the outcome of one publish invocation. On failure,
// FailedStep tags which step broke and OfferID carries any identifier
// already minted upstream so the caller can resume manually. A result is
// owned by the request that produced it and never merged with prior runs.
type PublishResult struct {
	SKU       string `json:"sku"`
	OfferID   string `json:"offer_id,omitempty"`
	ListingID string `json:"listing_id,omitempty"`

	FailedStep      PublishStep `json:"failed_step,omitempty"`
	UpstreamStatus  int         `json:"upstream_status,omitempty"`
	UpstreamErrorID string      `json:"upstream_error_id,omitempty"`
	Message         string      `json:"message,omitempty"`
}

// Succeeded reports whether all three steps completed.
func (r *PublishResult) Succeeded() bool {
	return r.FailedStep == ""
}

// Policy is the reduced shape of an upstream business policy or merchant
// location. Callers only ever see id/name/description, isolating them from
// upstream schema churn.
type Policy struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// SellerPolicies groups the policy and location lists needed to build a
// draft. The four lists are independent reads and are fetched concurrently.
type SellerPolicies struct {
	Payment     []Policy `json:"payment"`
	Fulfillment []Policy `json:"fulfillment"`
	Return      []Policy `json:"return"`
	Locations   []Policy `json:"locations"`
}

// CompetitorOffer is one competing listing considered by the pricing
// aggregator. Shipping is included in the comparable total.
type CompetitorOffer struct {
	Title    string  `json:"title,omitempty"`
	Price    float64 `json:"price"`
	Shipping float64 `json:"shipping"`
}

// Total returns the comparable price including shipping.
func (o CompetitorOffer) Total() float64 {
	return o.Price + o.Shipping
}

// PublishAttempt is one row of the publish journal: a historical record of
// a publish invocation and its outcome. Journal rows are audit data only
// and never feed back into a publish decision.
type PublishAttempt struct {
	ID              string    `json:"id"                db:"id"`
	SKU             string    `json:"sku"               db:"sku"`
	OfferID         string    `json:"offer_id"          db:"offer_id"`
	ListingID       string    `json:"listing_id"        db:"listing_id"`
	FailedStep      string    `json:"failed_step"       db:"failed_step"`
	UpstreamErrorID string    `json:"upstream_error_id" db:"upstream_error_id"`
	Message         string    `json:"message"           db:"message"`
	Environment     string    `json:"environment"       db:"environment"`
	CreatedAt       time.Time `json:"created_at"        db:"created_at"`
}
