package ebay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	domain "github.com/donaldgifford/listing-manager/pkg/types"
)

// Sell API paths.
const (
	inventoryItemPath     = "/sell/inventory/v1/inventory_item/"
	offerPath             = "/sell/inventory/v1/offer"
	paymentPolicyPath     = "/sell/account/v1/payment_policy"
	fulfillmentPolicyPath = "/sell/account/v1/fulfillment_policy"
	returnPolicyPath      = "/sell/account/v1/return_policy"
	locationPath          = "/sell/inventory/v1/location"
)

// SellClient implements SellAPI and AccountAPI against the eBay Sell APIs.
// Unlike the Browse client it holds no token provider: the seller's access
// token is request-scoped and passed per call.
type SellClient struct {
	baseURL     string
	marketplace string
	client      *http.Client
}

// SellOption configures the SellClient.
type SellOption func(*SellClient)

// WithSellBaseURL overrides the environment-resolved API base URL.
func WithSellBaseURL(u string) SellOption {
	return func(c *SellClient) {
		c.baseURL = u
	}
}

// WithSellMarketplace overrides the default marketplace.
func WithSellMarketplace(m string) SellOption {
	return func(c *SellClient) {
		c.marketplace = m
	}
}

// WithSellHTTPClient overrides the default HTTP client.
func WithSellHTTPClient(hc *http.Client) SellOption {
	return func(c *SellClient) {
		c.client = hc
	}
}

// NewSellClient creates a Sell API client for the given environment.
func NewSellClient(endpoints Endpoints, opts ...SellOption) *SellClient {
	c := &SellClient{
		baseURL:     endpoints.APIBaseURL,
		marketplace: "EBAY_DE",
		client:      &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// UpsertInventoryItem creates or replaces the inventory item for sku.
func (c *SellClient) UpsertInventoryItem(
	ctx context.Context,
	token, sku string,
	item InventoryItemPayload,
) error {
	path := inventoryItemPath + url.PathEscape(sku)
	_, err := c.do(ctx, http.MethodPut, path, token, item)
	return err
}

type createOfferResponse struct {
	OfferID string `json:"offerId"`
}

// CreateOffer creates an offer and returns its upstream ID.
func (c *SellClient) CreateOffer(
	ctx context.Context,
	token string,
	offer OfferPayload,
) (string, error) {
	body, err := c.do(ctx, http.MethodPost, offerPath, token, offer)
	if err != nil {
		return "", err
	}

	var resp createOfferResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("parsing create offer response: %w", err)
	}
	if resp.OfferID == "" {
		return "", fmt.Errorf("create offer response missing offerId")
	}
	return resp.OfferID, nil
}

type publishOfferResponse struct {
	ListingID string `json:"listingId"`
}

// PublishOffer publishes an existing offer and returns the listing ID.
func (c *SellClient) PublishOffer(
	ctx context.Context,
	token, offerID string,
) (string, error) {
	path := offerPath + "/" + url.PathEscape(offerID) + "/publish"
	body, err := c.do(ctx, http.MethodPost, path, token, nil)
	if err != nil {
		return "", err
	}

	var resp publishOfferResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("parsing publish offer response: %w", err)
	}
	if resp.ListingID == "" {
		return "", fmt.Errorf("publish offer response missing listingId")
	}
	return resp.ListingID, nil
}

// --- Account API reads, normalized to the reduced policy shape ---

type paymentPolicyList struct {
	PaymentPolicies []accountPolicy `json:"paymentPolicies"`
}

type fulfillmentPolicyList struct {
	FulfillmentPolicies []accountPolicy `json:"fulfillmentPolicies"`
}

type returnPolicyList struct {
	ReturnPolicies []accountPolicy `json:"returnPolicies"`
}

// accountPolicy is the superset of upstream policy fields we read. Each
// policy type carries its ID under a different key; only one is set.
type accountPolicy struct {
	PaymentPolicyID     string `json:"paymentPolicyId"`
	FulfillmentPolicyID string `json:"fulfillmentPolicyId"`
	ReturnPolicyID      string `json:"returnPolicyId"`
	Name                string `json:"name"`
	Description         string `json:"description"`
}

func (p accountPolicy) id() string {
	switch {
	case p.PaymentPolicyID != "":
		return p.PaymentPolicyID
	case p.FulfillmentPolicyID != "":
		return p.FulfillmentPolicyID
	default:
		return p.ReturnPolicyID
	}
}

type locationList struct {
	Locations []struct {
		MerchantLocationKey string `json:"merchantLocationKey"`
		Name                string `json:"name"`
	} `json:"locations"`
}

// PaymentPolicies returns the seller's payment policies in reduced shape.
func (c *SellClient) PaymentPolicies(
	ctx context.Context,
	token string,
) ([]domain.Policy, error) {
	var list paymentPolicyList
	if err := c.getPolicies(ctx, token, paymentPolicyPath, &list); err != nil {
		return nil, err
	}
	return normalizePolicies(list.PaymentPolicies), nil
}

// FulfillmentPolicies returns the seller's fulfillment policies in reduced shape.
func (c *SellClient) FulfillmentPolicies(
	ctx context.Context,
	token string,
) ([]domain.Policy, error) {
	var list fulfillmentPolicyList
	if err := c.getPolicies(ctx, token, fulfillmentPolicyPath, &list); err != nil {
		return nil, err
	}
	return normalizePolicies(list.FulfillmentPolicies), nil
}

// ReturnPolicies returns the seller's return policies in reduced shape.
func (c *SellClient) ReturnPolicies(
	ctx context.Context,
	token string,
) ([]domain.Policy, error) {
	var list returnPolicyList
	if err := c.getPolicies(ctx, token, returnPolicyPath, &list); err != nil {
		return nil, err
	}
	return normalizePolicies(list.ReturnPolicies), nil
}

// MerchantLocations returns the seller's merchant locations, keyed by
// merchantLocationKey in the reduced policy shape.
func (c *SellClient) MerchantLocations(
	ctx context.Context,
	token string,
) ([]domain.Policy, error) {
	u := c.baseURL + locationPath

	body, err := c.doURL(ctx, http.MethodGet, u, token, nil)
	if err != nil {
		return nil, err
	}

	var list locationList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("parsing location response: %w", err)
	}

	out := make([]domain.Policy, 0, len(list.Locations))
	for _, loc := range list.Locations {
		out = append(out, domain.Policy{
			ID:   loc.MerchantLocationKey,
			Name: loc.Name,
		})
	}
	return out, nil
}

func (c *SellClient) getPolicies(
	ctx context.Context,
	token, path string,
	dst any,
) error {
	u := c.baseURL + path + "?marketplace_id=" + url.QueryEscape(c.marketplace)

	body, err := c.doURL(ctx, http.MethodGet, u, token, nil)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("parsing policy response: %w", err)
	}
	return nil
}

func normalizePolicies(policies []accountPolicy) []domain.Policy {
	out := make([]domain.Policy, 0, len(policies))
	for _, p := range policies {
		out = append(out, domain.Policy{
			ID:          p.id(),
			Name:        p.Name,
			Description: p.Description,
		})
	}
	return out
}

func (c *SellClient) do(
	ctx context.Context,
	method, path, token string,
	payload any,
) ([]byte, error) {
	return c.doURL(ctx, method, c.baseURL+path, token, payload)
}

// doURL executes one Sell API call with the bearer token injected.
// Non-2xx responses come back as *APIError carrying the upstream status
// and error ID; transport and parse failures are plain errors.
func (c *SellClient) doURL(
	ctx context.Context,
	method, u, token string,
	payload any,
) ([]byte, error) {
	var reqBody io.Reader = http.NoBody
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, fmt.Errorf("creating HTTP request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Content-Language", marketplaceLanguage(c.marketplace))
	req.Header.Set("X-EBAY-C-MARKETPLACE-ID", c.marketplace)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing %s %s: %w", method, u, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(resp.StatusCode, body)
	}

	return body, nil
}

// marketplaceLanguage maps a marketplace ID to the Content-Language header
// the Sell API expects for listing text.
func marketplaceLanguage(marketplace string) string {
	switch marketplace {
	case "EBAY_DE":
		return "de-DE"
	case "EBAY_GB":
		return "en-GB"
	default:
		return "en-US"
	}
}
