package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/listing-manager/internal/ebay"
	"github.com/donaldgifford/listing-manager/internal/publish"
	"github.com/donaldgifford/listing-manager/internal/store"
	"github.com/donaldgifford/listing-manager/pkg/pricing"
	domain "github.com/donaldgifford/listing-manager/pkg/types"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeAccount scripts the four Account API reads.
type fakeAccount struct {
	payment     []domain.Policy
	fulfillment []domain.Policy
	returns     []domain.Policy
	locations   []domain.Policy

	paymentErr error
}

func (f *fakeAccount) PaymentPolicies(_ context.Context, _ string) ([]domain.Policy, error) {
	if f.paymentErr != nil {
		return nil, f.paymentErr
	}
	return f.payment, nil
}

func (f *fakeAccount) FulfillmentPolicies(_ context.Context, _ string) ([]domain.Policy, error) {
	return f.fulfillment, nil
}

func (f *fakeAccount) ReturnPolicies(_ context.Context, _ string) ([]domain.Policy, error) {
	return f.returns, nil
}

func (f *fakeAccount) MerchantLocations(_ context.Context, _ string) ([]domain.Policy, error) {
	return f.locations, nil
}

// fakeSell scripts the three Sell API publish calls.
type fakeSell struct {
	upsertErr  error
	offerErr   error
	publishErr error
	offerID    string
	listingID  string
}

func (f *fakeSell) UpsertInventoryItem(
	_ context.Context, _, _ string, _ ebay.InventoryItemPayload,
) error {
	return f.upsertErr
}

func (f *fakeSell) CreateOffer(
	_ context.Context, _ string, _ ebay.OfferPayload,
) (string, error) {
	if f.offerErr != nil {
		return "", f.offerErr
	}
	return f.offerID, nil
}

func (f *fakeSell) PublishOffer(_ context.Context, _, _ string) (string, error) {
	if f.publishErr != nil {
		return "", f.publishErr
	}
	return f.listingID, nil
}

func testPricingConfig() pricing.Config {
	return pricing.Config{
		Base:          pricing.BaseMin,
		UndercutBy:    0.5,
		MinGrossPrice: 1.0,
	}
}

func newListingTestHandler(
	t *testing.T,
	account ebay.AccountAPI,
	sell ebay.SellAPI,
) (*ListingHandler, *Sessions) {
	t.Helper()

	sessions, _ := newTestSessions(t, &fakeRefresher{})
	publisher := publish.NewPublisher(
		sell, store.NewNoop(testLogger()), "EBAY_DE", domain.EnvSandbox, testLogger(),
	)
	h := NewListingHandler(
		sessions, account, publisher, testPricingConfig(), 0.19, testLogger(),
	)
	return h, sessions
}

func draftJSON() string {
	return `{
		"sku": "TP-T480-01",
		"title": "ThinkPad T480",
		"description_html": "<p>Guter Zustand</p>",
		"category_id": "177",
		"price_gross": 249.99,
		"currency": "EUR",
		"quantity": 1,
		"condition": "USED_EXCELLENT",
		"images": ["https://example.com/1.jpg"],
		"policies": {
			"payment_policy_id": "pay-1",
			"fulfillment_policy_id": "ship-1",
			"return_policy_id": "ret-1",
			"merchant_location_key": "warehouse-1"
		}
	}`
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func withSession(t *testing.T, req *http.Request, s *Sessions) *http.Request {
	t.Helper()
	req.AddCookie(&http.Cookie{
		Name:  sessionCookie,
		Value: sessionCookieValue(t, s, freshSession()),
	})
	return req
}

func TestListingHandler_Policies(t *testing.T) {
	t.Parallel()

	account := &fakeAccount{
		payment:     []domain.Policy{{ID: "pay-1", Name: "Standard"}},
		fulfillment: []domain.Policy{{ID: "ship-1", Name: "DHL Paket"}},
		returns:     []domain.Policy{{ID: "ret-1", Name: "30 Tage"}},
		locations:   []domain.Policy{{ID: "warehouse-1", Name: "Berlin"}},
	}
	h, sessions := newListingTestHandler(t, account, &fakeSell{})

	e := echo.New()
	req := withSession(t, httptest.NewRequest(http.MethodGet, "/listing/policies", http.NoBody), sessions)
	rec := httptest.NewRecorder()

	require.NoError(t, h.Policies(e.NewContext(req, rec)))

	assert.Equal(t, http.StatusOK, rec.Code)

	var policies domain.SellerPolicies
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &policies))
	require.Len(t, policies.Payment, 1)
	assert.Equal(t, "pay-1", policies.Payment[0].ID)
	require.Len(t, policies.Locations, 1)
	assert.Equal(t, "warehouse-1", policies.Locations[0].ID)
}

func TestListingHandler_Policies_NotAuthenticated(t *testing.T) {
	t.Parallel()

	h, _ := newListingTestHandler(t, &fakeAccount{}, &fakeSell{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/listing/policies", http.NoBody)
	rec := httptest.NewRecorder()

	require.NoError(t, h.Policies(e.NewContext(req, rec)))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, KindNotAuthenticated, decodeError(t, rec).Kind)
}

func TestListingHandler_Policies_UpstreamFailure(t *testing.T) {
	t.Parallel()

	// One failed list fails the whole response.
	account := &fakeAccount{
		paymentErr: &ebay.APIError{
			StatusCode: http.StatusForbidden,
			Message:    "insufficient scope",
		},
		fulfillment: []domain.Policy{{ID: "ship-1"}},
	}
	h, sessions := newListingTestHandler(t, account, &fakeSell{})

	e := echo.New()
	req := withSession(t, httptest.NewRequest(http.MethodGet, "/listing/policies", http.NoBody), sessions)
	rec := httptest.NewRecorder()

	require.NoError(t, h.Policies(e.NewContext(req, rec)))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	detail := decodeError(t, rec)
	assert.Equal(t, KindUpstreamStepFailed, detail.Kind)
	assert.Contains(t, detail.Message, "insufficient scope")
}

func TestListingHandler_Draft(t *testing.T) {
	t.Parallel()

	h, _ := newListingTestHandler(t, &fakeAccount{}, &fakeSell{})

	e := echo.New()
	req := jsonRequest(http.MethodPost, "/listing/draft", draftJSON())
	rec := httptest.NewRecorder()

	require.NoError(t, h.Draft(e.NewContext(req, rec)))

	assert.Equal(t, http.StatusOK, rec.Code)

	var preview DraftPreview
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &preview))
	assert.True(t, preview.Valid)
	assert.Equal(t, domain.ConditionUsedExcellent, preview.Condition)
	assert.InDelta(t, 249.99, preview.PriceGross, 0.001)
	assert.InDelta(t, 210.08, preview.PriceNet, 0.001)
	assert.InDelta(t, 0.19, preview.VATRate, 0.001)
	assert.Empty(t, preview.Warnings)

	// The preview carries the exact payloads a publish would send.
	assert.Equal(t, "ThinkPad T480", preview.Payloads.InventoryItem.Product.Title)
	assert.Equal(t, "USED_EXCELLENT", preview.Payloads.InventoryItem.Condition)
	assert.Equal(t, "TP-T480-01", preview.Payloads.Offer.SKU)
	assert.Equal(t, "EBAY_DE", preview.Payloads.Offer.MarketplaceID)
	assert.Equal(t, "249.99", preview.Payloads.Offer.PricingSummary.Price.Value)
	assert.Equal(t, "EUR", preview.Payloads.Offer.PricingSummary.Price.Currency)
}

func TestListingHandler_Draft_Warnings(t *testing.T) {
	t.Parallel()

	h, _ := newListingTestHandler(t, &fakeAccount{}, &fakeSell{})

	body := `{
		"sku": "S", "title": "T", "category_id": "177",
		"price_gross": 10, "quantity": 1, "condition": "LIKE_NEW",
		"policies": {
			"payment_policy_id": "p", "fulfillment_policy_id": "f",
			"return_policy_id": "r", "merchant_location_key": "m"
		}
	}`

	e := echo.New()
	req := jsonRequest(http.MethodPost, "/listing/draft", body)
	rec := httptest.NewRecorder()

	require.NoError(t, h.Draft(e.NewContext(req, rec)))

	assert.Equal(t, http.StatusOK, rec.Code)

	var preview DraftPreview
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &preview))
	assert.True(t, preview.Valid)
	assert.Equal(t, domain.ConditionUsedExcellent, preview.Condition)
	assert.Len(t, preview.Warnings, 3)

	// The condition fallback shows up in the previewed payload too.
	assert.Equal(t, "USED_EXCELLENT", preview.Payloads.InventoryItem.Condition)
}

func TestListingHandler_Draft_ValidationFailed(t *testing.T) {
	t.Parallel()

	h, _ := newListingTestHandler(t, &fakeAccount{}, &fakeSell{})

	e := echo.New()
	req := jsonRequest(http.MethodPost, "/listing/draft", `{"title": "only a title"}`)
	rec := httptest.NewRecorder()

	require.NoError(t, h.Draft(e.NewContext(req, rec)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	detail := decodeError(t, rec)
	assert.Equal(t, KindValidationFailed, detail.Kind)
	assert.Contains(t, detail.Errors, "sku is required")
	assert.Contains(t, detail.Errors, "price_gross must be positive")
}

func TestListingHandler_Draft_MalformedBody(t *testing.T) {
	t.Parallel()

	h, _ := newListingTestHandler(t, &fakeAccount{}, &fakeSell{})

	e := echo.New()
	req := jsonRequest(http.MethodPost, "/listing/draft", "{not json")
	rec := httptest.NewRecorder()

	require.NoError(t, h.Draft(e.NewContext(req, rec)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, KindValidationFailed, decodeError(t, rec).Kind)
}

func TestListingHandler_Publish_Success(t *testing.T) {
	t.Parallel()

	sell := &fakeSell{offerID: "offer-42", listingID: "110551234567"}
	h, sessions := newListingTestHandler(t, &fakeAccount{}, sell)

	e := echo.New()
	req := withSession(t, jsonRequest(http.MethodPost, "/listing/publish", draftJSON()), sessions)
	rec := httptest.NewRecorder()

	require.NoError(t, h.Publish(e.NewContext(req, rec)))

	assert.Equal(t, http.StatusOK, rec.Code)

	var result domain.PublishResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "offer-42", result.OfferID)
	assert.Equal(t, "110551234567", result.ListingID)
	assert.True(t, result.Succeeded())
}

func TestListingHandler_Publish_ValidationBeforeAuth(t *testing.T) {
	t.Parallel()

	// An invalid draft is rejected even without a session; validation runs
	// before any token work.
	h, _ := newListingTestHandler(t, &fakeAccount{}, &fakeSell{})

	e := echo.New()
	req := jsonRequest(http.MethodPost, "/listing/publish", `{}`)
	rec := httptest.NewRecorder()

	require.NoError(t, h.Publish(e.NewContext(req, rec)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListingHandler_Publish_NotAuthenticated(t *testing.T) {
	t.Parallel()

	h, _ := newListingTestHandler(t, &fakeAccount{}, &fakeSell{})

	e := echo.New()
	req := jsonRequest(http.MethodPost, "/listing/publish", draftJSON())
	rec := httptest.NewRecorder()

	require.NoError(t, h.Publish(e.NewContext(req, rec)))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, KindNotAuthenticated, decodeError(t, rec).Kind)
}

func TestListingHandler_Publish_UpstreamStatusPassthrough(t *testing.T) {
	t.Parallel()

	sell := &fakeSell{
		offerID: "offer-42",
		publishErr: &ebay.APIError{
			StatusCode: http.StatusConflict,
			ErrorID:    "25007",
			Message:    "listing violates policy",
		},
	}
	h, sessions := newListingTestHandler(t, &fakeAccount{}, sell)

	e := echo.New()
	req := withSession(t, jsonRequest(http.MethodPost, "/listing/publish", draftJSON()), sessions)
	rec := httptest.NewRecorder()

	require.NoError(t, h.Publish(e.NewContext(req, rec)))

	assert.Equal(t, http.StatusConflict, rec.Code)
	detail := decodeError(t, rec)
	assert.Equal(t, KindUpstreamStepFailed, detail.Kind)
	assert.Equal(t, "publish", detail.Step)
	assert.Equal(t, "offer-42", detail.OfferID)
}

func TestListingHandler_Publish_TransportFailureIs500(t *testing.T) {
	t.Parallel()

	sell := &fakeSell{upsertErr: io.ErrUnexpectedEOF}
	h, sessions := newListingTestHandler(t, &fakeAccount{}, sell)

	e := echo.New()
	req := withSession(t, jsonRequest(http.MethodPost, "/listing/publish", draftJSON()), sessions)
	rec := httptest.NewRecorder()

	require.NoError(t, h.Publish(e.NewContext(req, rec)))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	detail := decodeError(t, rec)
	assert.Equal(t, "inventory", detail.Step)
	assert.Empty(t, detail.OfferID)
}
