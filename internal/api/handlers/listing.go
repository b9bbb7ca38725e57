package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/donaldgifford/listing-manager/internal/ebay"
	"github.com/donaldgifford/listing-manager/internal/metrics"
	"github.com/donaldgifford/listing-manager/internal/publish"
	"github.com/donaldgifford/listing-manager/pkg/pricing"
	domain "github.com/donaldgifford/listing-manager/pkg/types"
)

// ListingHandler implements the seller-facing listing endpoints: policy
// discovery, draft validation with a pricing preview, and the three-step
// publish.
type ListingHandler struct {
	sessions  *Sessions
	account   ebay.AccountAPI
	publisher *publish.Publisher
	pricing   pricing.Config
	vatRate   float64
	log       *slog.Logger
}

// NewListingHandler creates a new ListingHandler.
func NewListingHandler(
	sessions *Sessions,
	account ebay.AccountAPI,
	publisher *publish.Publisher,
	pricingCfg pricing.Config,
	vatRate float64,
	log *slog.Logger,
) *ListingHandler {
	return &ListingHandler{
		sessions:  sessions,
		account:   account,
		publisher: publisher,
		pricing:   pricingCfg,
		vatRate:   vatRate,
		log:       log,
	}
}

// Policies returns the seller's business policies and merchant locations.
// The four upstream lists are independent and fetched concurrently; one
// failure fails the whole response, a partial policy picker is worse than
// an error.
func (h *ListingHandler) Policies(c echo.Context) error {
	token, err := h.sessions.AccessToken(c)
	if err != nil {
		return writeAuthError(c, err)
	}

	var policies domain.SellerPolicies

	g, ctx := errgroup.WithContext(c.Request().Context())
	g.Go(func() error {
		var err error
		policies.Payment, err = h.account.PaymentPolicies(ctx, token)
		return err
	})
	g.Go(func() error {
		var err error
		policies.Fulfillment, err = h.account.FulfillmentPolicies(ctx, token)
		return err
	})
	g.Go(func() error {
		var err error
		policies.Return, err = h.account.ReturnPolicies(ctx, token)
		return err
	})
	g.Go(func() error {
		var err error
		policies.Locations, err = h.account.MerchantLocations(ctx, token)
		return err
	})

	if err := g.Wait(); err != nil {
		h.log.Error("fetching seller policies failed", "error", err)
		return h.writeUpstreamError(c, err)
	}

	return c.JSON(http.StatusOK, policies)
}

// DraftPayloads previews the exact upstream request bodies a publish of
// the draft would send.
type DraftPayloads struct {
	InventoryItem ebay.InventoryItemPayload `json:"inventory_item"`
	Offer         ebay.OfferPayload         `json:"offer"`
}

// DraftPreview is the response body for a valid draft.
type DraftPreview struct {
	Valid      bool                `json:"valid"`
	Draft      domain.ListingDraft `json:"draft"`
	Condition  domain.Condition    `json:"condition"`
	PriceGross float64             `json:"price_gross"`
	PriceNet   float64             `json:"price_net"`
	VATRate    float64             `json:"vat_rate"`
	Payloads   DraftPayloads       `json:"payloads"`
	Warnings   []string            `json:"warnings,omitempty"`
}

// Draft validates a draft without publishing it and returns the normalized
// view: the effective condition, the net/gross price breakdown, the
// upstream payloads a publish would send, and any non-blocking warnings.
// The breakdown is presentation-only; the gross price is what goes
// upstream on publish.
func (h *ListingHandler) Draft(c echo.Context) error {
	var draft domain.ListingDraft
	if err := c.Bind(&draft); err != nil {
		return validationError(c, []string{"request body is not a valid draft"})
	}

	if errs := publish.Validate(&draft); len(errs) > 0 {
		return validationError(c, errs)
	}

	return c.JSON(http.StatusOK, DraftPreview{
		Valid:      true,
		Draft:      draft,
		Condition:  domain.NormalizeCondition(draft.Condition),
		PriceGross: pricing.Round2(draft.PriceGross),
		PriceNet:   pricing.NetPrice(draft.PriceGross, h.vatRate),
		VATRate:    h.vatRate,
		Payloads: DraftPayloads{
			InventoryItem: h.publisher.BuildInventoryItem(&draft),
			Offer:         h.publisher.BuildOffer(&draft),
		},
		Warnings: publish.Warnings(&draft),
	})
}

// Publish runs the three-step publish workflow. Validation failures are
// rejected before any upstream call; upstream failures pass the upstream
// status through and tag the failed step plus any offer ID already minted.
func (h *ListingHandler) Publish(c echo.Context) error {
	var draft domain.ListingDraft
	if err := c.Bind(&draft); err != nil {
		return validationError(c, []string{"request body is not a valid draft"})
	}

	if errs := publish.Validate(&draft); len(errs) > 0 {
		return validationError(c, errs)
	}

	token, err := h.sessions.AccessToken(c)
	if err != nil {
		return writeAuthError(c, err)
	}

	start := time.Now()
	result := h.publisher.Publish(c.Request().Context(), token, &draft)
	metrics.PublishDuration.Observe(time.Since(start).Seconds())

	if result.Succeeded() {
		return c.JSON(http.StatusOK, result)
	}

	status := http.StatusInternalServerError
	if result.UpstreamStatus > 0 {
		status = result.UpstreamStatus
	}

	return errorJSON(c, status, ErrorDetail{
		Kind:    KindUpstreamStepFailed,
		Message: result.Message,
		Step:    string(result.FailedStep),
		OfferID: result.OfferID,
	})
}

// writeUpstreamError maps a Sell API error to the envelope, passing the
// upstream status through when one exists.
func (h *ListingHandler) writeUpstreamError(c echo.Context, err error) error {
	status := http.StatusBadGateway
	message := err.Error()

	var apiErr *ebay.APIError
	if errors.As(err, &apiErr) {
		status = apiErr.StatusCode
		message = apiErr.Message
	}

	return errorJSON(c, status, ErrorDetail{
		Kind:    KindUpstreamStepFailed,
		Message: message,
	})
}

// RegisterListingRoutes registers the listing endpoints.
func RegisterListingRoutes(e *echo.Echo, h *ListingHandler) {
	e.GET("/listing/policies", h.Policies)
	e.POST("/listing/draft", h.Draft)
	e.POST("/listing/publish", h.Publish)
}
