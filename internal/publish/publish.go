// Package publish implements the three-step listing publish workflow:
// inventory upsert, offer creation, offer publish. The workflow is a
// best-effort saga; the marketplace has no compensating "undo" for a
// created inventory item, so nothing is rolled back on failure. Forward
// progress identifiers are always returned so the caller can resume.
package publish

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/donaldgifford/listing-manager/internal/ebay"
	"github.com/donaldgifford/listing-manager/internal/metrics"
	"github.com/donaldgifford/listing-manager/internal/store"
	domain "github.com/donaldgifford/listing-manager/pkg/types"
)

// Publisher sequences the three dependent Sell API calls of a publish.
type Publisher struct {
	sell        ebay.SellAPI
	journal     store.Store
	marketplace string
	environment domain.Environment
	log         *slog.Logger
}

// NewPublisher creates a Publisher. The journal is best-effort; pass a
// store.Noop when no database is configured.
func NewPublisher(
	sell ebay.SellAPI,
	journal store.Store,
	marketplace string,
	environment domain.Environment,
	log *slog.Logger,
) *Publisher {
	return &Publisher{
		sell:        sell,
		journal:     journal,
		marketplace: marketplace,
		environment: environment,
		log:         log,
	}
}

// BuildInventoryItem converts a draft to the inventory item payload.
// Unknown condition values fall back to USED_EXCELLENT.
func (p *Publisher) BuildInventoryItem(draft *domain.ListingDraft) ebay.InventoryItemPayload {
	description := draft.DescriptionHTML
	if description == "" {
		description = draft.Title
	}

	return ebay.InventoryItemPayload{
		Product: ebay.ProductPayload{
			Title:       draft.Title,
			Description: description,
			ImageURLs:   draft.Images,
		},
		Condition: string(domain.NormalizeCondition(draft.Condition)),
		Availability: ebay.AvailabilityPayload{
			ShipToLocationAvailability: ebay.QuantityPayload{
				Quantity: draft.Quantity,
			},
		},
	}
}

// BuildOffer converts a draft to the offer payload. The gross price goes
// upstream as-is; VAT breakdown is presentation-only and never sent.
func (p *Publisher) BuildOffer(draft *domain.ListingDraft) ebay.OfferPayload {
	currency := draft.Currency
	if currency == "" {
		currency = "EUR"
	}

	description := draft.DescriptionHTML
	if description == "" {
		description = draft.Title
	}

	return ebay.OfferPayload{
		SKU:                draft.SKU,
		MarketplaceID:      p.marketplace,
		Format:             "FIXED_PRICE",
		AvailableQuantity:  draft.Quantity,
		CategoryID:         draft.CategoryID,
		ListingDescription: description,
		ListingPolicies: ebay.ListingPolicyPayload{
			PaymentPolicyID:     draft.Policies.PaymentPolicyID,
			FulfillmentPolicyID: draft.Policies.FulfillmentPolicyID,
			ReturnPolicyID:      draft.Policies.ReturnPolicyID,
		},
		MerchantLocationKey: draft.Policies.MerchantLocationKey,
		PricingSummary: ebay.PricingSummaryPayload{
			Price: ebay.ItemPrice{
				Value:    strconv.FormatFloat(draft.PriceGross, 'f', 2, 64),
				Currency: currency,
			},
		},
	}
}

// Publish runs the saga. Steps execute in strict order; step N+1 never
// starts before step N's response is observed, because each payload
// depends on identifiers from the previous step. No step is retried; the
// caller decides whether to re-invoke. The returned result always carries
// any offer ID minted before a later step failed.
//
// The caller must validate the draft first; Publish assumes required
// fields are present.
func (p *Publisher) Publish(
	ctx context.Context,
	token string,
	draft *domain.ListingDraft,
) *domain.PublishResult {
	result := &domain.PublishResult{SKU: draft.SKU}

	if err := p.sell.UpsertInventoryItem(ctx, token, draft.SKU, p.BuildInventoryItem(draft)); err != nil {
		p.fail(result, domain.StepInventory, err)
		p.record(ctx, result)
		return result
	}
	metrics.PublishStepsTotal.WithLabelValues(string(domain.StepInventory), "ok").Inc()

	offerID, err := p.sell.CreateOffer(ctx, token, p.BuildOffer(draft))
	if err != nil {
		p.fail(result, domain.StepOffer, err)
		p.record(ctx, result)
		return result
	}
	result.OfferID = offerID
	metrics.PublishStepsTotal.WithLabelValues(string(domain.StepOffer), "ok").Inc()

	listingID, err := p.sell.PublishOffer(ctx, token, offerID)
	if err != nil {
		// The offer exists upstream; keep its ID in the result so the
		// caller can resume instead of recreating it.
		p.fail(result, domain.StepPublish, err)
		p.record(ctx, result)
		return result
	}
	result.ListingID = listingID
	metrics.PublishStepsTotal.WithLabelValues(string(domain.StepPublish), "ok").Inc()

	p.log.Info("listing published",
		"sku", draft.SKU,
		"offer_id", offerID,
		"listing_id", listingID,
	)
	p.record(ctx, result)
	return result
}

// fail annotates the result with the failed step and upstream diagnostics.
// Transport and parse failures carry no upstream status; handlers map
// those to 500 instead of passing a status through.
func (p *Publisher) fail(result *domain.PublishResult, step domain.PublishStep, err error) {
	result.FailedStep = step
	result.Message = err.Error()

	var apiErr *ebay.APIError
	if errors.As(err, &apiErr) {
		result.UpstreamStatus = apiErr.StatusCode
		result.UpstreamErrorID = apiErr.ErrorID
		result.Message = apiErr.Message
	}

	metrics.PublishStepsTotal.WithLabelValues(string(step), "error").Inc()

	p.log.Warn("publish step failed",
		"sku", result.SKU,
		"step", string(step),
		"offer_id", result.OfferID,
		"error", err,
	)
}

// record journals the attempt. Best-effort: journal failures are logged
// and never affect the result.
func (p *Publisher) record(ctx context.Context, result *domain.PublishResult) {
	attempt := &domain.PublishAttempt{
		SKU:             result.SKU,
		OfferID:         result.OfferID,
		ListingID:       result.ListingID,
		FailedStep:      string(result.FailedStep),
		UpstreamErrorID: result.UpstreamErrorID,
		Message:         result.Message,
		Environment:     string(p.environment),
	}

	if err := p.journal.RecordPublishAttempt(ctx, attempt); err != nil {
		p.log.Error("recording publish attempt failed", "sku", result.SKU, "error", err)
	}
}
