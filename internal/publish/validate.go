package publish

import (
	domain "github.com/donaldgifford/listing-manager/pkg/types"
)

// Validate checks the required fields of a draft before any upstream call.
// All violations are collected and reported together, not fail-fast. A
// non-empty result short-circuits the publish workflow with no upstream
// calls at all.
func Validate(draft *domain.ListingDraft) []string {
	var errs []string

	if draft.SKU == "" {
		errs = append(errs, "sku is required")
	}
	if draft.Title == "" {
		errs = append(errs, "title is required")
	}
	if draft.CategoryID == "" {
		errs = append(errs, "category_id is required")
	}
	if draft.PriceGross <= 0 {
		errs = append(errs, "price_gross must be positive")
	}
	if draft.Quantity <= 0 {
		errs = append(errs, "quantity must be positive")
	}
	if draft.Policies.PaymentPolicyID == "" {
		errs = append(errs, "policies.payment_policy_id is required")
	}
	if draft.Policies.FulfillmentPolicyID == "" {
		errs = append(errs, "policies.fulfillment_policy_id is required")
	}
	if draft.Policies.ReturnPolicyID == "" {
		errs = append(errs, "policies.return_policy_id is required")
	}
	if draft.Policies.MerchantLocationKey == "" {
		errs = append(errs, "policies.merchant_location_key is required")
	}

	return errs
}

// Warnings reports non-blocking draft issues.
func Warnings(draft *domain.ListingDraft) []string {
	var warns []string

	if len(draft.Images) == 0 {
		warns = append(warns, "no images attached; listings without images convert poorly")
	}
	if draft.DescriptionHTML == "" {
		warns = append(warns, "description is empty; the title will be used as description")
	}
	if domain.NormalizeCondition(draft.Condition) != domain.Condition(draft.Condition) {
		warns = append(warns, "condition not recognized; defaulting to USED_EXCELLENT")
	}

	return warns
}
