package ebay

// ItemSummary represents a single item from the Browse API search response.
type ItemSummary struct {
	ItemID          string           `json:"itemId"`
	Title           string           `json:"title"`
	Price           ItemPrice        `json:"price"`
	ItemWebURL      string           `json:"itemWebUrl"`
	Image           *ItemImage       `json:"image,omitempty"`
	Seller          *ItemSeller      `json:"seller,omitempty"`
	Condition       string           `json:"condition"`
	ConditionID     string           `json:"conditionId"`
	BuyingOptions   []string         `json:"buyingOptions"`
	ShippingOptions []ShippingOption `json:"shippingOptions,omitempty"`
	ItemEndDate     string           `json:"itemEndDate,omitempty"`
	Categories      []ItemCategory   `json:"categories,omitempty"`
}

// ItemPrice holds eBay price information.
type ItemPrice struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

// ItemImage holds eBay image information.
type ItemImage struct {
	ImageURL string `json:"imageUrl"`
}

// ItemSeller holds eBay seller information.
type ItemSeller struct {
	Username           string `json:"username"`
	FeedbackScore      int    `json:"feedbackScore"`
	FeedbackPercentage string `json:"feedbackPercentage"`
}

// ShippingOption holds eBay shipping information.
type ShippingOption struct {
	ShippingCost *ItemPrice `json:"shippingCost,omitempty"`
}

// ItemCategory holds eBay category information.
type ItemCategory struct {
	CategoryID string `json:"categoryId"`
}

// --- Sell Inventory API payloads ---

// InventoryItemPayload is the PUT body for the inventory item upsert.
type InventoryItemPayload struct {
	Product      ProductPayload      `json:"product"`
	Condition    string              `json:"condition"`
	Availability AvailabilityPayload `json:"availability"`
}

// ProductPayload carries the product metadata of an inventory item.
type ProductPayload struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	ImageURLs   []string `json:"imageUrls,omitempty"`
}

// AvailabilityPayload carries the sellable quantity of an inventory item.
type AvailabilityPayload struct {
	ShipToLocationAvailability QuantityPayload `json:"shipToLocationAvailability"`
}

// QuantityPayload wraps a quantity value.
type QuantityPayload struct {
	Quantity int `json:"quantity"`
}

// OfferPayload is the POST body for offer creation. It links the SKU to a
// category, pricing, the three required business policies, and a merchant
// location.
type OfferPayload struct {
	SKU                 string                `json:"sku"`
	MarketplaceID       string                `json:"marketplaceId"`
	Format              string                `json:"format"`
	AvailableQuantity   int                   `json:"availableQuantity"`
	CategoryID          string                `json:"categoryId"`
	ListingDescription  string                `json:"listingDescription"`
	ListingPolicies     ListingPolicyPayload  `json:"listingPolicies"`
	MerchantLocationKey string                `json:"merchantLocationKey"`
	PricingSummary      PricingSummaryPayload `json:"pricingSummary"`
}

// ListingPolicyPayload carries the three required policy identifiers.
type ListingPolicyPayload struct {
	PaymentPolicyID     string `json:"paymentPolicyId"`
	FulfillmentPolicyID string `json:"fulfillmentPolicyId"`
	ReturnPolicyID      string `json:"returnPolicyId"`
}

// PricingSummaryPayload carries the offer price.
type PricingSummaryPayload struct {
	Price ItemPrice `json:"price"`
}
