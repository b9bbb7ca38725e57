package ebay

import (
	"strconv"

	domain "github.com/donaldgifford/listing-manager/pkg/types"
)

// ToCompetitorOffers converts Browse API item summaries to competitor
// offers for the pricing aggregator. Items whose price fails to parse are
// skipped rather than counted as zero; a zero total would corrupt the min
// statistic.
func ToCompetitorOffers(items []ItemSummary) []domain.CompetitorOffer {
	offers := make([]domain.CompetitorOffer, 0, len(items))

	for _, item := range items {
		price, err := strconv.ParseFloat(item.Price.Value, 64)
		if err != nil {
			continue
		}

		offers = append(offers, domain.CompetitorOffer{
			Title:    item.Title,
			Price:    price,
			Shipping: shippingCost(item),
		})
	}

	return offers
}

// shippingCost returns the first shipping option's cost, 0 when the item
// carries none (free or unlisted shipping).
func shippingCost(item ItemSummary) float64 {
	for _, opt := range item.ShippingOptions {
		if opt.ShippingCost == nil {
			continue
		}
		cost, err := strconv.ParseFloat(opt.ShippingCost.Value, 64)
		if err != nil {
			return 0
		}
		return cost
	}
	return 0
}
