// Package pricing computes competitor price statistics and suggested prices
// for listing drafts. All functions are pure; callers own the inputs.
package pricing

import (
	"math"
	"sort"

	domain "github.com/donaldgifford/listing-manager/pkg/types"
)

// Base selects which statistic a suggested price is derived from.
type Base string

// Base constants.
const (
	BaseMin    Base = "min"
	BaseMedian Base = "median"
)

// Stats summarizes the comparable totals (price + shipping) of a set of
// competitor offers.
type Stats struct {
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
}

// Config controls suggested price derivation.
type Config struct {
	Base          Base    `json:"base"`
	UndercutBy    float64 `json:"undercut_by"`
	MinGrossPrice float64 `json:"min_gross_price"`
}

// Aggregate computes Stats over the offers' totals. For an even count the
// median is the upper-middle element of the ascending-sorted totals, not an
// averaged midpoint; downstream consumers rely on this exact tie-break.
// Returns a zero-valued Stats for an empty input.
func Aggregate(offers []domain.CompetitorOffer) Stats {
	if len(offers) == 0 {
		return Stats{}
	}

	totals := make([]float64, len(offers))
	for i, o := range offers {
		totals[i] = o.Total()
	}
	sort.Float64s(totals)

	sum := 0.0
	for _, t := range totals {
		sum += t
	}

	return Stats{
		Count:  len(totals),
		Min:    totals[0],
		Max:    totals[len(totals)-1],
		Mean:   Round2(sum / float64(len(totals))),
		Median: totals[len(totals)/2],
	}
}

// Suggest derives a suggested gross price: the configured base statistic
// minus the undercut amount, floored at the minimum gross price.
func Suggest(s Stats, cfg Config) float64 {
	base := s.Median
	if cfg.Base == BaseMin {
		base = s.Min
	}

	suggested := base - cfg.UndercutBy
	if suggested < cfg.MinGrossPrice {
		suggested = cfg.MinGrossPrice
	}
	return Round2(suggested)
}

// NetPrice derives the net price from a gross price and VAT rate,
// rounded to 2 decimal places. The breakdown is presentation-only; gross
// prices go upstream as-is.
func NetPrice(gross, vatRate float64) float64 {
	return Round2(gross / (1 + vatRate))
}

// Round2 rounds to 2 decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
