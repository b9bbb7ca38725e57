package pricing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/donaldgifford/listing-manager/pkg/pricing"
	domain "github.com/donaldgifford/listing-manager/pkg/types"
)

func offers(totals ...float64) []domain.CompetitorOffer {
	out := make([]domain.CompetitorOffer, len(totals))
	for i, t := range totals {
		out[i] = domain.CompetitorOffer{Price: t}
	}
	return out
}

func TestAggregate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []domain.CompetitorOffer
		want pricing.Stats
	}{
		{
			name: "empty input returns zero stats",
			in:   nil,
			want: pricing.Stats{},
		},
		{
			name: "single offer",
			in:   offers(42.50),
			want: pricing.Stats{Count: 1, Min: 42.50, Max: 42.50, Mean: 42.50, Median: 42.50},
		},
		{
			name: "even count takes upper-middle median",
			in:   offers(10, 12, 15, 20),
			want: pricing.Stats{Count: 4, Min: 10, Max: 20, Mean: 14.25, Median: 15},
		},
		{
			name: "odd count takes true middle",
			in:   offers(20, 10, 15),
			want: pricing.Stats{Count: 3, Min: 10, Max: 20, Mean: 15, Median: 15},
		},
		{
			name: "unsorted input is sorted before picking median",
			in:   offers(20, 10, 15, 12),
			want: pricing.Stats{Count: 4, Min: 10, Max: 20, Mean: 14.25, Median: 15},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, pricing.Aggregate(tt.in))
		})
	}
}

func TestAggregate_ShippingIncluded(t *testing.T) {
	t.Parallel()

	in := []domain.CompetitorOffer{
		{Price: 9, Shipping: 1},
		{Price: 10, Shipping: 2},
		{Price: 13, Shipping: 2},
		{Price: 18, Shipping: 2},
	}

	got := pricing.Aggregate(in)
	assert.Equal(t, 10.0, got.Min)
	assert.Equal(t, 20.0, got.Max)
	assert.Equal(t, 14.25, got.Mean)
	assert.Equal(t, 15.0, got.Median)
}

func TestSuggest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		s    pricing.Stats
		cfg  pricing.Config
		want float64
	}{
		{
			name: "min base with undercut",
			s:    pricing.Stats{Min: 10, Median: 15},
			cfg:  pricing.Config{Base: pricing.BaseMin, UndercutBy: 0.5, MinGrossPrice: 5},
			want: 9.5,
		},
		{
			name: "floored at minimum gross price",
			s:    pricing.Stats{Min: 4, Median: 15},
			cfg:  pricing.Config{Base: pricing.BaseMin, UndercutBy: 0.5, MinGrossPrice: 5},
			want: 5,
		},
		{
			name: "median base",
			s:    pricing.Stats{Min: 10, Median: 15},
			cfg:  pricing.Config{Base: pricing.BaseMedian, UndercutBy: 1, MinGrossPrice: 5},
			want: 14,
		},
		{
			name: "unknown base defaults to median",
			s:    pricing.Stats{Min: 10, Median: 15},
			cfg:  pricing.Config{UndercutBy: 1, MinGrossPrice: 5},
			want: 14,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, pricing.Suggest(tt.s, tt.cfg))
		})
	}
}

func TestNetPrice(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		gross   float64
		vatRate float64
		want    float64
	}{
		{name: "19 percent VAT", gross: 119.00, vatRate: 0.19, want: 100.00},
		{name: "rounds to 2 decimals", gross: 10.00, vatRate: 0.19, want: 8.40},
		{name: "zero VAT passes through", gross: 25.50, vatRate: 0, want: 25.50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, pricing.NetPrice(tt.gross, tt.vatRate), 1e-9)
		})
	}
}
