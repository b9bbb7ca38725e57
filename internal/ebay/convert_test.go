package ebay_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/listing-manager/internal/ebay"
)

func TestToCompetitorOffers(t *testing.T) {
	t.Parallel()

	items := []ebay.ItemSummary{
		{
			Title: "with shipping",
			Price: ebay.ItemPrice{Value: "100.00", Currency: "EUR"},
			ShippingOptions: []ebay.ShippingOption{
				{ShippingCost: &ebay.ItemPrice{Value: "4.99", Currency: "EUR"}},
			},
		},
		{
			Title: "free shipping",
			Price: ebay.ItemPrice{Value: "89.90", Currency: "EUR"},
		},
		{
			Title: "unparseable price",
			Price: ebay.ItemPrice{Value: "N/A", Currency: "EUR"},
		},
	}

	offers := ebay.ToCompetitorOffers(items)

	// The bad-price item is skipped, not counted as zero.
	require.Len(t, offers, 2)

	assert.Equal(t, "with shipping", offers[0].Title)
	assert.InDelta(t, 100.00, offers[0].Price, 0.001)
	assert.InDelta(t, 4.99, offers[0].Shipping, 0.001)
	assert.InDelta(t, 104.99, offers[0].Total(), 0.001)

	assert.InDelta(t, 89.90, offers[1].Price, 0.001)
	assert.Zero(t, offers[1].Shipping)
}

func TestToCompetitorOffers_Empty(t *testing.T) {
	t.Parallel()

	offers := ebay.ToCompetitorOffers(nil)
	assert.Empty(t, offers)
}

func TestToCompetitorOffers_ShippingVariants(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		options []ebay.ShippingOption
		want    float64
	}{
		{name: "no options", options: nil, want: 0},
		{
			name:    "nil cost entry",
			options: []ebay.ShippingOption{{}},
			want:    0,
		},
		{
			name: "nil cost then priced option",
			options: []ebay.ShippingOption{
				{},
				{ShippingCost: &ebay.ItemPrice{Value: "3.50"}},
			},
			want: 3.50,
		},
		{
			name: "first option wins",
			options: []ebay.ShippingOption{
				{ShippingCost: &ebay.ItemPrice{Value: "2.00"}},
				{ShippingCost: &ebay.ItemPrice{Value: "9.00"}},
			},
			want: 2.00,
		},
		{
			name: "unparseable cost treated as free",
			options: []ebay.ShippingOption{
				{ShippingCost: &ebay.ItemPrice{Value: "free"}},
			},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			items := []ebay.ItemSummary{
				{
					Price:           ebay.ItemPrice{Value: "10.00"},
					ShippingOptions: tt.options,
				},
			}

			offers := ebay.ToCompetitorOffers(items)
			require.Len(t, offers, 1)
			assert.InDelta(t, tt.want, offers[0].Shipping, 0.001)
		})
	}
}
