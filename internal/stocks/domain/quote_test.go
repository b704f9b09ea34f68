package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/stocktrading/internal/stocks/domain"
)

func quoteWith(bid, lastSale, percentChange string) *domain.StockQuote {
	return &domain.StockQuote{
		Symbol: "AAPL",
		PrimaryData: domain.PriceBlock{
			LastSalePrice:    lastSale,
			BidPrice:         bid,
			PercentageChange: percentChange,
		},
		StatusCode: 200,
	}
}

func TestNormalize_PrefersBidPrice(t *testing.T) {
	t.Parallel()

	got, err := domain.Normalize(quoteWith("$101.50", "$100.00", "+1.5%"))
	require.NoError(t, err)
	require.True(t, got.Price.Equal(decimal.RequireFromString("101.50")), "price = %s", got.Price)
	require.True(t, got.PercentageChange.Equal(decimal.RequireFromString("1.5")), "change = %s", got.PercentageChange)
}

func TestNormalize_FallsBackToLastSaleOnSentinel(t *testing.T) {
	t.Parallel()

	got, err := domain.Normalize(quoteWith("N/A", "$50.25", "-0.3%"))
	require.NoError(t, err)
	require.True(t, got.Price.Equal(decimal.RequireFromString("50.25")), "price = %s", got.Price)
	require.True(t, got.PercentageChange.Equal(decimal.RequireFromString("0.3")), "change = %s", got.PercentageChange)
}

func TestNormalize_FallsBackToLastSaleOnEmptyBid(t *testing.T) {
	t.Parallel()

	got, err := domain.Normalize(quoteWith("", "$12.00", "0%"))
	require.NoError(t, err)
	require.True(t, got.Price.Equal(decimal.RequireFromString("12.00")))
}

func TestNormalize_PercentChangeStripping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		raw    string
		expect string
	}{
		{"plus sign and percent", "+2.5%", "2.5"},
		{"minus sign and percent", "-0.3%", "0.3"},
		{"percent only", "2.5%", "2.5"},
		{"bare number", "1.25", "1.25"},
		{"sentinel falls back to zero", "N/A", "0"},
		{"empty falls back to zero", "", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := domain.Normalize(quoteWith("$10.00", "$10.00", tt.raw))
			require.NoError(t, err)
			require.True(t, got.PercentageChange.Equal(decimal.RequireFromString(tt.expect)),
				"change = %s, want %s", got.PercentageChange, tt.expect)
		})
	}
}

func TestNormalize_InvalidPrice(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		bid      string
		lastSale string
	}{
		{"both sentinel", "N/A", "N/A"},
		{"unparseable last sale", "N/A", "$--"},
		{"negative bid", "-$5.00", "$10.00"},
		{"garbage bid", "$abc", "$10.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := domain.Normalize(quoteWith(tt.bid, tt.lastSale, "+1.0%"))
			require.ErrorIs(t, err, domain.ErrInvalidPrice)
		})
	}
}
