package persistence

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/stocktrading/internal/stocks/domain"
)

func TestOrderModelMapping(t *testing.T) {
	t.Parallel()

	order := domain.NewBuyOrder("AAPL", 10, 7, domain.NormalizedPrice{
		Price:            decimal.RequireFromString("101.50"),
		PercentageChange: decimal.RequireFromString("1.5"),
	})

	model := toModel(order)
	require.Equal(t, "AAPL", model.Symbol)
	require.Equal(t, "101.5", model.Price)
	require.Equal(t, "buy", model.Action)

	back := toDomain(model)
	require.Equal(t, order.Symbol, back.Symbol)
	require.Equal(t, order.Shares, back.Shares)
	require.Equal(t, order.UserID, back.UserID)
	require.Equal(t, order.Action, back.Action)
	require.True(t, back.Price.Equal(order.Price), "price = %s", back.Price)
	require.True(t, back.PercentageChange.Equal(order.PercentageChange))
}

func TestToDomain_UnparseableDecimalFallsBackToZero(t *testing.T) {
	t.Parallel()

	back := toDomain(&StockOrderModel{Symbol: "AAPL", Price: "bogus", PercentageChange: ""})
	require.True(t, back.Price.IsZero())
	require.True(t, back.PercentageChange.IsZero())
}
