package pricing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputeTotals(t *testing.T) {
	items := []Item{
		{Qty: 2, UnitPrice: 100},
		{Qty: 1, UnitPrice: 50},
	}
	s := Compute(items, 20, 1000, 10)
	require.Equal(t, Money(250), s.Subtotal)
	require.Equal(t, Money(20), s.Discount)
	// 10% of 230, half up
	require.Equal(t, Money(23), s.Tax)
	require.Equal(t, Money(10), s.Shipping)
	require.Equal(t, Money(263), s.Total)
}

func TestComputeDiscountCappedAtSubtotal(t *testing.T) {
	s := Compute([]Item{{Qty: 1, UnitPrice: 30}}, 100, 0, 0)
	require.Equal(t, Money(30), s.Subtotal)
	require.Equal(t, Money(30), s.Discount)
	require.Equal(t, Money(0), s.Total)
}

func TestComputeNegativeDiscountIgnored(t *testing.T) {
	s := Compute([]Item{{Qty: 1, UnitPrice: 30}}, -5, 0, 0)
	require.Equal(t, Money(0), s.Discount)
	require.Equal(t, Money(30), s.Total)
}

func TestComputeSkipsNonPositiveQuantities(t *testing.T) {
	s := Compute([]Item{{Qty: 0, UnitPrice: 999}, {Qty: -3, UnitPrice: 999}, {Qty: 1, UnitPrice: 40}}, 0, 0, 0)
	require.Equal(t, Money(40), s.Subtotal)
}

func TestComputeEmptyCart(t *testing.T) {
	s := Compute(nil, 0, 1100, 5)
	require.Equal(t, Money(0), s.Subtotal)
	require.Equal(t, Money(0), s.Tax)
	require.Equal(t, Money(5), s.Shipping)
	require.Equal(t, Money(5), s.Total)
}

func TestRoundBpsHalfUp(t *testing.T) {
	// 8.25% of 103 = 8.4975 → 8; of 115 = 9.4875 → 9; of 200 = 16.5 → 17
	require.Equal(t, Money(8), roundBps(103, 825))
	require.Equal(t, Money(9), roundBps(115, 825))
	require.Equal(t, Money(17), roundBps(200, 825))
	require.Equal(t, Money(0), roundBps(0, 825))
	require.Equal(t, Money(0), roundBps(100, 0))
}
