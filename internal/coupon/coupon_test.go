package coupon

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-klin/internal/common"
	"github.com/noah-isme/backend-klin/internal/pricing"
)

func TestCheckCode(t *testing.T) {
	require.NoError(t, CheckCode("SAVE10"))
	require.NoError(t, CheckCode("spring_clean-2026"))

	for _, bad := range []string{"", "has space", "emoji✨", "a!b"} {
		err := CheckCode(bad)
		require.ErrorIs(t, err, common.ErrValidation, "code %q", bad)
	}
}

func TestDiscountPercent(t *testing.T) {
	c := &Applied{Code: "SAVE10", PercentBps: 1000}
	// 10% of 200
	require.Equal(t, pricing.Money(20), Discount(c, 200))
	// 10% of 125 is 12.5, half up
	require.Equal(t, pricing.Money(13), Discount(c, 125))
}

func TestDiscountFixedAmount(t *testing.T) {
	c := &Applied{Code: "TAKE15", AmountOff: 15}
	require.Equal(t, pricing.Money(15), Discount(c, 200))
	// capped at subtotal
	require.Equal(t, pricing.Money(10), Discount(c, 10))
}

func TestDiscountRecomputesPerSubtotal(t *testing.T) {
	c := &Applied{Code: "SAVE10", PercentBps: 1000}
	require.Equal(t, pricing.Money(10), Discount(c, 100))
	require.Equal(t, pricing.Money(30), Discount(c, 300))
}

func TestDiscountEdgeCases(t *testing.T) {
	require.Equal(t, pricing.Money(0), Discount(nil, 100))
	require.Equal(t, pricing.Money(0), Discount(&Applied{Code: "X", PercentBps: 1000}, 0))
	require.Equal(t, pricing.Money(0), Discount(&Applied{Code: "X", AmountOff: -5}, 100))
}
