package pricing

// Item describes a line item used for summary calculation.
type Item struct {
	Qty       int
	UnitPrice Money
}

// Summary aggregates computed cart totals.
type Summary struct {
	Subtotal Money `json:"subtotal"`
	Discount Money `json:"discount"`
	Tax      Money `json:"tax"`
	Shipping Money `json:"shipping"`
	Total    Money `json:"total"`
}

// Compute derives cart totals from the current item list. Pure and
// synchronous: the caller supplies the coupon discount amount (computed from
// the active rule against this subtotal), a tax rate in basis points and a
// flat shipping amount. Recurrence discounts are already baked into unit
// prices by the quote stage and are never reapplied here.
func Compute(items []Item, discount Money, taxBps int, shipping Money) Summary {
	var subtotal Money
	for _, it := range items {
		if it.Qty <= 0 {
			continue
		}
		subtotal += Money(it.Qty) * it.UnitPrice
	}
	if discount > subtotal {
		discount = subtotal
	}
	if discount < 0 {
		discount = 0
	}
	taxable := subtotal - discount
	tax := roundBps(taxable, taxBps)
	total := taxable + tax + shipping
	if total < 0 {
		total = 0
	}
	return Summary{
		Subtotal: subtotal,
		Discount: discount,
		Tax:      tax,
		Shipping: shipping,
		Total:    total,
	}
}

// roundBps applies a basis-point rate with half-up rounding.
func roundBps(amount Money, bps int) Money {
	if amount <= 0 || bps <= 0 {
		return 0
	}
	return (amount*Money(bps) + 5000) / 10000
}
