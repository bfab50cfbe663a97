package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-klin/internal/common"
)

var (
	tierMultipliers = map[Tier]decimal.Decimal{
		TierStandard: decimal.NewFromFloat(1.0),
		TierPremium:  decimal.NewFromFloat(1.3),
		TierElite:    decimal.NewFromFloat(1.6),
	}
	frequencyDiscounts = map[Recurrence]decimal.Decimal{
		Weekly:   decimal.NewFromFloat(0.15),
		Biweekly: decimal.NewFromFloat(0.10),
		Monthly:  decimal.NewFromFloat(0.05),
		OneTime:  decimal.Zero,
		Yearly:   decimal.Zero,
	}
)

func cleanlinessMultiplier(level int) decimal.Decimal {
	switch {
	case level >= 4:
		return decimal.NewFromFloat(1.4)
	case level >= 2:
		return decimal.NewFromFloat(1.2)
	default:
		return decimal.NewFromFloat(1.0)
	}
}

// Quote computes a deterministic price and duration estimate for one service
// configuration. Pure: same input always yields the same output.
//
// first = roundHalfUp(base × tierMult × cleanlinessMult + roomCount × perRoom
// + Σ addOn − Σ reduction). All intermediate math stays in decimals; rounding
// to the currency minor unit happens once, on the final amount. The recurring
// price applies the frequency discount to the rounded first price.
func (c *Catalog) Quote(cfg ServiceConfig) (QuoteResult, error) {
	if c == nil {
		return QuoteResult{}, fmt.Errorf("pricing catalog not configured")
	}
	if err := validateConfig(cfg); err != nil {
		return QuoteResult{}, err
	}

	rate, err := c.room(cfg.RoomType)
	if err != nil {
		return QuoteResult{}, err
	}
	tierMult, ok := tierMultipliers[cfg.Tier]
	if !ok {
		return QuoteResult{}, &UnknownEntryError{Kind: "tier", ID: string(cfg.Tier)}
	}

	price := decimal.NewFromInt(rate.Base).
		Mul(tierMult).
		Mul(cleanlinessMultiplier(cfg.CleanlinessLevel)).
		Add(decimal.NewFromInt(int64(cfg.RoomCount) * rate.PerRoom))

	for _, id := range cfg.AddOns {
		delta, err := c.addOn(id)
		if err != nil {
			return QuoteResult{}, err
		}
		price = price.Add(decimal.NewFromInt(delta))
	}
	for _, id := range cfg.Reductions {
		delta, err := c.reduction(id)
		if err != nil {
			return QuoteResult{}, err
		}
		price = price.Sub(decimal.NewFromInt(delta))
	}

	first := roundHalfUp(price)
	if first < 0 {
		first = 0
	}
	recurring := roundHalfUp(decimal.NewFromInt(first).Mul(decimal.NewFromInt(1).Sub(frequencyDiscounts[cfg.Recurrence])))

	return QuoteResult{
		FirstServicePrice:     first,
		RecurringServicePrice: recurring,
		DurationMinutes:       cfg.RoomCount * rate.PerRoomMinutes,
	}, nil
}

// UnitPrice returns the per-visit price a cart line item carries: the first
// service price for one-off bookings, the frequency-discounted recurring price
// otherwise. The recurrence discount is baked in here exactly once.
func (q QuoteResult) UnitPrice(rec Recurrence) Money {
	if rec == OneTime {
		return q.FirstServicePrice
	}
	return q.RecurringServicePrice
}

func validateConfig(cfg ServiceConfig) error {
	if cfg.RoomCount < 0 {
		return common.Validation("roomCount must not be negative")
	}
	if !cfg.Recurrence.Valid() {
		return common.Validation(fmt.Sprintf("unknown recurrence %q", cfg.Recurrence))
	}
	if !cfg.Tier.Valid() {
		// reported through the catalog lookup error path so unknown tiers
		// surface the same way as unknown add-ons
		return &UnknownEntryError{Kind: "tier", ID: string(cfg.Tier)}
	}
	seen := make(map[string]struct{}, len(cfg.AddOns))
	for _, id := range cfg.AddOns {
		seen[id] = struct{}{}
	}
	for _, id := range cfg.Reductions {
		if _, dup := seen[id]; dup {
			return common.Validation(fmt.Sprintf("task %q cannot be both added and reduced", id))
		}
	}
	return nil
}

// roundHalfUp rounds to integer minor units, halves away from zero.
func roundHalfUp(d decimal.Decimal) Money {
	return d.Round(0).IntPart()
}
