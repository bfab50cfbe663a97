// Package coupon implements the discount engine: coupon codes are validated
// against an external directory and kept as rules, never as frozen amounts.
package coupon

import (
	"context"
	"errors"
	"regexp"

	"github.com/noah-isme/backend-klin/internal/common"
	"github.com/noah-isme/backend-klin/internal/pricing"
)

// ErrUnavailable marks a directory timeout or transport failure. Callers treat
// it like an invalid coupon but it is logged distinctly for diagnosis.
var ErrUnavailable = errors.New("coupon directory unavailable")

// Validation is the coupon directory's verdict for one code.
type Validation struct {
	Valid      bool
	PercentBps int32
	AmountOff  pricing.Money
	Reason     string
}

// Applied is the active coupon rule attached to a cart. The discount is
// recomputed from the rule against whatever the subtotal is at summary time.
type Applied struct {
	Code       string        `json:"code"`
	PercentBps int32         `json:"percentBps,omitempty"`
	AmountOff  pricing.Money `json:"amountOff,omitempty"`
}

// Result reports the outcome of a coupon application to the caller.
type Result struct {
	Accepted bool   `json:"accepted"`
	Reason   string `json:"reason,omitempty"`
}

// Directory validates coupon codes. Implementations may be slow or
// unavailable; they must respect context cancellation.
type Directory interface {
	Validate(ctx context.Context, code string) (Validation, error)
}

var codePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// CheckCode rejects malformed coupon codes before any directory round trip.
func CheckCode(code string) error {
	if !codePattern.MatchString(code) {
		return common.Validation("malformed coupon code")
	}
	return nil
}

// Discount computes the rule's contribution against the current subtotal.
// Percent rules use basis points; fixed rules are capped at the subtotal.
func Discount(a *Applied, subtotal pricing.Money) pricing.Money {
	if a == nil || subtotal <= 0 {
		return 0
	}
	var d pricing.Money
	if a.PercentBps > 0 {
		d = (subtotal*pricing.Money(a.PercentBps) + 5000) / 10000
	} else {
		d = a.AmountOff
	}
	if d > subtotal {
		d = subtotal
	}
	if d < 0 {
		d = 0
	}
	return d
}
