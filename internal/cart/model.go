package cart

import (
	"github.com/noah-isme/backend-klin/internal/coupon"
	"github.com/noah-isme/backend-klin/internal/identity"
	"github.com/noah-isme/backend-klin/internal/pricing"
)

// Config is the structured metadata of a line item. Configurations are
// compared structurally, never by reference; Notes never participate in
// purchase identity.
type Config struct {
	PriceID          string                 `json:"priceId,omitempty"`
	ServiceType      string                 `json:"serviceType,omitempty"`
	PaymentFrequency string                 `json:"paymentFrequency,omitempty"`
	Address          string                 `json:"address,omitempty"`
	PostalCode       string                 `json:"postalCode,omitempty"`
	Notes            string                 `json:"notes,omitempty"`
	Service          *pricing.ServiceConfig `json:"service,omitempty"`
	Meta             map[string]any         `json:"meta,omitempty"`
}

// LineItem is a purchasable unit in the cart. Quantity is always >= 1; the
// item is removed rather than kept at zero.
type LineItem struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	UnitPrice  pricing.Money      `json:"unitPrice"`
	Quantity   int                `json:"quantity"`
	Recurrence pricing.Recurrence `json:"recurrence"`
	Config     Config             `json:"configuration"`
}

// identityView projects the item onto the fields purchase identity cares
// about. Notes are deliberately left out.
func (it LineItem) identityView() identity.Item {
	var cfg map[string]any
	if it.Config.Service != nil || it.Config.Meta != nil {
		cfg = make(map[string]any, 2)
		if it.Config.Service != nil {
			cfg["service"] = it.Config.Service
		}
		if it.Config.Meta != nil {
			cfg["meta"] = it.Config.Meta
		}
	}
	return identity.Item{
		ID:               it.ID,
		PriceID:          it.Config.PriceID,
		ServiceType:      it.Config.ServiceType,
		Recurrence:       string(it.Recurrence),
		PaymentFrequency: it.Config.PaymentFrequency,
		Address:          it.Config.Address,
		PostalCode:       it.Config.PostalCode,
		Config:           cfg,
	}
}

// Cart is the immutable view returned by every aggregator operation.
type Cart struct {
	Items      []LineItem      `json:"items"`
	Coupon     *coupon.Applied `json:"appliedCoupon,omitempty"`
	TotalItems int             `json:"totalItems"`
}

// snapshot is the persisted shape: the data-model fields only, plus a schema
// version. Derived fields are never written so the schema stays
// forward-compatible.
type snapshot struct {
	Version int             `json:"version"`
	Items   []LineItem      `json:"items"`
	Coupon  *coupon.Applied `json:"appliedCoupon,omitempty"`
}

const snapshotVersion = 1
