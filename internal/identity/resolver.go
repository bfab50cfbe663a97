// Package identity decides whether two cart line items represent the same
// purchasable unit, so that adding an item merges instead of duplicating.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Kind tags the purchase identity variant of an item.
type Kind int

const (
	// KindCatalog items carry an externally assigned price identifier.
	KindCatalog Kind = iota
	// KindService items are custom service bookings identified by their
	// configuration.
	KindService
	// KindOpaque items carry neither a price identifier nor a service type;
	// identity falls back to structural configuration equality.
	KindOpaque
)

// Item is the identity-relevant view of a cart line item. Free-text customer
// notes must not be part of Config: they never participate in matching.
type Item struct {
	ID               string
	PriceID          string
	ServiceType      string
	Recurrence       string
	PaymentFrequency string
	Address          string
	PostalCode       string
	Config           map[string]any
}

// KindOf classifies the item into its purchase identity variant.
func KindOf(it Item) Kind {
	if strings.TrimSpace(it.PriceID) != "" {
		return KindCatalog
	}
	if strings.TrimSpace(it.ServiceType) != "" {
		return KindService
	}
	return KindOpaque
}

// SamePurchase reports whether a and b are the same purchasable unit.
// Quantity is never part of identity.
//
// Catalog items match iff their price identifiers are equal. Service items
// match iff service type, recurrence and payment frequency are equal and the
// locations match: exact address equality, or a shared non-empty postal code.
// Two items whose location fields are all empty never match; ambiguous
// locations are treated as distinct bookings.
func SamePurchase(a, b Item) bool {
	ka, kb := KindOf(a), KindOf(b)
	if ka != kb {
		return false
	}
	switch ka {
	case KindCatalog:
		return a.PriceID == b.PriceID
	case KindService:
		if a.ServiceType != b.ServiceType ||
			a.Recurrence != b.Recurrence ||
			a.PaymentFrequency != b.PaymentFrequency {
			return false
		}
		return locationMatch(a, b)
	default:
		return DeepEqual(a.Config, b.Config, WithSetKeys("addOns", "reductions"))
	}
}

func locationMatch(a, b Item) bool {
	addrA, addrB := strings.TrimSpace(a.Address), strings.TrimSpace(b.Address)
	postA, postB := strings.TrimSpace(a.PostalCode), strings.TrimSpace(b.PostalCode)
	if addrA == "" && addrB == "" && postA == "" && postB == "" {
		return false
	}
	if addrA != "" && addrA == addrB {
		return true
	}
	return postA != "" && postA == postB
}

// Signature derives a deterministic string from the identity-relevant fields
// such that equal signatures imply SamePurchase. Used as a fast pre-check
// before the full comparison.
//
// The location slot is tagged by the field it came from: a postal code and an
// address with the same text must not collide. When the postal code is empty
// the address is folded in, and when both location fields are empty the item
// ID is folded in instead, so that items with ambiguous locations never share
// a signature.
func Signature(it Item) string {
	if KindOf(it) == KindCatalog {
		return canon("catalog", it.PriceID)
	}
	var location string
	switch {
	case strings.TrimSpace(it.PostalCode) != "":
		location = "p:" + strings.TrimSpace(it.PostalCode)
	case strings.TrimSpace(it.Address) != "":
		location = "a:" + strings.TrimSpace(it.Address)
	default:
		location = "~" + it.ID
	}
	if KindOf(it) == KindOpaque {
		// opaque items match on full structural equality only; a per-item
		// signature keeps the fast path from colliding
		return canon("opaque", it.ID)
	}
	return canon("service", it.ServiceType, it.Recurrence, it.PaymentFrequency, location)
}

func canon(parts ...string) string {
	h := sha256.Sum256([]byte(strings.Join(parts, "\x1f")))
	return hex.EncodeToString(h[:16])
}
