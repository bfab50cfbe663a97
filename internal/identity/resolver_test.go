package identity

import "testing"

func serviceItem(id, postal, address string) Item {
	return Item{
		ID:               id,
		ServiceType:      "standard",
		Recurrence:       "one_time",
		PaymentFrequency: "per_service",
		Address:          address,
		PostalCode:       postal,
	}
}

func TestCatalogItemsMatchOnPriceID(t *testing.T) {
	a := Item{ID: "1", PriceID: "price_abc"}
	b := Item{ID: "2", PriceID: "price_abc"}
	c := Item{ID: "3", PriceID: "price_xyz"}

	if !SamePurchase(a, b) {
		t.Fatal("equal price ids should match")
	}
	if SamePurchase(a, c) {
		t.Fatal("different price ids should not match")
	}
}

func TestCatalogNeverMatchesService(t *testing.T) {
	a := Item{ID: "1", PriceID: "price_abc"}
	b := serviceItem("2", "10001", "")
	if SamePurchase(a, b) {
		t.Fatal("catalog and service items must not match")
	}
}

func TestServiceMatchOnPostalCode(t *testing.T) {
	a := serviceItem("1", "10001", "12 Main St")
	b := serviceItem("2", "10001", "99 Other Ave")
	if !SamePurchase(a, b) {
		t.Fatal("equal postal codes should match despite different streets")
	}
}

func TestServiceMatchOnExactAddress(t *testing.T) {
	a := serviceItem("1", "10001", "12 Main St")
	b := serviceItem("2", "20002", "12 Main St")
	if !SamePurchase(a, b) {
		t.Fatal("exact address match should win even with different postal codes")
	}
}

func TestServiceMismatchOnRecurrence(t *testing.T) {
	a := serviceItem("1", "10001", "")
	b := serviceItem("2", "10001", "")
	b.Recurrence = "weekly"
	if SamePurchase(a, b) {
		t.Fatal("different recurrence must not match")
	}
}

func TestEmptyLocationsNeverMatch(t *testing.T) {
	a := serviceItem("1", "", "")
	b := serviceItem("2", "", "")
	if SamePurchase(a, b) {
		t.Fatal("ambiguous locations are distinct bookings")
	}
	if Signature(a) == Signature(b) {
		t.Fatal("empty-location items must not share a signature")
	}
}

func TestMissingAddressStillMatchesOnPostal(t *testing.T) {
	a := serviceItem("1", "10001", "")
	b := serviceItem("2", "10001", "12 Main St")
	if !SamePurchase(a, b) {
		t.Fatal("shared postal code should match when one address is missing")
	}
}

func TestSignatureImpliesSamePurchase(t *testing.T) {
	cases := [][2]Item{
		{Item{ID: "1", PriceID: "p1"}, Item{ID: "2", PriceID: "p1"}},
		{serviceItem("1", "10001", "12 Main St"), serviceItem("2", "10001", "99 Other Ave")},
		{serviceItem("1", "", "12 Main St"), serviceItem("2", "", "12 Main St")},
	}
	for i, pair := range cases {
		if Signature(pair[0]) != Signature(pair[1]) {
			t.Fatalf("case %d: expected equal signatures", i)
		}
		if !SamePurchase(pair[0], pair[1]) {
			t.Fatalf("case %d: equal signatures must imply same purchase", i)
		}
	}
}

func TestPostalAndAddressSlotsNeverCollide(t *testing.T) {
	a := serviceItem("1", "10001", "")
	b := serviceItem("2", "", "10001")
	if SamePurchase(a, b) {
		t.Fatal("a postal code and an address with the same text are different locations")
	}
	if Signature(a) == Signature(b) {
		t.Fatal("postal- and address-derived signatures must not collide")
	}
}

func TestOpaqueItemsCompareStructurally(t *testing.T) {
	a := Item{ID: "1", Config: map[string]any{"addOns": []string{"x", "y"}, "supplies": "own"}}
	b := Item{ID: "2", Config: map[string]any{"addOns": []string{"y", "x"}, "supplies": "own"}}
	if !SamePurchase(a, b) {
		t.Fatal("set-valued keys should compare order-insensitively")
	}
	b.Config["addOns"] = []string{"x", "z"}
	if SamePurchase(a, b) {
		t.Fatal("different add-on sets must not match")
	}
}
