package pricing

// Money represents a monetary value stored in minor units.
type Money = int64

// Recurrence describes how often a booked service repeats.
type Recurrence string

const (
	OneTime  Recurrence = "one_time"
	Weekly   Recurrence = "weekly"
	Biweekly Recurrence = "biweekly"
	Monthly  Recurrence = "monthly"
	Yearly   Recurrence = "yearly"
)

// Valid reports whether the recurrence is one of the known values.
func (r Recurrence) Valid() bool {
	switch r {
	case OneTime, Weekly, Biweekly, Monthly, Yearly:
		return true
	}
	return false
}

// Tier is the service quality level. Ordering: standard < premium < elite.
type Tier string

const (
	TierStandard Tier = "standard"
	TierPremium  Tier = "premium"
	TierElite    Tier = "elite"
)

// Valid reports whether the tier is one of the known values.
func (t Tier) Valid() bool {
	switch t {
	case TierStandard, TierPremium, TierElite:
		return true
	}
	return false
}

// ServiceConfig is the subset of a line item configuration that drives pricing.
type ServiceConfig struct {
	RoomType         string     `json:"roomType"`
	RoomCount        int        `json:"roomCount"`
	Tier             Tier       `json:"tier"`
	AddOns           []string   `json:"addOns"`
	Reductions       []string   `json:"reductions"`
	CleanlinessLevel int        `json:"cleanlinessLevel"`
	Recurrence       Recurrence `json:"recurrence"`
}

// QuoteResult is the deterministic output of pricing one configuration.
type QuoteResult struct {
	FirstServicePrice     Money `json:"firstServicePrice"`
	RecurringServicePrice Money `json:"recurringServicePrice"`
	DurationMinutes       int   `json:"estimatedDurationMinutes"`
}
