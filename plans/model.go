package plans

import "time"

// EntitlementWindow is the fixed validity of a purchased plan.
const EntitlementWindow = 30 * 24 * time.Hour

// Plan is one catalog entry. The catalog is fixed and immutable; prices
// are display strings with the amount carried separately for checkout.
type Plan struct {
	ID       int      `json:"id"`
	Type     string   `json:"type"`
	Price    string   `json:"price"`
	Amount   int64    `json:"-"` // rupees, for the card checkout
	Popular  bool     `json:"popular"`
	Features []string `json:"features"`
}

var baseFeatures = []string{
	"6 days /week",
	"2 interior cleaning /month",
	"Slot based on your selection",
	"Daily updates",
}

var catalog = []Plan{
	{ID: 1, Type: "Hatchback", Price: "₹799", Amount: 799, Features: baseFeatures},
	{ID: 2, Type: "Sedan", Price: "₹899", Amount: 899, Popular: true, Features: baseFeatures},
	{ID: 3, Type: "SUV", Price: "₹999", Amount: 999, Features: baseFeatures},
	{ID: 4, Type: "Premium", Price: "₹1199", Amount: 1199, Features: []string{
		"6 days /week",
		"2 interior cleaning /month",
		"2 rim cleaning /month",
		"Slot based on your selection",
		"Daily updates",
	}},
}

// Catalog returns the four offerings.
func Catalog() []Plan {
	return catalog
}

// PlanByType resolves a catalog entry by its type name.
func PlanByType(t string) *Plan {
	for i := range catalog {
		if catalog[i].Type == t {
			return &catalog[i]
		}
	}
	return nil
}

// Entitlement is the time-bounded record granting feed and report access.
type Entitlement struct {
	ID        int       `json:"id"`
	AccountID int       `json:"account_id"`
	PlanType  string    `json:"plan_type"`
	Reference string    `json:"reference"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Active    bool      `json:"active"`
}

// DaysRemaining reports whole days until expiry, never negative.
func (e *Entitlement) DaysRemaining(now time.Time) int {
	d := int(e.EndDate.Sub(now).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}
