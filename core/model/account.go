package model

// Capability is a role an account holds.
type Capability string

const (
	CapabilityOwner  Capability = "OWNER"
	CapabilityRenter Capability = "RENTER"
)

// Account is the single canonical identity for renters and owners alike.
type Account struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Location     *GeoPoint    `json:"location,omitempty"`
	Capabilities []Capability `json:"capabilities"`
}

// Has reports whether the account holds the capability.
func (a Account) Has(c Capability) bool {
	for _, got := range a.Capabilities {
		if got == c {
			return true
		}
	}
	return false
}

// Pricing holds the rental rates of a piece of equipment.
type Pricing struct {
	DailyPrice  float64  `json:"daily_price"`
	HourlyPrice *float64 `json:"hourly_price,omitempty"`
}

// Equipment is the inventory view the core needs: who owns it and what it costs.
type Equipment struct {
	ID      string  `json:"id"`
	OwnerID string  `json:"owner_id"`
	Name    string  `json:"name"`
	Pricing Pricing `json:"pricing"`
}
