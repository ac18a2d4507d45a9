package scenarios

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/rentmatch/core/model"
	"github.com/kilianp07/rentmatch/infra/memory"
)

type AccountDef struct {
	ID           string   `yaml:"id"`
	Latitude     *float64 `yaml:"latitude,omitempty"`
	Longitude    *float64 `yaml:"longitude,omitempty"`
	Capabilities []string `yaml:"capabilities"`
}

type EquipmentDef struct {
	ID          string   `yaml:"id"`
	OwnerID     string   `yaml:"owner_id"`
	DailyPrice  float64  `yaml:"daily_price"`
	HourlyPrice *float64 `yaml:"hourly_price,omitempty"`
}

type RequestDef struct {
	EquipmentID string   `yaml:"equipment_id"`
	RenterID    string   `yaml:"renter_id"`
	StartDate   string   `yaml:"start_date"`
	EndDate     string   `yaml:"end_date,omitempty"`
	Hours       *int     `yaml:"hours,omitempty"`
	Latitude    *float64 `yaml:"latitude,omitempty"`
	Longitude   *float64 `yaml:"longitude,omitempty"`
}

func (r RequestDef) ToModel() model.BookingRequest {
	return model.BookingRequest{
		EquipmentID: r.EquipmentID,
		RenterID:    r.RenterID,
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
		Hours:       r.Hours,
		Latitude:    r.Latitude,
		Longitude:   r.Longitude,
	}
}

// Step is one call against the booking. Owner selects the candidate for
// accept and reject; Caller overrides the renter on cancel.
type Step struct {
	Action string `yaml:"action"`
	Owner  string `yaml:"owner,omitempty"`
	Caller string `yaml:"caller,omitempty"`
	Error  string `yaml:"error,omitempty"`
}

type Expected struct {
	Status        string            `yaml:"status"`
	AcceptedOwner string            `yaml:"accepted_owner,omitempty"`
	TotalCost     *float64          `yaml:"total_cost,omitempty"`
	Ranking       []string          `yaml:"ranking,omitempty"`
	Candidates    map[string]string `yaml:"candidates,omitempty"`
	PoolSize      *int              `yaml:"pool_size,omitempty"`
}

type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description,omitempty"`
	Accounts    []AccountDef   `yaml:"accounts"`
	Equipment   []EquipmentDef `yaml:"equipment"`
	Request     RequestDef     `yaml:"request"`
	Steps       []Step         `yaml:"steps,omitempty"`
	Expected    Expected       `yaml:"expected"`
}

// Directory builds the in-memory directory described by the scenario.
func (sc *Scenario) Directory() (*memory.Directory, error) {
	var fx memory.Fixture
	for _, a := range sc.Accounts {
		fx.Accounts = append(fx.Accounts, memory.FixtureAccount{
			ID: a.ID, Latitude: a.Latitude, Longitude: a.Longitude, Capabilities: a.Capabilities,
		})
	}
	for _, e := range sc.Equipment {
		fx.Equipment = append(fx.Equipment, memory.FixtureEquipment{
			ID: e.ID, OwnerID: e.OwnerID, DailyPrice: e.DailyPrice, HourlyPrice: e.HourlyPrice,
		})
	}
	d := memory.NewDirectory()
	if err := d.Seed(fx); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
	}
	return d, nil
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if sc.Name == "" {
		return nil, fmt.Errorf("%s: scenario without name", path)
	}
	return &sc, nil
}
