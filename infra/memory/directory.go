package memory

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/rentmatch/core/model"
)

// Fixture is the file format accepted by LoadFixture.
type Fixture struct {
	Accounts  []FixtureAccount   `json:"accounts"`
	Equipment []FixtureEquipment `json:"equipment"`
}

// FixtureAccount is an account entry. Latitude and longitude are optional
// but must be given together.
type FixtureAccount struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	Capabilities []string `json:"capabilities"`
}

// FixtureEquipment is an equipment entry.
type FixtureEquipment struct {
	ID          string   `json:"id"`
	OwnerID     string   `json:"owner_id"`
	Name        string   `json:"name"`
	DailyPrice  float64  `json:"daily_price"`
	HourlyPrice *float64 `json:"hourly_price"`
}

// Directory is an in-memory directory.Directory.
type Directory struct {
	mu        sync.RWMutex
	accounts  map[string]model.Account
	equipment map[string]model.Equipment
}

// NewDirectory returns an empty Directory.
func NewDirectory() *Directory {
	return &Directory{accounts: map[string]model.Account{}, equipment: map[string]model.Equipment{}}
}

// LoadFixture reads a YAML or JSON fixture file into a new Directory.
func LoadFixture(path string) (*Directory, error) {
	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported fixture format: %s", path)
	}
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, fmt.Errorf("load fixture %s: %w", path, err)
	}
	var fx Fixture
	if err := k.UnmarshalWithConf("", &fx, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, fmt.Errorf("decode fixture %s: %w", path, err)
	}
	d := NewDirectory()
	if err := d.Seed(fx); err != nil {
		return nil, fmt.Errorf("fixture %s: %w", path, err)
	}
	return d, nil
}

// Seed adds the fixture's accounts and equipment.
func (d *Directory) Seed(fx Fixture) error {
	for _, fa := range fx.Accounts {
		a := model.Account{ID: fa.ID, Name: fa.Name}
		if fa.ID == "" {
			return fmt.Errorf("account without id")
		}
		if (fa.Latitude == nil) != (fa.Longitude == nil) {
			return fmt.Errorf("account %s: latitude and longitude must be given together", fa.ID)
		}
		if fa.Latitude != nil {
			p := model.GeoPoint{Latitude: *fa.Latitude, Longitude: *fa.Longitude}
			if err := p.Validate(); err != nil {
				return fmt.Errorf("account %s: %w", fa.ID, err)
			}
			a.Location = &p
		}
		for _, c := range fa.Capabilities {
			a.Capabilities = append(a.Capabilities, model.Capability(strings.ToUpper(c)))
		}
		d.PutAccount(a)
	}
	for _, fe := range fx.Equipment {
		if fe.ID == "" || fe.OwnerID == "" {
			return fmt.Errorf("equipment entry needs id and owner_id")
		}
		d.PutEquipment(model.Equipment{
			ID:      fe.ID,
			OwnerID: fe.OwnerID,
			Name:    fe.Name,
			Pricing: model.Pricing{DailyPrice: fe.DailyPrice, HourlyPrice: fe.HourlyPrice},
		})
	}
	return nil
}

// PutAccount inserts or replaces an account.
func (d *Directory) PutAccount(a model.Account) {
	d.mu.Lock()
	d.accounts[a.ID] = a
	d.mu.Unlock()
}

// PutEquipment inserts or replaces an equipment entry.
func (d *Directory) PutEquipment(e model.Equipment) {
	d.mu.Lock()
	d.equipment[e.ID] = e
	d.mu.Unlock()
}

// ListOwners implements directory.AccountDirectory. Results are ordered by id.
func (d *Directory) ListOwners(_ context.Context) ([]model.Account, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]model.Account, 0, len(d.accounts))
	for _, a := range d.accounts {
		if a.Has(model.CapabilityOwner) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// GetAccount implements directory.AccountDirectory.
func (d *Directory) GetAccount(_ context.Context, id string) (model.Account, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	a, ok := d.accounts[id]
	if !ok {
		return model.Account{}, fmt.Errorf("%w: %s", model.ErrAccountNotFound, id)
	}
	return a, nil
}

// GetEquipment implements directory.Inventory.
func (d *Directory) GetEquipment(_ context.Context, id string) (model.Equipment, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	e, ok := d.equipment[id]
	if !ok {
		return model.Equipment{}, fmt.Errorf("%w: %s", model.ErrEquipmentNotFound, id)
	}
	return e, nil
}

// Snapshot returns every account and equipment entry, ordered by id.
func (d *Directory) Snapshot() ([]model.Account, []model.Equipment) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	accounts := make([]model.Account, 0, len(d.accounts))
	for _, a := range d.accounts {
		accounts = append(accounts, a)
	}
	equipment := make([]model.Equipment, 0, len(d.equipment))
	for _, e := range d.equipment {
		equipment = append(equipment, e)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
	sort.Slice(equipment, func(i, j int) bool { return equipment[i].ID < equipment[j].ID })
	return accounts, equipment
}
