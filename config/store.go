package config

import (
	"fmt"

	"github.com/kilianp07/rentmatch/infra/postgres"
)

const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
)

// StoreConfig selects where bookings and candidates live.
type StoreConfig struct {
	Type     string          `json:"type"`
	Postgres postgres.Config `json:"postgres"`
}

func (c *StoreConfig) SetDefaults() {
	if c.Type == "" {
		c.Type = BackendMemory
	}
}

func (c StoreConfig) Validate() error {
	switch c.Type {
	case BackendMemory:
		return nil
	case BackendPostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("store.postgres.dsn is required")
		}
		return nil
	default:
		return fmt.Errorf("store.type %q unsupported", c.Type)
	}
}

// DirectoryConfig selects the account and equipment source.
type DirectoryConfig struct {
	Type string `json:"type"`
	// Fixture seeds the memory directory, or the postgres tables on migrate.
	Fixture string `json:"fixture"`
}

// SetDefaults follows the store backend when no type is set.
func (c *DirectoryConfig) SetDefaults(st StoreConfig) {
	if c.Type == "" {
		c.Type = st.Type
	}
}

func (c DirectoryConfig) Validate(st StoreConfig) error {
	switch c.Type {
	case BackendMemory:
		return nil
	case BackendPostgres:
		if st.Postgres.DSN == "" {
			return fmt.Errorf("directory.type postgres needs store.postgres.dsn")
		}
		return nil
	default:
		return fmt.Errorf("directory.type %q unsupported", c.Type)
	}
}
