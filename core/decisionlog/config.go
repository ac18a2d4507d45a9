package decisionlog

import "fmt"

// Config selects and tunes the decision log backend.
type Config struct {
	// Backend is one of "none", "jsonl", "rotating" or "sqlite".
	Backend    string `json:"backend"`
	Path       string `json:"path"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
}

func (c *Config) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "none"
	}
	if c.MaxSizeMB == 0 {
		c.MaxSizeMB = 10
	}
	if c.MaxBackups == 0 {
		c.MaxBackups = 5
	}
	if c.MaxAgeDays == 0 {
		c.MaxAgeDays = 30
	}
}

func (c Config) Validate() error {
	switch c.Backend {
	case "none":
		return nil
	case "jsonl", "rotating", "sqlite":
		if c.Path == "" {
			return fmt.Errorf("decision_log.path is required for backend %q", c.Backend)
		}
		return nil
	default:
		return fmt.Errorf("decision_log.backend %q unsupported", c.Backend)
	}
}

// Open builds the configured store.
func Open(c Config) (Store, error) {
	switch c.Backend {
	case "", "none":
		return NopStore{}, nil
	case "jsonl":
		return NewJSONLStore(c.Path)
	case "rotating":
		return NewRotatingJSONLStore(c.Path, c.MaxSizeMB, c.MaxBackups, c.MaxAgeDays)
	case "sqlite":
		return NewSQLiteStore(c.Path)
	default:
		return nil, fmt.Errorf("unknown decision log backend %q", c.Backend)
	}
}
