package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/rentmatch/core/decisionlog"
	"github.com/kilianp07/rentmatch/core/dispatch"
	"github.com/kilianp07/rentmatch/core/metrics"
	"github.com/kilianp07/rentmatch/core/notify"
	"github.com/kilianp07/rentmatch/infra/monitoring"
)

// EnvPrefix prefixes environment overrides. RM_STORE__POSTGRES__DSN sets store.postgres.dsn.
const EnvPrefix = "RM_"

type Config struct {
	HTTP        HTTPConfig              `json:"http"`
	Store       StoreConfig             `json:"store"`
	Directory   DirectoryConfig         `json:"directory"`
	Dispatch    dispatch.Config         `json:"dispatch"`
	Notify      notify.Config           `json:"notify"`
	Metrics     metrics.Config          `json:"metrics"`
	DecisionLog decisionlog.Config      `json:"decision_log"`
	Sentry      monitoring.SentryConfig `json:"sentry"`
	Logging     LoggingConfig           `json:"logging"`
	API         APIConfig               `json:"api"`
}

// Load reads path (YAML or JSON; empty means environment only), applies
// environment overrides, then defaults, then validation. A .env file in the
// working directory is loaded first when present.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) SetDefaults() {
	c.HTTP.SetDefaults()
	c.Store.SetDefaults()
	c.Directory.SetDefaults(c.Store)
	c.Dispatch.SetDefaults()
	c.DecisionLog.SetDefaults()
}

// Validate checks every section and joins the failures.
func (c Config) Validate() error {
	return errors.Join(
		c.HTTP.Validate(),
		c.Store.Validate(),
		c.Directory.Validate(c.Store),
		c.Dispatch.Validate(),
		c.DecisionLog.Validate(),
		c.Sentry.Validate(),
		c.Logging.Validate(),
	)
}
