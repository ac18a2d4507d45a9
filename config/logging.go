package config

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// LoggingConfig sets the global log level and output format.
type LoggingConfig struct {
	// Level is a zerolog level name; empty means info.
	Level string `json:"level"`
	// Format is "console", "json" or empty to follow APP_ENV.
	Format string `json:"format"`
}

func (c LoggingConfig) Validate() error {
	if c.Level != "" {
		if _, err := zerolog.ParseLevel(strings.ToLower(c.Level)); err != nil {
			return fmt.Errorf("logging.level: %w", err)
		}
	}
	switch c.Format {
	case "", "console", "json":
		return nil
	}
	return fmt.Errorf("logging.format %q unsupported", c.Format)
}
