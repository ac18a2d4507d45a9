package dispatch

import "fmt"

// Config defines dispatch-related settings.
type Config struct {
	// DefaultArrivalMinutes applies when an arrival estimate cannot be parsed.
	DefaultArrivalMinutes int `json:"default_arrival_minutes"`
	// RequireRenterCapability rejects requests from accounts without RENTER.
	RequireRenterCapability bool `json:"require_renter_capability"`
}

// SetDefaults fills zero values.
func (c *Config) SetDefaults() {
	if c.DefaultArrivalMinutes == 0 {
		c.DefaultArrivalMinutes = int(DefaultArrival.Minutes())
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.DefaultArrivalMinutes < 0 {
		return fmt.Errorf("dispatch.default_arrival_minutes must be positive")
	}
	return nil
}
