package metrics

import "github.com/kilianp07/rentmatch/core/factory"

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
	// PrometheusAddr is where /metrics is served; empty disables the server.
	PrometheusAddr string `json:"prometheus_addr"`
}
