// Package metrics defines the sinks that observe booking events. A sink
// records every event and may also implement PoolRecorder or
// ResponseRecorder for pool statistics and owner response latencies.
// NewMetricsSink builds sinks from configuration and returns a MultiSink
// when several are configured.
package metrics
