package metrics

import (
	"time"

	"github.com/kilianp07/rentmatch/core/events"
	"github.com/kilianp07/rentmatch/core/model"
)

// MetricsSink records booking events for observability purposes.
type MetricsSink interface {
	RecordBookingEvent(ev events.BookingEvent) error
}

// PoolSample is the candidate pool built or re-broadcast for one booking.
type PoolSample struct {
	BookingID string
	Summary   model.PoolSummary
	Time      time.Time
}

// PoolRecorder records candidate pool statistics.
type PoolRecorder interface {
	RecordPool(s PoolSample) error
}

// ResponseSample is the delay between an invitation and the owner's answer.
type ResponseSample struct {
	BookingID string
	Kind      events.Kind
	Latency   time.Duration
	Time      time.Time
}

// ResponseRecorder records owner response latencies.
type ResponseRecorder interface {
	RecordResponse(s ResponseSample) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordBookingEvent(events.BookingEvent) error { return nil }
func (NopSink) RecordPool(PoolSample) error                  { return nil }
func (NopSink) RecordResponse(ResponseSample) error          { return nil }
