package metrics

import (
	"errors"

	"github.com/kilianp07/rentmatch/core/events"
)

// MultiSink fans records out to multiple sinks. Every sink is tried; errors
// are joined.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

func (m *MultiSink) RecordBookingEvent(ev events.BookingEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if err := s.RecordBookingEvent(ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RecordPool forwards to sinks implementing PoolRecorder.
func (m *MultiSink) RecordPool(p PoolSample) error {
	var errs []error
	for _, s := range m.Sinks {
		if rec, ok := s.(PoolRecorder); ok {
			if err := rec.RecordPool(p); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// RecordResponse forwards to sinks implementing ResponseRecorder.
func (m *MultiSink) RecordResponse(r ResponseSample) error {
	var errs []error
	for _, s := range m.Sinks {
		if rec, ok := s.(ResponseRecorder); ok {
			if err := rec.RecordResponse(r); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
