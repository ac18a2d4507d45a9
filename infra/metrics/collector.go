package metrics

import (
	"context"

	"github.com/kilianp07/rentmatch/core/events"
	coremetrics "github.com/kilianp07/rentmatch/core/metrics"
	"github.com/kilianp07/rentmatch/infra/logger"
	"github.com/kilianp07/rentmatch/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records metrics for events.
// It stops when the context is canceled or the bus is closed; the returned
// channel is closed once the collector has exited.
func StartEventCollector(ctx context.Context, bus *eventbus.Bus[events.BookingEvent], sink coremetrics.MetricsSink) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || sink == nil {
		close(done)
		return done
	}
	log := logger.New("metrics-collector")
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if err := record(sink, ev); err != nil {
					log.Warnf("record %s for booking %s: %v", ev.Kind, ev.BookingID, err)
				}
			}
		}
	}()
	return done
}

func record(sink coremetrics.MetricsSink, ev events.BookingEvent) error {
	if err := sink.RecordBookingEvent(ev); err != nil {
		return err
	}
	// Created and dispatched carry the same pool; count it once.
	if ev.Pool != nil && ev.Kind == events.KindCandidatesDispatched {
		if r, ok := sink.(coremetrics.PoolRecorder); ok {
			if err := r.RecordPool(coremetrics.PoolSample{BookingID: ev.BookingID, Summary: *ev.Pool, Time: ev.OccurredAt}); err != nil {
				return err
			}
		}
	}
	if ev.ResponseTime > 0 {
		if r, ok := sink.(coremetrics.ResponseRecorder); ok {
			return r.RecordResponse(coremetrics.ResponseSample{
				BookingID: ev.BookingID,
				Kind:      ev.Kind,
				Latency:   ev.ResponseTime,
				Time:      ev.OccurredAt,
			})
		}
	}
	return nil
}
