package notify

import (
	"context"
	"time"

	"github.com/kilianp07/rentmatch/core/events"
	"github.com/kilianp07/rentmatch/core/logger"
	"github.com/kilianp07/rentmatch/core/monitoring"
)

const defaultPublishTimeout = 5 * time.Second

// Relay forwards events from a bus subscription to a Publisher.
type Relay struct {
	Publisher Publisher
	Log       logger.Logger
	Monitor   monitoring.Monitor
	Timeout   time.Duration
}

// Run consumes ch until it is closed or ctx is done. A failed delivery is
// logged and reported, never retried here; publishers own their retries.
func (r Relay) Run(ctx context.Context, ch <-chan events.BookingEvent) error {
	log := logger.OrNop(r.Log)
	mon := monitoring.OrNop(r.Monitor)
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = defaultPublishTimeout
	}
	defer monitoring.Guard(mon, map[string]string{"module": "notify"})
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-ch:
			if !ok {
				return nil
			}
			pctx, cancel := context.WithTimeout(ctx, timeout)
			err := r.Publisher.Publish(pctx, ev)
			cancel()
			if err != nil {
				log.Errorf("publish %s for booking %s: %v", ev.Kind, ev.BookingID, err)
				mon.CaptureException(err, map[string]string{
					"module":     "notify",
					"kind":       string(ev.Kind),
					"booking_id": ev.BookingID,
				})
			}
		}
	}
}
