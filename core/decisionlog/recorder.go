package decisionlog

import (
	"context"
	"time"

	"github.com/kilianp07/rentmatch/core/events"
	"github.com/kilianp07/rentmatch/core/logger"
)

// Recorder appends every received event to a Store.
type Recorder struct {
	Store   Store
	Log     logger.Logger
	Timeout time.Duration
}

// Run consumes ch until it is closed or ctx is done. Append failures are logged.
func (r Recorder) Run(ctx context.Context, ch <-chan events.BookingEvent) error {
	log := logger.OrNop(r.Log)
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-ch:
			if !ok {
				return nil
			}
			actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
			if err := r.Store.Append(actx, FromEvent(ev)); err != nil {
				log.Errorf("decision log append %s for booking %s: %v", ev.Kind, ev.BookingID, err)
			}
			cancel()
		}
	}
}
