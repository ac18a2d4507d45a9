package monitoring

import (
	"fmt"
	"time"
)

// Monitor defines methods used for error reporting.
type Monitor interface {
	CaptureException(err error, tags map[string]string)
	Flush(timeout time.Duration)
}

// NopMonitor discards everything.
type NopMonitor struct{}

func (NopMonitor) CaptureException(error, map[string]string) {}
func (NopMonitor) Flush(time.Duration)                       {}

// OrNop returns m, or a NopMonitor when m is nil.
func OrNop(m Monitor) Monitor {
	if m == nil {
		return NopMonitor{}
	}
	return m
}

// Guard reports a panic to m and re-panics. It must be deferred directly:
//
//	defer monitoring.Guard(mon, map[string]string{"module": "relay"})
func Guard(m Monitor, tags map[string]string) {
	if r := recover(); r != nil {
		m = OrNop(m)
		m.CaptureException(fmt.Errorf("panic: %v", r), tags)
		m.Flush(2 * time.Second)
		panic(r)
	}
}
