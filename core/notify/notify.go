// Package notify carries booking events to the outside world. The engine
// only publishes events on the bus; delivery channels are chosen here by
// configuration and can never affect a committed operation.
package notify

import (
	"context"
	"errors"

	"github.com/kilianp07/rentmatch/core/events"
	"github.com/kilianp07/rentmatch/core/factory"
	"github.com/kilianp07/rentmatch/core/logger"
)

// Publisher delivers one event to an external channel.
type Publisher interface {
	Publish(ctx context.Context, ev events.BookingEvent) error
	Close() error
}

// Config lists the enabled publishers.
type Config struct {
	Publishers []factory.ModuleConfig `json:"publishers"`
}

var registry = factory.NewRegistry[Publisher]()

// RegisterPublisher adds a publisher factory identified by name.
func RegisterPublisher(name string, f factory.Factory[Publisher]) error {
	return registry.Register(name, f)
}

// NewPublisher builds the configured publishers. No configuration yields a
// LogPublisher writing to log.
func NewPublisher(cfgs []factory.ModuleConfig, log logger.Logger) (Publisher, error) {
	if len(cfgs) == 0 {
		return LogPublisher{Log: logger.OrNop(log)}, nil
	}
	pubs := make([]Publisher, 0, len(cfgs))
	for _, c := range cfgs {
		if c.Type == "log" {
			pubs = append(pubs, LogPublisher{Log: logger.OrNop(log)})
			continue
		}
		p, err := registry.Create(c)
		if err != nil {
			_ = NewMulti(pubs...).Close()
			return nil, err
		}
		pubs = append(pubs, p)
	}
	if len(pubs) == 1 {
		return pubs[0], nil
	}
	return NewMulti(pubs...), nil
}

// LogPublisher writes events to a logger.
type LogPublisher struct {
	Log logger.Logger
}

func (l LogPublisher) Publish(_ context.Context, ev events.BookingEvent) error {
	l.Log.Infof("event %s booking=%s status=%s owners=%v", ev.Kind, ev.BookingID, ev.Status, ev.OwnerIDs)
	return nil
}

func (LogPublisher) Close() error { return nil }

// Multi fans an event out to several publishers. Every publisher is tried;
// errors are joined.
type Multi struct {
	pubs []Publisher
}

// NewMulti returns a publisher forwarding to all pubs.
func NewMulti(pubs ...Publisher) *Multi { return &Multi{pubs: pubs} }

func (m *Multi) Publish(ctx context.Context, ev events.BookingEvent) error {
	var errs []error
	for _, p := range m.pubs {
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *Multi) Close() error {
	var errs []error
	for _, p := range m.pubs {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
