package decisionlog

import (
	"context"
	"slices"
	"time"

	"github.com/kilianp07/rentmatch/core/events"
)

// Record is one booking decision as written to the log.
type Record struct {
	Timestamp time.Time           `json:"timestamp"`
	Event     events.BookingEvent `json:"event"`
}

// FromEvent wraps ev with its occurrence time.
func FromEvent(ev events.BookingEvent) Record {
	ts := ev.OccurredAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	return Record{Timestamp: ts, Event: ev}
}

// Query defines filters for retrieving records. Zero values match everything.
type Query struct {
	Start     time.Time
	End       time.Time
	BookingID string
	OwnerID   string
	Kind      events.Kind
	Limit     int
}

// Match reports whether r passes every filter of q except Limit.
func (q Query) Match(r Record) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.BookingID != "" && r.Event.BookingID != q.BookingID {
		return false
	}
	if q.Kind != "" && r.Event.Kind != q.Kind {
		return false
	}
	if q.OwnerID != "" && !slices.Contains(r.Event.OwnerIDs, q.OwnerID) {
		return false
	}
	return true
}

func (q Query) limit(recs []Record) []Record {
	if q.Limit > 0 && len(recs) > q.Limit {
		return recs[len(recs)-q.Limit:]
	}
	return recs
}

// Store persists Records and supports querying. Results are in append order.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}

// NopStore discards records.
type NopStore struct{}

func (NopStore) Append(context.Context, Record) error           { return nil }
func (NopStore) Query(context.Context, Query) ([]Record, error) { return nil, nil }
func (NopStore) Close() error                                   { return nil }
