package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/rentmatch/core/model"
)

// Kind names a booking event.
type Kind string

const (
	KindBookingCreated       Kind = "booking_created"
	KindCandidatesDispatched Kind = "candidates_dispatched"
	KindBookingConfirmed     Kind = "booking_confirmed"
	KindCandidateExpired     Kind = "candidate_expired"
	KindCandidateRejected    Kind = "candidate_rejected"
	KindBookingCancelled     Kind = "booking_cancelled"
	KindStatusChanged        Kind = "booking_status_changed"
)

// BookingEvent is the envelope published on the bus and forwarded to
// notification publishers as JSON.
type BookingEvent struct {
	ID           string              `json:"id"`
	Kind         Kind                `json:"kind"`
	BookingID    string              `json:"booking_id"`
	CandidateIDs []string            `json:"candidate_ids,omitempty"`
	OwnerIDs     []string            `json:"owner_ids,omitempty"`
	Status       model.BookingStatus `json:"status"`
	OccurredAt   time.Time           `json:"occurred_at"`

	// Pool is set on booking_created and candidates_dispatched.
	Pool *model.PoolSummary `json:"pool,omitempty"`
	// ResponseTime is the delay between invitation and answer on
	// booking_confirmed and candidate_rejected.
	ResponseTime time.Duration `json:"response_time,omitempty"`
	// Detail carries free text such as the arrival estimate.
	Detail string `json:"detail,omitempty"`
}

// New builds an event for b with a fresh id.
func New(kind Kind, b model.Booking, at time.Time) BookingEvent {
	return BookingEvent{
		ID:         uuid.NewString(),
		Kind:       kind,
		BookingID:  b.ID,
		Status:     b.Status,
		OccurredAt: at,
	}
}

// WithCandidates sets candidate and owner ids from cs.
func (e BookingEvent) WithCandidates(cs []model.Candidate) BookingEvent {
	e.CandidateIDs = make([]string, 0, len(cs))
	e.OwnerIDs = make([]string, 0, len(cs))
	for _, c := range cs {
		e.CandidateIDs = append(e.CandidateIDs, c.ID)
		e.OwnerIDs = append(e.OwnerIDs, c.OwnerID)
	}
	return e
}
