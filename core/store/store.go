// Package store defines the persistence port for bookings and candidates.
//
// All writes go through InTx. Implementations must guarantee that a failed
// transaction leaves no partial state behind and that LockBooking serializes
// concurrent transactions touching the same booking.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/kilianp07/rentmatch/core/model"
)

// ErrDuplicate is returned when a candidate already exists for (booking, owner)
// or a booking id is reused.
var ErrDuplicate = errors.New("duplicate record")

// CandidateFilter narrows ListCandidates. Empty fields match everything.
type CandidateFilter struct {
	OwnerID   string
	BookingID string
	Status    model.CandidateStatus
}

// BookingFilter narrows ListBookings. AccountID is required.
type BookingFilter struct {
	AccountID string
	Role      model.Role
	Status    model.BookingStatus
}

// Reader exposes read operations. Candidate lists are ordered by invitedAt
// descending and booking lists by createdAt descending, ties broken by id.
type Reader interface {
	GetBooking(ctx context.Context, id string) (model.Booking, error)
	GetCandidate(ctx context.Context, id string) (model.Candidate, error)
	ListCandidates(ctx context.Context, f CandidateFilter) ([]model.Candidate, error)
	ListBookings(ctx context.Context, f BookingFilter) ([]model.Booking, error)
}

// Tx is a unit of work. Reads through a Tx see its own uncommitted writes.
type Tx interface {
	Reader

	// LockBooking loads the booking and holds an exclusive lock on it until
	// the transaction ends.
	LockBooking(ctx context.Context, id string) (model.Booking, error)
	InsertBooking(ctx context.Context, b model.Booking) error
	InsertCandidates(ctx context.Context, cs []model.Candidate) error
	// UpdateBooking persists status, arrival and dates. It never touches the
	// accepted owner; use ConfirmBooking for that.
	UpdateBooking(ctx context.Context, b model.Booking) error
	// ConfirmBooking binds ownerID to the booking only if no owner is bound
	// yet. It reports false when another owner already won.
	ConfirmBooking(ctx context.Context, bookingID, ownerID string, at time.Time) (bool, error)
	UpdateCandidate(ctx context.Context, c model.Candidate) error
	// ExpireOpenCandidates moves every PENDING or NOTIFIED candidate of the
	// booking, except exceptID, to EXPIRED and returns them.
	ExpireOpenCandidates(ctx context.Context, bookingID, exceptID string, at time.Time) ([]model.Candidate, error)
}

// Store is the persistence port used by the dispatch engine.
type Store interface {
	Reader
	// InTx runs fn in a transaction. fn's error rolls everything back and is
	// returned unchanged.
	InTx(ctx context.Context, fn func(tx Tx) error) error
	Close() error
}
