package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/kilianp07/rentmatch/core/model"
	"github.com/kilianp07/rentmatch/core/store"
)

// Lifecycle applies booking-level transitions that do not involve an owner's
// answer.
type Lifecycle struct {
	now            func() time.Time
	defaultArrival time.Duration
}

// NewLifecycle returns a Lifecycle; a zero defaultArrival means DefaultArrival.
func NewLifecycle(defaultArrival time.Duration) Lifecycle {
	if defaultArrival <= 0 {
		defaultArrival = DefaultArrival
	}
	return Lifecycle{now: time.Now, defaultArrival: defaultArrival}
}

// Cancel withdraws a booking that has not been confirmed. Open candidates are
// expired in the same transaction. callerID, when set, must be the renter.
func (l Lifecycle) Cancel(ctx context.Context, tx store.Tx, bookingID, callerID string) (model.Booking, []model.Candidate, error) {
	b, err := tx.LockBooking(ctx, bookingID)
	if err != nil {
		return b, nil, err
	}
	if callerID != "" && callerID != b.RenterID {
		return b, nil, fmt.Errorf("booking %s belongs to another renter: %w", b.ID, model.ErrForbidden)
	}
	if err := b.Transition(model.BookingCancelled); err != nil {
		return b, nil, err
	}
	if err := tx.UpdateBooking(ctx, b); err != nil {
		return b, nil, fmt.Errorf("update booking %s: %w", b.ID, err)
	}
	expired, err := tx.ExpireOpenCandidates(ctx, b.ID, "", l.now())
	if err != nil {
		return b, nil, fmt.Errorf("expire candidates of %s: %w", b.ID, err)
	}
	return b, expired, nil
}

// Start moves a confirmed booking to ACTIVE.
func (l Lifecycle) Start(ctx context.Context, tx store.Tx, bookingID string) (model.Booking, error) {
	return l.move(ctx, tx, bookingID, model.BookingActive)
}

// Complete closes a confirmed or active booking.
func (l Lifecycle) Complete(ctx context.Context, tx store.Tx, bookingID string) (model.Booking, error) {
	return l.move(ctx, tx, bookingID, model.BookingCompleted)
}

func (l Lifecycle) move(ctx context.Context, tx store.Tx, bookingID string, next model.BookingStatus) (model.Booking, error) {
	b, err := tx.LockBooking(ctx, bookingID)
	if err != nil {
		return b, err
	}
	if err := b.Transition(next); err != nil {
		return b, err
	}
	if err := tx.UpdateBooking(ctx, b); err != nil {
		return b, fmt.Errorf("update booking %s: %w", b.ID, err)
	}
	return b, nil
}

// UpdateArrival stores the winning owner's arrival estimate and the derived
// arrival time. Only CONFIRMED and ACTIVE bookings accept an estimate; the
// status never changes. Unparseable text falls back to the default delay.
func (l Lifecycle) UpdateArrival(ctx context.Context, tx store.Tx, bookingID, estimate string) (model.Booking, error) {
	b, err := tx.LockBooking(ctx, bookingID)
	if err != nil {
		return b, err
	}
	if b.Status != model.BookingConfirmed && b.Status != model.BookingActive {
		return b, fmt.Errorf("%w: arrival estimate on %s booking", model.ErrInvalidTransition, b.Status)
	}
	d, _ := ParseArrival(estimate, l.defaultArrival)
	at := l.now().Add(d)
	b.ArrivalEstimate = estimate
	b.ArrivalAt = &at
	if err := tx.UpdateBooking(ctx, b); err != nil {
		return b, fmt.Errorf("update booking %s: %w", b.ID, err)
	}
	return b, nil
}
