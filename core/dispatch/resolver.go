package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/kilianp07/rentmatch/core/model"
	"github.com/kilianp07/rentmatch/core/store"
)

// Resolver applies an owner's answer to an invitation. Accept is the only
// operation whose correctness depends on the store's locking: it must run in
// a transaction that locks the booking row.
type Resolver struct {
	now func() time.Time
}

// NewResolver returns a Resolver using the wall clock.
func NewResolver() Resolver { return Resolver{now: time.Now} }

// Acceptance is the outcome of a winning Accept.
type Acceptance struct {
	Booking   model.Booking
	Candidate model.Candidate
	Expired   []model.Candidate
}

func (r Resolver) candidateFor(ctx context.Context, tx store.Tx, candidateID, callerOwnerID string) (model.Candidate, error) {
	c, err := tx.GetCandidate(ctx, candidateID)
	if err != nil {
		return c, err
	}
	if callerOwnerID != "" && callerOwnerID != c.OwnerID {
		return c, fmt.Errorf("candidate %s belongs to another owner: %w", candidateID, model.ErrForbidden)
	}
	return c, nil
}

// Accept binds the candidate's owner to the booking. Losing a race yields
// ErrAlreadyConfirmed; answering twice yields ErrInvalidCandidateState.
func (r Resolver) Accept(ctx context.Context, tx store.Tx, candidateID, callerOwnerID string) (Acceptance, error) {
	c, err := r.candidateFor(ctx, tx, candidateID, callerOwnerID)
	if err != nil {
		return Acceptance{}, err
	}
	b, err := tx.LockBooking(ctx, c.BookingID)
	if err != nil {
		return Acceptance{}, fmt.Errorf("lock booking %s: %w", c.BookingID, err)
	}
	if b.AcceptedOwnerID != "" {
		return Acceptance{}, fmt.Errorf("booking %s: %w", b.ID, model.ErrAlreadyConfirmed)
	}
	// Re-read under the lock; a concurrent Reject may have landed first.
	if c, err = tx.GetCandidate(ctx, candidateID); err != nil {
		return Acceptance{}, err
	}
	if c.Status.Terminal() {
		return Acceptance{}, fmt.Errorf("candidate %s is %s: %w", c.ID, c.Status, model.ErrInvalidCandidateState)
	}
	if !b.Status.CanTransition(model.BookingConfirmed) {
		return Acceptance{}, &model.TransitionError{From: b.Status, To: model.BookingConfirmed}
	}

	now := r.now()
	ok, err := tx.ConfirmBooking(ctx, b.ID, c.OwnerID, now)
	if err != nil {
		return Acceptance{}, fmt.Errorf("confirm booking %s: %w", b.ID, err)
	}
	if !ok {
		return Acceptance{}, fmt.Errorf("booking %s: %w", b.ID, model.ErrAlreadyConfirmed)
	}
	if err := c.Accept(now); err != nil {
		return Acceptance{}, err
	}
	if err := tx.UpdateCandidate(ctx, c); err != nil {
		return Acceptance{}, fmt.Errorf("update candidate %s: %w", c.ID, err)
	}
	expired, err := tx.ExpireOpenCandidates(ctx, b.ID, c.ID, now)
	if err != nil {
		return Acceptance{}, fmt.Errorf("expire siblings of %s: %w", c.ID, err)
	}
	if b, err = tx.GetBooking(ctx, b.ID); err != nil {
		return Acceptance{}, err
	}
	return Acceptance{Booking: b, Candidate: c, Expired: expired}, nil
}

// Reject records a refusal. The booking and the other candidates are left
// untouched and nobody is re-invited.
func (r Resolver) Reject(ctx context.Context, tx store.Tx, candidateID, callerOwnerID string) (model.Candidate, error) {
	c, err := r.candidateFor(ctx, tx, candidateID, callerOwnerID)
	if err != nil {
		return c, err
	}
	if _, err := tx.LockBooking(ctx, c.BookingID); err != nil {
		return c, fmt.Errorf("lock booking %s: %w", c.BookingID, err)
	}
	if c, err = tx.GetCandidate(ctx, candidateID); err != nil {
		return c, err
	}
	if err := c.Reject(r.now()); err != nil {
		return c, fmt.Errorf("candidate %s is %s: %w", c.ID, c.Status, err)
	}
	if err := tx.UpdateCandidate(ctx, c); err != nil {
		return c, fmt.Errorf("update candidate %s: %w", c.ID, err)
	}
	return c, nil
}
