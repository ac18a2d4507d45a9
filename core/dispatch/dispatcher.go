package dispatch

import (
	"context"
	"fmt"

	"github.com/kilianp07/rentmatch/core/model"
	"github.com/kilianp07/rentmatch/core/store"
)

// Dispatcher broadcasts a booking to all of its NOTIFIED candidates at once.
// There is no per-candidate ordering and no timeout.
type Dispatcher struct{}

// Dispatch recomputes the booking status from its current candidates: with at
// least one NOTIFIED candidate the booking awaits an owner, otherwise it is
// parked as PENDING_NO_CANDIDATES. It never creates candidates and may be run
// again at any time before confirmation.
func (Dispatcher) Dispatch(ctx context.Context, tx store.Tx, bookingID string) (model.Booking, []model.Candidate, error) {
	b, err := tx.LockBooking(ctx, bookingID)
	if err != nil {
		return model.Booking{}, nil, err
	}
	if b.AcceptedOwnerID != "" {
		return b, nil, fmt.Errorf("booking %s: %w", b.ID, model.ErrAlreadyConfirmed)
	}
	open, err := tx.ListCandidates(ctx, store.CandidateFilter{BookingID: bookingID, Status: model.CandidateNotified})
	if err != nil {
		return b, nil, fmt.Errorf("list candidates of %s: %w", bookingID, err)
	}
	next := model.BookingPendingNoCandidates
	if len(open) > 0 {
		next = model.BookingAwaitingOwner
	}
	if err := b.Transition(next); err != nil {
		return b, nil, err
	}
	if err := tx.UpdateBooking(ctx, b); err != nil {
		return b, nil, fmt.Errorf("update booking %s: %w", b.ID, err)
	}
	SortCandidates(open)
	return b, open, nil
}
