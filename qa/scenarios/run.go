package scenarios

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/kilianp07/rentmatch/core/dispatch"
	"github.com/kilianp07/rentmatch/core/model"
	"github.com/kilianp07/rentmatch/infra/memory"
)

// Outcome is the observed end state of a scenario run.
type Outcome struct {
	Booking    model.Booking
	Candidates []model.Candidate
}

var errorNames = map[string]error{
	"already_confirmed":  model.ErrAlreadyConfirmed,
	"forbidden":          model.ErrForbidden,
	"invalid_transition": model.ErrInvalidTransition,
	"not_found":          model.ErrNotFound,
	"validation":         model.ErrValidation,
}

// Run creates the scenario's booking on an in-memory store and plays its
// steps in order. A step whose error does not match Step.Error aborts the run.
func Run(ctx context.Context, sc *Scenario) (*Outcome, error) {
	dir, err := sc.Directory()
	if err != nil {
		return nil, err
	}
	mgr, err := dispatch.NewManager(memory.NewStore(), dir)
	if err != nil {
		return nil, err
	}
	b, err := mgr.CreateBooking(ctx, sc.Request.ToModel())
	if err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}
	initial, err := mgr.BookingCandidates(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	for i, st := range sc.Steps {
		if cerr := checkError(play(ctx, mgr, b, initial, st), st.Error); cerr != nil {
			return nil, fmt.Errorf("step %d (%s %s): %w", i+1, st.Action, st.Owner, cerr)
		}
	}
	out := &Outcome{}
	if out.Booking, err = mgr.GetBooking(ctx, b.ID); err != nil {
		return nil, err
	}
	if out.Candidates, err = mgr.BookingCandidates(ctx, b.ID); err != nil {
		return nil, err
	}
	// Report the ranking the pool was built with.
	order := make(map[string]int, len(initial))
	for i, c := range initial {
		order[c.ID] = i
	}
	slices.SortFunc(out.Candidates, func(a, b model.Candidate) int { return order[a.ID] - order[b.ID] })
	return out, nil
}

func play(ctx context.Context, mgr *dispatch.Manager, b model.Booking, pool []model.Candidate, st Step) error {
	candidate := func() (string, error) {
		for _, c := range pool {
			if c.OwnerID == st.Owner {
				return c.ID, nil
			}
		}
		return "", fmt.Errorf("no candidate for owner %q", st.Owner)
	}
	var err error
	switch st.Action {
	case "accept":
		var id string
		if id, err = candidate(); err == nil {
			_, err = mgr.Accept(ctx, id, st.Owner)
		}
	case "reject":
		var id string
		if id, err = candidate(); err == nil {
			_, err = mgr.Reject(ctx, id, st.Owner)
		}
	case "cancel":
		caller := st.Caller
		if caller == "" {
			caller = b.RenterID
		}
		_, err = mgr.Cancel(ctx, b.ID, caller)
	case "dispatch":
		_, err = mgr.Dispatch(ctx, b.ID)
	case "start":
		_, err = mgr.Start(ctx, b.ID)
	case "complete":
		_, err = mgr.Complete(ctx, b.ID)
	default:
		return fmt.Errorf("unknown action %q", st.Action)
	}
	return err
}

func checkError(got error, want string) error {
	if want == "" {
		return got
	}
	target, ok := errorNames[want]
	if !ok {
		return fmt.Errorf("unknown error name %q", want)
	}
	if got == nil {
		return fmt.Errorf("expected %s, got success", want)
	}
	if !errors.Is(got, target) {
		return fmt.Errorf("expected %s, got %w", want, got)
	}
	return nil
}

// Verify compares the outcome with the scenario's expectations and returns
// one message per mismatch.
func (sc *Scenario) Verify(o *Outcome) []string {
	var diffs []string
	exp := sc.Expected
	if exp.Status != "" && string(o.Booking.Status) != exp.Status {
		diffs = append(diffs, fmt.Sprintf("status: want %s, got %s", exp.Status, o.Booking.Status))
	}
	if o.Booking.AcceptedOwnerID != exp.AcceptedOwner {
		diffs = append(diffs, fmt.Sprintf("accepted owner: want %q, got %q", exp.AcceptedOwner, o.Booking.AcceptedOwnerID))
	}
	if exp.TotalCost != nil && o.Booking.TotalCost != *exp.TotalCost {
		diffs = append(diffs, fmt.Sprintf("total cost: want %.2f, got %.2f", *exp.TotalCost, o.Booking.TotalCost))
	}
	if exp.PoolSize != nil && len(o.Candidates) != *exp.PoolSize {
		diffs = append(diffs, fmt.Sprintf("pool size: want %d, got %d", *exp.PoolSize, len(o.Candidates)))
	}
	if exp.Ranking != nil {
		got := make([]string, len(o.Candidates))
		for i, c := range o.Candidates {
			got[i] = c.OwnerID
		}
		if !slices.Equal(got, exp.Ranking) {
			diffs = append(diffs, fmt.Sprintf("ranking: want %v, got %v", exp.Ranking, got))
		}
	}
	byOwner := make(map[string]model.CandidateStatus, len(o.Candidates))
	for _, c := range o.Candidates {
		byOwner[c.OwnerID] = c.Status
	}
	for owner, want := range exp.Candidates {
		got, ok := byOwner[owner]
		switch {
		case !ok:
			diffs = append(diffs, fmt.Sprintf("candidate %s: missing", owner))
		case string(got) != want:
			diffs = append(diffs, fmt.Sprintf("candidate %s: want %s, got %s", owner, want, got))
		}
	}
	slices.Sort(diffs)
	return diffs
}
