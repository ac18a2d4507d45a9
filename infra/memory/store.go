package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/kilianp07/rentmatch/core/model"
	"github.com/kilianp07/rentmatch/core/store"
)

// Store is an in-process store.Store. Transactions run one at a time and
// stage their writes; nothing is applied unless fn returns nil.
type Store struct {
	sem chan struct{}

	mu         sync.RWMutex
	bookings   map[string]model.Booking
	candidates map[string]model.Candidate
	pairs      map[string]string
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		sem:        make(chan struct{}, 1),
		bookings:   map[string]model.Booking{},
		candidates: map[string]model.Candidate{},
		pairs:      map[string]string{},
	}
}

func pairKey(bookingID, ownerID string) string { return bookingID + "/" + ownerID }

// InTx implements store.Store.
func (s *Store) InTx(ctx context.Context, fn func(tx store.Tx) error) error {
	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-s.sem }()

	tx := &memTx{
		s:          s,
		bookings:   map[string]model.Booking{},
		candidates: map[string]model.Candidate{},
	}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.commit(tx)
	return nil
}

func (s *Store) commit(tx *memTx) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, b := range tx.bookings {
		s.bookings[id] = b
	}
	for id, c := range tx.candidates {
		s.candidates[id] = c
		s.pairs[pairKey(c.BookingID, c.OwnerID)] = id
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// GetBooking implements store.Reader.
func (s *Store) GetBooking(_ context.Context, id string) (model.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bookings[id]
	if !ok {
		return model.Booking{}, fmt.Errorf("%w: %s", model.ErrBookingNotFound, id)
	}
	return cloneBooking(b), nil
}

// GetCandidate implements store.Reader.
func (s *Store) GetCandidate(_ context.Context, id string) (model.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.candidates[id]
	if !ok {
		return model.Candidate{}, fmt.Errorf("%w: %s", model.ErrCandidateNotFound, id)
	}
	return cloneCandidate(c), nil
}

// ListCandidates implements store.Reader.
func (s *Store) ListCandidates(_ context.Context, f store.CandidateFilter) ([]model.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filterCandidates(s.candidates, nil, f), nil
}

// ListBookings implements store.Reader.
func (s *Store) ListBookings(_ context.Context, f store.BookingFilter) ([]model.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filterBookings(s.bookings, nil, f), nil
}

func filterCandidates(base, staged map[string]model.Candidate, f store.CandidateFilter) []model.Candidate {
	out := []model.Candidate{}
	keep := func(c model.Candidate) {
		if f.OwnerID != "" && c.OwnerID != f.OwnerID {
			return
		}
		if f.BookingID != "" && c.BookingID != f.BookingID {
			return
		}
		if f.Status != "" && c.Status != f.Status {
			return
		}
		out = append(out, cloneCandidate(c))
	}
	for id, c := range base {
		if sc, ok := staged[id]; ok {
			c = sc
		}
		keep(c)
	}
	for id, c := range staged {
		if _, ok := base[id]; !ok {
			keep(c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].InvitedAt.Equal(out[j].InvitedAt) {
			return out[i].InvitedAt.After(out[j].InvitedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func filterBookings(base, staged map[string]model.Booking, f store.BookingFilter) []model.Booking {
	role := f.Role
	if role == "" {
		role = model.RoleAny
	}
	out := []model.Booking{}
	keep := func(b model.Booking) {
		if !role.Matches(b, f.AccountID) {
			return
		}
		if f.Status != "" && b.Status != f.Status {
			return
		}
		out = append(out, cloneBooking(b))
	}
	for id, b := range base {
		if sb, ok := staged[id]; ok {
			b = sb
		}
		keep(b)
	}
	for id, b := range staged {
		if _, ok := base[id]; !ok {
			keep(b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// memTx stages writes on top of the committed maps. Only the goroutine
// holding sem mutates those maps, so reading them here needs no lock.
type memTx struct {
	s          *Store
	bookings   map[string]model.Booking
	candidates map[string]model.Candidate
}

func (t *memTx) booking(id string) (model.Booking, bool) {
	if b, ok := t.bookings[id]; ok {
		return b, true
	}
	b, ok := t.s.bookings[id]
	return b, ok
}

func (t *memTx) candidate(id string) (model.Candidate, bool) {
	if c, ok := t.candidates[id]; ok {
		return c, true
	}
	c, ok := t.s.candidates[id]
	return c, ok
}

func (t *memTx) GetBooking(_ context.Context, id string) (model.Booking, error) {
	b, ok := t.booking(id)
	if !ok {
		return model.Booking{}, fmt.Errorf("%w: %s", model.ErrBookingNotFound, id)
	}
	return cloneBooking(b), nil
}

func (t *memTx) LockBooking(ctx context.Context, id string) (model.Booking, error) {
	return t.GetBooking(ctx, id)
}

func (t *memTx) GetCandidate(_ context.Context, id string) (model.Candidate, error) {
	c, ok := t.candidate(id)
	if !ok {
		return model.Candidate{}, fmt.Errorf("%w: %s", model.ErrCandidateNotFound, id)
	}
	return cloneCandidate(c), nil
}

func (t *memTx) ListCandidates(_ context.Context, f store.CandidateFilter) ([]model.Candidate, error) {
	return filterCandidates(t.s.candidates, t.candidates, f), nil
}

func (t *memTx) ListBookings(_ context.Context, f store.BookingFilter) ([]model.Booking, error) {
	return filterBookings(t.s.bookings, t.bookings, f), nil
}

func (t *memTx) InsertBooking(_ context.Context, b model.Booking) error {
	if _, ok := t.booking(b.ID); ok {
		return fmt.Errorf("booking %s: %w", b.ID, store.ErrDuplicate)
	}
	t.bookings[b.ID] = cloneBooking(b)
	return nil
}

func (t *memTx) InsertCandidates(_ context.Context, cs []model.Candidate) error {
	seen := map[string]bool{}
	for _, c := range cs {
		if _, ok := t.booking(c.BookingID); !ok {
			return fmt.Errorf("%w: %s", model.ErrBookingNotFound, c.BookingID)
		}
		key := pairKey(c.BookingID, c.OwnerID)
		if _, ok := t.s.pairs[key]; ok || seen[key] {
			return fmt.Errorf("candidate %s for booking %s: %w", c.OwnerID, c.BookingID, store.ErrDuplicate)
		}
		if _, ok := t.candidate(c.ID); ok {
			return fmt.Errorf("candidate %s: %w", c.ID, store.ErrDuplicate)
		}
		seen[key] = true
	}
	for _, c := range cs {
		t.candidates[c.ID] = cloneCandidate(c)
	}
	return nil
}

func (t *memTx) UpdateBooking(_ context.Context, b model.Booking) error {
	cur, ok := t.booking(b.ID)
	if !ok {
		return fmt.Errorf("%w: %s", model.ErrBookingNotFound, b.ID)
	}
	next := cloneBooking(b)
	next.AcceptedOwnerID = cur.AcceptedOwnerID
	next.ConfirmedAt = cur.ConfirmedAt
	t.bookings[b.ID] = next
	return nil
}

func (t *memTx) ConfirmBooking(_ context.Context, bookingID, ownerID string, at time.Time) (bool, error) {
	b, ok := t.booking(bookingID)
	if !ok {
		return false, fmt.Errorf("%w: %s", model.ErrBookingNotFound, bookingID)
	}
	if b.AcceptedOwnerID != "" {
		return false, nil
	}
	b = cloneBooking(b)
	b.AcceptedOwnerID = ownerID
	b.Status = model.BookingConfirmed
	b.ConfirmedAt = &at
	t.bookings[bookingID] = b
	return true, nil
}

func (t *memTx) UpdateCandidate(_ context.Context, c model.Candidate) error {
	if _, ok := t.candidate(c.ID); !ok {
		return fmt.Errorf("%w: %s", model.ErrCandidateNotFound, c.ID)
	}
	t.candidates[c.ID] = cloneCandidate(c)
	return nil
}

func (t *memTx) ExpireOpenCandidates(ctx context.Context, bookingID, exceptID string, at time.Time) ([]model.Candidate, error) {
	cs, err := t.ListCandidates(ctx, store.CandidateFilter{BookingID: bookingID})
	if err != nil {
		return nil, err
	}
	var expired []model.Candidate
	for _, c := range cs {
		if c.ID == exceptID || !c.Status.Open() {
			continue
		}
		if err := c.Expire(at); err != nil {
			return nil, err
		}
		t.candidates[c.ID] = c
		expired = append(expired, c)
	}
	return expired, nil
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneBooking(b model.Booking) model.Booking {
	b.Location = clonePtr(b.Location)
	b.EndDate = clonePtr(b.EndDate)
	b.ArrivalAt = clonePtr(b.ArrivalAt)
	b.ConfirmedAt = clonePtr(b.ConfirmedAt)
	return b
}

func cloneCandidate(c model.Candidate) model.Candidate {
	c.RespondedAt = clonePtr(c.RespondedAt)
	c.AcceptedAt = clonePtr(c.AcceptedAt)
	c.ExpiredAt = clonePtr(c.ExpiredAt)
	return c
}
