package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/rentmatch/core/directory"
	"github.com/kilianp07/rentmatch/core/events"
	"github.com/kilianp07/rentmatch/core/logger"
	"github.com/kilianp07/rentmatch/core/model"
	"github.com/kilianp07/rentmatch/core/store"
)

// EventPublisher receives booking events once the producing transaction has
// committed. *eventbus.Bus[events.BookingEvent] satisfies it.
type EventPublisher interface {
	Publish(events.BookingEvent)
}

type nopPublisher struct{}

func (nopPublisher) Publish(events.BookingEvent) {}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option { return func(m *Manager) { m.log = logger.OrNop(l) } }

// WithPublisher sets where events go after commit.
func WithPublisher(p EventPublisher) Option {
	return func(m *Manager) {
		if p != nil {
			m.pub = p
		}
	}
}

// WithClock overrides the time source of every component.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
		m.pool.now = now
		m.resolver.now = now
		m.lifecycle.now = now
	}
}

// WithIDGenerator overrides booking and candidate id generation.
func WithIDGenerator(f func() string) Option {
	return func(m *Manager) {
		m.newID = f
		m.pool.newID = f
	}
}

// WithConfig applies dispatch settings.
func WithConfig(c Config) Option {
	return func(m *Manager) {
		m.cfg = c
		m.lifecycle.defaultArrival = time.Duration(c.DefaultArrivalMinutes) * time.Minute
		if m.lifecycle.defaultArrival <= 0 {
			m.lifecycle.defaultArrival = DefaultArrival
		}
	}
}

// Manager is the entry point of the engine. Every mutating call runs in one
// store transaction and publishes its events only after commit.
type Manager struct {
	store     store.Store
	dir       directory.Directory
	pool      *PoolBuilder
	disp      Dispatcher
	resolver  Resolver
	lifecycle Lifecycle
	cfg       Config
	pub       EventPublisher
	log       logger.Logger
	now       func() time.Time
	newID     func() string
}

// NewManager wires the engine over st and dir.
func NewManager(st store.Store, dir directory.Directory, opts ...Option) (*Manager, error) {
	if st == nil || dir == nil {
		return nil, fmt.Errorf("dispatch: nil store or directory provided to NewManager")
	}
	m := &Manager{
		store:     st,
		dir:       dir,
		pool:      NewPoolBuilder(dir),
		resolver:  NewResolver(),
		lifecycle: NewLifecycle(DefaultArrival),
		pub:       nopPublisher{},
		log:       logger.NopLogger{},
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, o := range opts {
		o(m)
	}
	return m, nil
}

// CreateBooking validates the request, prices it, builds the candidate pool
// and dispatches it. The booking, its candidates and the dispatch transition
// are persisted atomically.
func (m *Manager) CreateBooking(ctx context.Context, req model.BookingRequest) (model.Booking, error) {
	p, err := req.Parse()
	if err != nil {
		return model.Booking{}, err
	}
	eq, err := m.dir.GetEquipment(ctx, p.EquipmentID)
	if err != nil {
		return model.Booking{}, err
	}
	renter, err := m.dir.GetAccount(ctx, p.RenterID)
	if err != nil {
		return model.Booking{}, err
	}
	if renter.ID == eq.OwnerID {
		return model.Booking{}, &model.ValidationError{Field: "renter_id", Reason: "owns the equipment"}
	}
	if m.cfg.RequireRenterCapability && !renter.Has(model.CapabilityRenter) {
		return model.Booking{}, &model.ValidationError{Field: "renter_id", Reason: "is not a renter"}
	}

	q := Price(eq.Pricing, p)
	end := q.EndDate
	b := model.Booking{
		ID:          m.newID(),
		EquipmentID: eq.ID,
		RenterID:    renter.ID,
		OwnerID:     eq.OwnerID,
		Status:      model.BookingPending,
		Location:    p.Location,
		Address:     p.Address,
		StartDate:   p.StartDate,
		EndDate:     &end,
		Hours:       p.Hours,
		TotalCost:   q.Total,
		CreatedAt:   m.now(),
	}
	pool, err := m.pool.Build(ctx, b)
	if err != nil {
		return model.Booking{}, err
	}
	summary := Summarize(pool)

	var notified []model.Candidate
	err = m.store.InTx(ctx, func(tx store.Tx) error {
		if err := tx.InsertBooking(ctx, b); err != nil {
			return fmt.Errorf("insert booking: %w", err)
		}
		if len(pool) > 0 {
			if err := tx.InsertCandidates(ctx, pool); err != nil {
				return fmt.Errorf("insert candidates: %w", err)
			}
		}
		var err error
		b, notified, err = m.disp.Dispatch(ctx, tx, b.ID)
		return err
	})
	if err != nil {
		return model.Booking{}, err
	}

	m.log.Infof("booking %s created for %s: %d candidates, status %s", b.ID, b.EquipmentID, len(pool), b.Status)
	m.log.Debugw("candidate pool", map[string]any{
		"booking_id": b.ID, "size": summary.Size, "unknown": summary.Unknown,
		"min_km": summary.MinKm, "median_km": summary.MedianKm, "max_km": summary.MaxKm,
	})
	at := m.now()
	created := events.New(events.KindBookingCreated, b, at)
	created.Pool = &summary
	m.pub.Publish(created)
	dispatched := events.New(events.KindCandidatesDispatched, b, at).WithCandidates(notified)
	dispatched.Pool = &summary
	m.pub.Publish(dispatched)
	return b, nil
}

// Dispatch re-broadcasts an unconfirmed booking to its NOTIFIED candidates.
func (m *Manager) Dispatch(ctx context.Context, bookingID string) (model.Booking, error) {
	var (
		b        model.Booking
		notified []model.Candidate
	)
	err := m.store.InTx(ctx, func(tx store.Tx) error {
		var err error
		b, notified, err = m.disp.Dispatch(ctx, tx, bookingID)
		return err
	})
	if err != nil {
		return model.Booking{}, err
	}
	m.log.Infof("booking %s redispatched to %d candidates", b.ID, len(notified))
	ev := events.New(events.KindCandidatesDispatched, b, m.now()).WithCandidates(notified)
	summary := Summarize(notified)
	ev.Pool = &summary
	m.pub.Publish(ev)
	return b, nil
}

// Accept resolves an owner's acceptance. Exactly one concurrent caller per
// booking succeeds; the others get model.ErrAlreadyConfirmed and must not retry.
func (m *Manager) Accept(ctx context.Context, candidateID, callerOwnerID string) (model.Booking, error) {
	var res Acceptance
	err := m.store.InTx(ctx, func(tx store.Tx) error {
		var err error
		res, err = m.resolver.Accept(ctx, tx, candidateID, callerOwnerID)
		return err
	})
	if err != nil {
		m.log.Debugf("accept %s by %q: %v", candidateID, callerOwnerID, err)
		return model.Booking{}, err
	}
	m.log.Infof("booking %s confirmed by owner %s, %d candidates expired", res.Booking.ID, res.Candidate.OwnerID, len(res.Expired))

	at := m.now()
	confirmed := events.New(events.KindBookingConfirmed, res.Booking, at).WithCandidates([]model.Candidate{res.Candidate})
	if res.Candidate.AcceptedAt != nil {
		confirmed.ResponseTime = res.Candidate.AcceptedAt.Sub(res.Candidate.InvitedAt)
	}
	m.pub.Publish(confirmed)
	if len(res.Expired) > 0 {
		m.pub.Publish(events.New(events.KindCandidateExpired, res.Booking, at).WithCandidates(res.Expired))
	}
	return res.Booking, nil
}

// Reject records an owner's refusal.
func (m *Manager) Reject(ctx context.Context, candidateID, callerOwnerID string) (model.Candidate, error) {
	var c model.Candidate
	err := m.store.InTx(ctx, func(tx store.Tx) error {
		var err error
		c, err = m.resolver.Reject(ctx, tx, candidateID, callerOwnerID)
		return err
	})
	if err != nil {
		return model.Candidate{}, err
	}
	b, err := m.store.GetBooking(ctx, c.BookingID)
	if err != nil {
		return c, err
	}
	m.log.Infof("candidate %s rejected booking %s", c.OwnerID, c.BookingID)
	ev := events.New(events.KindCandidateRejected, b, m.now()).WithCandidates([]model.Candidate{c})
	if c.RespondedAt != nil {
		ev.ResponseTime = c.RespondedAt.Sub(c.InvitedAt)
	}
	m.pub.Publish(ev)
	return c, nil
}

// Cancel withdraws an unconfirmed booking on behalf of its renter. Owners
// whose invitation is closed by the cancellation are not notified.
func (m *Manager) Cancel(ctx context.Context, bookingID, callerID string) (model.Booking, error) {
	var (
		b       model.Booking
		expired []model.Candidate
	)
	err := m.store.InTx(ctx, func(tx store.Tx) error {
		var err error
		b, expired, err = m.lifecycle.Cancel(ctx, tx, bookingID, callerID)
		return err
	})
	if err != nil {
		return model.Booking{}, err
	}
	m.log.Infof("booking %s cancelled, %d invitations closed", b.ID, len(expired))
	m.pub.Publish(events.New(events.KindBookingCancelled, b, m.now()))
	return b, nil
}

// Start marks a confirmed booking as ACTIVE.
func (m *Manager) Start(ctx context.Context, bookingID string) (model.Booking, error) {
	return m.statusChange(ctx, bookingID, "", func(tx store.Tx) (model.Booking, error) {
		return m.lifecycle.Start(ctx, tx, bookingID)
	})
}

// Complete closes a confirmed or active booking.
func (m *Manager) Complete(ctx context.Context, bookingID string) (model.Booking, error) {
	return m.statusChange(ctx, bookingID, "", func(tx store.Tx) (model.Booking, error) {
		return m.lifecycle.Complete(ctx, tx, bookingID)
	})
}

// UpdateArrivalEstimate records the winning owner's arrival estimate.
func (m *Manager) UpdateArrivalEstimate(ctx context.Context, bookingID, estimate string) (model.Booking, error) {
	return m.statusChange(ctx, bookingID, estimate, func(tx store.Tx) (model.Booking, error) {
		return m.lifecycle.UpdateArrival(ctx, tx, bookingID, estimate)
	})
}

func (m *Manager) statusChange(ctx context.Context, bookingID, detail string, fn func(store.Tx) (model.Booking, error)) (model.Booking, error) {
	var b model.Booking
	err := m.store.InTx(ctx, func(tx store.Tx) error {
		var err error
		b, err = fn(tx)
		return err
	})
	if err != nil {
		return model.Booking{}, err
	}
	m.log.Infof("booking %s is %s", b.ID, b.Status)
	ev := events.New(events.KindStatusChanged, b, m.now())
	ev.Detail = detail
	m.pub.Publish(ev)
	return b, nil
}

// GetBooking returns one booking.
func (m *Manager) GetBooking(ctx context.Context, id string) (model.Booking, error) {
	return m.store.GetBooking(ctx, id)
}

// BookingCandidates returns the candidates of a booking in ranking order.
func (m *Manager) BookingCandidates(ctx context.Context, bookingID string) ([]model.Candidate, error) {
	if _, err := m.store.GetBooking(ctx, bookingID); err != nil {
		return nil, err
	}
	cs, err := m.store.ListCandidates(ctx, store.CandidateFilter{BookingID: bookingID})
	if err != nil {
		return nil, err
	}
	SortCandidates(cs)
	return cs, nil
}

// ListCandidates returns an owner's invitations, newest first. An empty
// status returns all of them.
func (m *Manager) ListCandidates(ctx context.Context, ownerID, status string) ([]model.Candidate, error) {
	if ownerID == "" {
		return nil, &model.ValidationError{Field: "owner_id", Reason: "is required"}
	}
	f := store.CandidateFilter{OwnerID: ownerID}
	if status != "" {
		st, ok := model.ParseCandidateStatus(status)
		if !ok {
			return nil, &model.ValidationError{Field: "status", Reason: fmt.Sprintf("unknown candidate status %q", status)}
		}
		f.Status = st
	}
	return m.store.ListCandidates(ctx, f)
}

// ListBookings returns the bookings an account takes part in, newest first.
func (m *Manager) ListBookings(ctx context.Context, accountID, role, status string) ([]model.Booking, error) {
	if accountID == "" {
		return nil, &model.ValidationError{Field: "account_id", Reason: "is required"}
	}
	r, ok := model.ParseRole(role)
	if !ok {
		return nil, &model.ValidationError{Field: "role", Reason: fmt.Sprintf("unknown role %q", role)}
	}
	f := store.BookingFilter{AccountID: accountID, Role: r}
	if status != "" {
		st, ok := model.ParseBookingStatus(status)
		if !ok {
			return nil, &model.ValidationError{Field: "status", Reason: fmt.Sprintf("unknown booking status %q", status)}
		}
		f.Status = st
	}
	return m.store.ListBookings(ctx, f)
}
