package dispatch

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kilianp07/rentmatch/core/events"
	"github.com/kilianp07/rentmatch/core/model"
	"github.com/kilianp07/rentmatch/infra/memory"
)

var testNow = time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)

type recorder struct {
	mu     sync.Mutex
	events []events.BookingEvent
}

func (r *recorder) Publish(e events.BookingEvent) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *recorder) kinds() []events.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.Kind, len(r.events))
	for i, e := range r.events {
		out[i] = e.Kind
	}
	return out
}

func (r *recorder) last(kind events.Kind) (events.BookingEvent, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Kind == kind {
			return r.events[i], true
		}
	}
	return events.BookingEvent{}, false
}

func seqIDs(prefix string) func() string {
	var n atomic.Int64
	return func() string { return fmt.Sprintf("%s-%d", prefix, n.Add(1)) }
}

func geo(lat, lon float64) *model.GeoPoint { return &model.GeoPoint{Latitude: lat, Longitude: lon} }

func ownerAccount(id string, loc *model.GeoPoint) model.Account {
	return model.Account{ID: id, Name: id, Location: loc, Capabilities: []model.Capability{model.CapabilityOwner}}
}

type harness struct {
	store *memory.Store
	dir   *memory.Directory
	rec   *recorder
	mgr   *Manager
}

// newHarness seeds an equipment owned by "eq-owner" and a renter "renter".
func newHarness(t *testing.T, owners ...model.Account) *harness {
	t.Helper()
	dir := memory.NewDirectory()
	dir.PutAccount(ownerAccount("eq-owner", geo(45.0, 4.0)))
	dir.PutAccount(model.Account{ID: "renter", Capabilities: []model.Capability{model.CapabilityRenter, model.CapabilityOwner}})
	for _, o := range owners {
		dir.PutAccount(o)
	}
	hourly := 12.5
	dir.PutEquipment(model.Equipment{ID: "tractor", OwnerID: "eq-owner", Name: "Tractor",
		Pricing: model.Pricing{DailyPrice: 240, HourlyPrice: &hourly}})

	st := memory.NewStore()
	rec := &recorder{}
	mgr, err := NewManager(st, dir,
		WithPublisher(rec),
		WithClock(func() time.Time { return testNow }),
		WithIDGenerator(seqIDs("id")),
	)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return &harness{store: st, dir: dir, rec: rec, mgr: mgr}
}

func (h *harness) create(t *testing.T) model.Booking {
	t.Helper()
	hours := 5
	lat, lon := 45.0, 4.0
	b, err := h.mgr.CreateBooking(context.Background(), model.BookingRequest{
		EquipmentID: "tractor", RenterID: "renter", StartDate: "2026-06-02",
		Hours: &hours, Latitude: &lat, Longitude: &lon,
	})
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}
	return b
}

func (h *harness) candidates(t *testing.T, bookingID string) []model.Candidate {
	t.Helper()
	cs, err := h.mgr.BookingCandidates(context.Background(), bookingID)
	if err != nil {
		t.Fatalf("candidates: %v", err)
	}
	return cs
}
