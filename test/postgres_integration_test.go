//go:build integration

package test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/rentmatch/core/dispatch"
	"github.com/kilianp07/rentmatch/core/model"
	"github.com/kilianp07/rentmatch/core/store"
	"github.com/kilianp07/rentmatch/infra/postgres"
	"github.com/kilianp07/rentmatch/test/util"
)

type pgEnv struct {
	store *postgres.Store
	dir   *postgres.Directory
	mgr   *dispatch.Manager
}

func setupPostgres(t *testing.T, owners int) pgEnv {
	t.Helper()
	ctx := context.Background()
	dsn, cleanup, err := util.StartPostgres(ctx)
	if err != nil {
		t.Skipf("postgres container unavailable: %v", err)
	}
	t.Cleanup(cleanup)

	pool, err := postgres.Connect(ctx, postgres.Config{DSN: dsn, MaxConns: 32})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	applied, err := postgres.Migrate(ctx, pool)
	require.NoError(t, err)
	require.NotEmpty(t, applied)
	again, err := postgres.Migrate(ctx, pool)
	require.NoError(t, err)
	assert.Empty(t, again, "migrations are applied once")

	site := model.GeoPoint{Latitude: 48.85, Longitude: 2.35}
	accounts := []model.Account{
		{ID: "lender", Capabilities: []model.Capability{model.CapabilityOwner}},
		{ID: "renter", Location: &site, Capabilities: []model.Capability{model.CapabilityRenter}},
	}
	for i := 0; i < owners; i++ {
		a := model.Account{ID: ownerID(i), Capabilities: []model.Capability{model.CapabilityOwner}}
		if i%2 == 0 {
			a.Location = &model.GeoPoint{Latitude: site.Latitude + float64(i)*0.01, Longitude: site.Longitude}
		}
		accounts = append(accounts, a)
	}
	hourly := 20.0
	equipment := []model.Equipment{{ID: "loader", OwnerID: "lender", Pricing: model.Pricing{DailyPrice: 400, HourlyPrice: &hourly}}}
	dir := postgres.NewDirectory(pool)
	require.NoError(t, dir.Seed(ctx, accounts, equipment))

	st := postgres.NewStore(pool)
	mgr, err := dispatch.NewManager(st, dir)
	require.NoError(t, err)
	return pgEnv{store: st, dir: dir, mgr: mgr}
}

func ownerID(i int) string { return "owner-" + string(rune('a'+i)) }

func TestPostgres_ConcurrentAcceptsHaveOneWinner(t *testing.T) {
	const owners = 12
	env := setupPostgres(t, owners)
	ctx := context.Background()

	hours := 6
	b, err := env.mgr.CreateBooking(ctx, model.BookingRequest{
		EquipmentID: "loader", RenterID: "renter", StartDate: "2026-06-02", Hours: &hours,
		Latitude: ptr(48.85), Longitude: ptr(2.35),
	})
	require.NoError(t, err)
	assert.Equal(t, model.BookingAwaitingOwner, b.Status)
	assert.Equal(t, 120.0, b.TotalCost)

	cs, err := env.mgr.BookingCandidates(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, cs, owners)
	// Unknown distances first, then ascending distance.
	assert.False(t, cs[0].DistanceKnown())
	assert.True(t, cs[len(cs)-1].DistanceKnown())

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners []string
		losers  int
	)
	start := make(chan struct{})
	for _, c := range cs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := env.mgr.Accept(ctx, c.ID, c.OwnerID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				winners = append(winners, c.OwnerID)
			case errors.Is(err, model.ErrAlreadyConfirmed):
				losers++
			default:
				t.Errorf("unexpected accept error: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	require.Len(t, winners, 1)
	assert.Equal(t, owners-1, losers)

	final, err := env.mgr.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingConfirmed, final.Status)
	assert.Equal(t, winners[0], final.AcceptedOwnerID)
	require.NotNil(t, final.ConfirmedAt)

	after, err := env.mgr.BookingCandidates(ctx, b.ID)
	require.NoError(t, err)
	accepted := 0
	for _, c := range after {
		switch c.Status {
		case model.CandidateAccepted:
			accepted++
			assert.Equal(t, winners[0], c.OwnerID)
		case model.CandidateExpired:
			assert.NotNil(t, c.ExpiredAt)
		default:
			t.Errorf("candidate %s left in %s", c.ID, c.Status)
		}
	}
	assert.Equal(t, 1, accepted)
}

func TestPostgres_RejectCancelAndListings(t *testing.T) {
	env := setupPostgres(t, 3)
	ctx := context.Background()

	b, err := env.mgr.CreateBooking(ctx, model.BookingRequest{EquipmentID: "loader", RenterID: "renter", StartDate: "2026-06-02", EndDate: "2026-06-04"})
	require.NoError(t, err)
	assert.Equal(t, 800.0, b.TotalCost)

	mine, err := env.mgr.ListCandidates(ctx, ownerID(0), "NOTIFIED")
	require.NoError(t, err)
	require.Len(t, mine, 1)

	_, err = env.mgr.Reject(ctx, mine[0].ID, ownerID(1))
	assert.ErrorIs(t, err, model.ErrForbidden)
	rejected, err := env.mgr.Reject(ctx, mine[0].ID, ownerID(0))
	require.NoError(t, err)
	assert.Equal(t, model.CandidateRejected, rejected.Status)
	_, err = env.mgr.Accept(ctx, mine[0].ID, ownerID(0))
	assert.ErrorIs(t, err, model.ErrInvalidTransition)

	_, err = env.mgr.Cancel(ctx, b.ID, "lender")
	assert.ErrorIs(t, err, model.ErrForbidden)
	cancelled, err := env.mgr.Cancel(ctx, b.ID, "renter")
	require.NoError(t, err)
	assert.Equal(t, model.BookingCancelled, cancelled.Status)

	open, err := env.mgr.ListCandidates(ctx, ownerID(2), "NOTIFIED")
	require.NoError(t, err)
	assert.Empty(t, open)

	time.Sleep(5 * time.Millisecond)
	second, err := env.mgr.CreateBooking(ctx, model.BookingRequest{EquipmentID: "loader", RenterID: "renter", StartDate: "2026-07-01"})
	require.NoError(t, err)
	list, err := env.mgr.ListBookings(ctx, "renter", "renter", "")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "newest first")

	owned, err := env.mgr.ListBookings(ctx, "lender", "owner", "CANCELLED")
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, b.ID, owned[0].ID)
}

func TestPostgres_DuplicateCandidate(t *testing.T) {
	env := setupPostgres(t, 2)
	ctx := context.Background()
	b, err := env.mgr.CreateBooking(ctx, model.BookingRequest{EquipmentID: "loader", RenterID: "renter", StartDate: "2026-06-02"})
	require.NoError(t, err)

	err = env.store.InTx(ctx, func(tx store.Tx) error {
		return tx.InsertCandidates(ctx, []model.Candidate{{
			ID: "dup", BookingID: b.ID, OwnerID: ownerID(0), DistanceKm: model.UnknownDistance,
			Status: model.CandidateNotified, InvitedAt: time.Now().UTC(),
		}})
	})
	assert.ErrorIs(t, err, store.ErrDuplicate)

	// The failed transaction left nothing behind.
	_, err = env.store.GetCandidate(ctx, "dup")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func ptr(f float64) *float64 { return &f }
