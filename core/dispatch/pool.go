package dispatch

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/rentmatch/core/directory"
	"github.com/kilianp07/rentmatch/core/model"
)

// PoolBuilder turns the owner directory into the ranked candidate list of a booking.
type PoolBuilder struct {
	dir   directory.AccountDirectory
	now   func() time.Time
	newID func() string
}

// NewPoolBuilder returns a builder reading owners from dir.
func NewPoolBuilder(dir directory.AccountDirectory) *PoolBuilder {
	return &PoolBuilder{dir: dir, now: time.Now, newID: uuid.NewString}
}

// Build returns one NOTIFIED candidate per eligible owner. The equipment owner
// and the renter are never candidates. Owners whose distance is unknown come
// first, then ascending distance; ties are broken by owner id.
func (p *PoolBuilder) Build(ctx context.Context, b model.Booking) ([]model.Candidate, error) {
	owners, err := p.dir.ListOwners(ctx)
	if err != nil {
		return nil, fmt.Errorf("list owners: %w", err)
	}
	now := p.now()
	seen := make(map[string]bool, len(owners))
	pool := make([]model.Candidate, 0, len(owners))
	for _, o := range owners {
		if o.ID == b.OwnerID || o.ID == b.RenterID || seen[o.ID] {
			continue
		}
		seen[o.ID] = true
		pool = append(pool, model.Candidate{
			ID:         p.newID(),
			BookingID:  b.ID,
			OwnerID:    o.ID,
			DistanceKm: model.DistanceKm(b.Location, o.Location),
			Status:     model.CandidateNotified,
			InvitedAt:  now,
		})
	}
	SortCandidates(pool)
	return pool, nil
}

// SortCandidates orders cs in ranking order, in place.
func SortCandidates(cs []model.Candidate) {
	sort.SliceStable(cs, func(i, j int) bool {
		a, b := cs[i], cs[j]
		if a.DistanceKnown() != b.DistanceKnown() {
			return !a.DistanceKnown()
		}
		if a.DistanceKm != b.DistanceKm {
			return a.DistanceKm < b.DistanceKm
		}
		return a.OwnerID < b.OwnerID
	})
}
