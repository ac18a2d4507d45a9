package dispatch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/rentmatch/core/model"
	"github.com/kilianp07/rentmatch/infra/memory"
)

func TestPoolBuilderExcludesOwnerAndRenter(t *testing.T) {
	dir := memory.NewDirectory()
	dir.PutAccount(ownerAccount("eq-owner", nil))
	dir.PutAccount(ownerAccount("renter", nil))
	dir.PutAccount(ownerAccount("o1", nil))
	dir.PutAccount(model.Account{ID: "plain", Capabilities: []model.Capability{model.CapabilityRenter}})

	pb := NewPoolBuilder(dir)
	pool, err := pb.Build(context.Background(), model.Booking{ID: "b", OwnerID: "eq-owner", RenterID: "renter"})
	require.NoError(t, err)
	require.Len(t, pool, 1)
	assert.Equal(t, "o1", pool[0].OwnerID)
	assert.Equal(t, model.CandidateNotified, pool[0].Status)
	assert.Equal(t, model.UnknownDistance, pool[0].DistanceKm)
	assert.NotEmpty(t, pool[0].ID)
}

func TestPoolBuilderRanking(t *testing.T) {
	dir := memory.NewDirectory()
	dir.PutAccount(ownerAccount("far", geo(48.85, 2.35)))
	dir.PutAccount(ownerAccount("near", geo(45.1, 4.0)))
	dir.PutAccount(ownerAccount("b-nowhere", nil))
	dir.PutAccount(ownerAccount("a-nowhere", nil))
	dir.PutAccount(ownerAccount("same", geo(45.0, 4.0)))

	pool, err := NewPoolBuilder(dir).Build(context.Background(), model.Booking{ID: "b", Location: geo(45.0, 4.0)})
	require.NoError(t, err)
	var order []string
	for _, c := range pool {
		order = append(order, c.OwnerID)
	}
	assert.Equal(t, []string{"a-nowhere", "b-nowhere", "same", "near", "far"}, order)
	for i := 1; i < len(pool); i++ {
		if pool[i-1].DistanceKnown() && pool[i].DistanceKnown() {
			assert.LessOrEqual(t, pool[i-1].DistanceKm, pool[i].DistanceKm)
		}
	}
}

func TestPoolBuilderNoLocationMeansAllUnknown(t *testing.T) {
	dir := memory.NewDirectory()
	dir.PutAccount(ownerAccount("o1", geo(1, 1)))
	pool, err := NewPoolBuilder(dir).Build(context.Background(), model.Booking{ID: "b"})
	require.NoError(t, err)
	require.Len(t, pool, 1)
	assert.False(t, pool[0].DistanceKnown())
}

func TestPoolBuilderEmptyDirectory(t *testing.T) {
	pool, err := NewPoolBuilder(memory.NewDirectory()).Build(context.Background(), model.Booking{ID: "b"})
	require.NoError(t, err)
	assert.Empty(t, pool)
}

func TestSummarize(t *testing.T) {
	cs := []model.Candidate{
		{DistanceKm: model.UnknownDistance},
		{DistanceKm: 1},
		{DistanceKm: 3},
		{DistanceKm: 8},
	}
	s := Summarize(cs)
	assert.Equal(t, 4, s.Size)
	assert.Equal(t, 1, s.Unknown)
	assert.Equal(t, 1.0, s.MinKm)
	assert.Equal(t, 8.0, s.MaxKm)
	assert.InDelta(t, 4.0, s.MeanKm, 1e-9)
	assert.Equal(t, 3.0, s.MedianKm)

	empty := Summarize(nil)
	assert.Equal(t, model.PoolSummary{}, empty)
}
