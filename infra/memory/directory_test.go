package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/rentmatch/core/model"
)

const fixtureYAML = `
accounts:
  - id: alice
    name: Alice
    latitude: 45.76
    longitude: 4.83
    capabilities: [OWNER, RENTER]
  - id: bob
    name: Bob
    capabilities: [owner]
  - id: carol
    name: Carol
    capabilities: [RENTER]
equipment:
  - id: tractor
    owner_id: alice
    name: Tractor
    daily_price: 240
    hourly_price: 15
`

func TestLoadFixture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fixtureYAML), 0o644))

	d, err := LoadFixture(path)
	require.NoError(t, err)
	ctx := context.Background()

	owners, err := d.ListOwners(ctx)
	require.NoError(t, err)
	require.Len(t, owners, 2)
	assert.Equal(t, "alice", owners[0].ID)
	require.NotNil(t, owners[0].Location)
	assert.Nil(t, owners[1].Location)

	eq, err := d.GetEquipment(ctx, "tractor")
	require.NoError(t, err)
	require.NotNil(t, eq.Pricing.HourlyPrice)
	assert.Equal(t, 15.0, *eq.Pricing.HourlyPrice)

	_, err = d.GetAccount(ctx, "nobody")
	assert.ErrorIs(t, err, model.ErrNotFound)
	_, err = d.GetEquipment(ctx, "plough")
	assert.ErrorIs(t, err, model.ErrEquipmentNotFound)
}

func TestLoadFixtureRejectsHalfLocation(t *testing.T) {
	lat := 1.0
	err := NewDirectory().Seed(Fixture{Accounts: []FixtureAccount{{ID: "x", Latitude: &lat}}})
	assert.Error(t, err)
	_, err = LoadFixture("fixture.toml")
	assert.Error(t, err)
}
