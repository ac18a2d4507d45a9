package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulate(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, simulate(context.Background(), &out, 6, 5, 0.3))
	s := out.String()
	assert.Contains(t, s, "6 candidates")
	assert.Contains(t, s, "winners: 1, already confirmed: 5")
	assert.Contains(t, s, "final status CONFIRMED")
	assert.Equal(t, 1, strings.Count(s, "winner: "))
}

func TestSimulate_RejectsZeroOwners(t *testing.T) {
	assert.Error(t, simulate(context.Background(), &bytes.Buffer{}, 0, 0, 0))
}
