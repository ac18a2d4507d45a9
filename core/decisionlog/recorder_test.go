package decisionlog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/rentmatch/core/events"
)

func TestRecorder_Run(t *testing.T) {
	s, err := NewJSONLStore(filepath.Join(t.TempDir(), "d.jsonl"))
	require.NoError(t, err)

	ch := make(chan events.BookingEvent, 2)
	ch <- events.BookingEvent{ID: "e1", Kind: events.KindBookingCreated, BookingID: "b1", OccurredAt: base}
	ch <- events.BookingEvent{ID: "e2", Kind: events.KindBookingCancelled, BookingID: "b1"}
	close(ch)

	require.NoError(t, Recorder{Store: s}.Run(context.Background(), ch))

	out, err := s.Query(context.Background(), Query{BookingID: "b1"})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, base, out[0].Timestamp)
	assert.False(t, out[1].Timestamp.IsZero())
}

func TestRecorder_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Recorder{Store: NopStore{}}.Run(ctx, make(chan events.BookingEvent)) }()
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("recorder did not stop")
	}
}
