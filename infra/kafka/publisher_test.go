package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/rentmatch/core/events"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { f.closed = true; return nil }

func TestPublishKeysByBooking(t *testing.T) {
	w := &fakeWriter{}
	p := newPublisher(w, "bookings")
	ev := events.BookingEvent{ID: "e1", Kind: events.KindBookingConfirmed, BookingID: "b42", OwnerIDs: []string{"o1"}}
	require.NoError(t, p.Publish(context.Background(), ev))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "b42", string(w.msgs[0].Key))
	assert.Equal(t, "kind", w.msgs[0].Headers[1].Key)
	assert.Equal(t, "booking_confirmed", string(w.msgs[0].Headers[1].Value))

	var decoded events.BookingEvent
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &decoded))
	assert.Equal(t, []string{"o1"}, decoded.OwnerIDs)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestPublishWrapsWriterError(t *testing.T) {
	boom := errors.New("leader not available")
	p := newPublisher(&fakeWriter{err: boom}, "bookings")
	err := p.Publish(context.Background(), events.BookingEvent{BookingID: "b"})
	assert.ErrorIs(t, err, boom)
}

func TestNewPublisherRequiresBrokers(t *testing.T) {
	_, err := NewPublisher(Config{Topic: "x"})
	assert.Error(t, err)
	p, err := NewPublisher(Config{Brokers: []string{"localhost:9092"}, Topic: "bookings"})
	require.NoError(t, err)
	assert.NoError(t, p.Close())
}
