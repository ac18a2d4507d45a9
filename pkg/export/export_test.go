package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/rentmatch/core/decisionlog"
	"github.com/kilianp07/rentmatch/core/events"
	"github.com/kilianp07/rentmatch/core/model"
)

func sample() []decisionlog.Record {
	ts := time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)
	return []decisionlog.Record{
		{Timestamp: ts, Event: events.BookingEvent{
			Kind: events.KindCandidatesDispatched, BookingID: "b1", Status: model.BookingAwaitingOwner,
			CandidateIDs: []string{"c1", "c2"}, OwnerIDs: []string{"o1", "o2"},
		}},
		{Timestamp: ts.Add(90 * time.Second), Event: events.BookingEvent{
			Kind: events.KindBookingConfirmed, BookingID: "b1", Status: model.BookingConfirmed,
			CandidateIDs: []string{"c2"}, OwnerIDs: []string{"o2"}, ResponseTime: 90 * time.Second,
		}},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sample()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, CSVHeader, rows[0])
	assert.Equal(t, []string{"2026-05-04T09:30:00Z", "b1", "candidates_dispatched", "AWAITING_OWNER", "c1;c2", "o1;o2", "0", ""}, rows[1])
	assert.Equal(t, "90000", rows[2][6])
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, nil))
	assert.JSONEq(t, "[]", buf.String())

	buf.Reset()
	require.NoError(t, WriteJSON(&buf, sample()))
	var back []decisionlog.Record
	require.NoError(t, json.Unmarshal(buf.Bytes(), &back))
	require.Len(t, back, 2)
	assert.Equal(t, events.KindBookingConfirmed, back[1].Event.Kind)
}
