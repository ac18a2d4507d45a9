// Package export renders decision log records for download.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/kilianp07/rentmatch/core/decisionlog"
)

// CSVHeader is the first row written by WriteCSV.
var CSVHeader = []string{"timestamp", "booking_id", "kind", "status", "candidate_ids", "owner_ids", "response_ms", "detail"}

// WriteJSON writes the records to w as a JSON array.
func WriteJSON(w io.Writer, records []decisionlog.Record) error {
	if records == nil {
		records = []decisionlog.Record{}
	}
	return json.NewEncoder(w).Encode(records)
}

// WriteCSV writes one row per record. Id lists are joined with ';'.
func WriteCSV(w io.Writer, records []decisionlog.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, r := range records {
		ev := r.Event
		rec := []string{
			r.Timestamp.UTC().Format(time.RFC3339Nano),
			ev.BookingID,
			string(ev.Kind),
			string(ev.Status),
			strings.Join(ev.CandidateIDs, ";"),
			strings.Join(ev.OwnerIDs, ";"),
			strconv.FormatInt(ev.ResponseTime.Milliseconds(), 10),
			ev.Detail,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
