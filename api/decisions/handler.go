package decisions

import (
	"crypto/subtle"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/kilianp07/rentmatch/core/decisionlog"
	"github.com/kilianp07/rentmatch/core/events"
	"github.com/kilianp07/rentmatch/pkg/export"
)

// NewHandler returns an HTTP handler exposing the decision log via GET /api/decisions.
// Requests must include an Authorization header with "Bearer <token>" when token is non-empty.
// format=csv switches the body from JSON to CSV.
func NewHandler(store decisionlog.Store, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token != "" && !authorized(r, token) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		format := r.URL.Query().Get("format")
		if format != "" && format != "json" && format != "csv" {
			http.Error(w, "unsupported format", http.StatusBadRequest)
			return
		}
		q, err := parseQuery(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		records, err := store.Query(r.Context(), q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if format == "csv" {
			w.Header().Set("Content-Type", "text/csv")
			w.Header().Set("Content-Disposition", `attachment; filename="decisions.csv"`)
			err = export.WriteCSV(w, records)
		} else {
			w.Header().Set("Content-Type", "application/json")
			err = export.WriteJSON(w, records)
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}

func authorized(r *http.Request, token string) bool {
	got := []byte(r.Header.Get("Authorization"))
	return subtle.ConstantTimeCompare(got, []byte("Bearer "+token)) == 1
}

// Register mounts the handler on r.
func Register(r *mux.Router, store decisionlog.Store, token string) {
	r.Handle("/api/decisions", NewHandler(store, token)).Methods(http.MethodGet)
}

func parseQuery(r *http.Request) (decisionlog.Query, error) {
	v := r.URL.Query()
	q := decisionlog.Query{
		BookingID: v.Get("booking_id"),
		OwnerID:   v.Get("owner_id"),
		Kind:      events.Kind(v.Get("kind")),
	}
	var err error
	if s := v.Get("start"); s != "" {
		if q.Start, err = time.Parse(time.RFC3339, s); err != nil {
			return q, err
		}
	}
	if s := v.Get("end"); s != "" {
		if q.End, err = time.Parse(time.RFC3339, s); err != nil {
			return q, err
		}
	}
	if s := v.Get("limit"); s != "" {
		if q.Limit, err = strconv.Atoi(s); err != nil {
			return q, err
		}
	}
	return q, nil
}
