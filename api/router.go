// Package api assembles the HTTP surface of the service.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/kilianp07/rentmatch/api/bookings"
	"github.com/kilianp07/rentmatch/api/decisions"
	"github.com/kilianp07/rentmatch/core/decisionlog"
)

// NewRouter mounts the booking endpoints, the decision log and /healthz.
func NewRouter(h *bookings.Handler, log decisionlog.Store, token string) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)
	if log != nil {
		decisions.Register(r, log, token)
	}
	h.Register(r)
	return r
}
