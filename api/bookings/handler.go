//go:generate mockgen -source ./handler.go -destination=./mocks/manager.go -package=mock_bookings
package bookings

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/kilianp07/rentmatch/core/logger"
	"github.com/kilianp07/rentmatch/core/model"
	"github.com/kilianp07/rentmatch/core/monitoring"
)

// CallerHeader carries the id of the account acting on a booking or candidate.
const CallerHeader = "X-Account-ID"

// Manager is the booking engine as seen by the HTTP layer.
type Manager interface {
	CreateBooking(ctx context.Context, req model.BookingRequest) (model.Booking, error)
	GetBooking(ctx context.Context, id string) (model.Booking, error)
	BookingCandidates(ctx context.Context, bookingID string) ([]model.Candidate, error)
	ListBookings(ctx context.Context, accountID, role, status string) ([]model.Booking, error)
	Dispatch(ctx context.Context, bookingID string) (model.Booking, error)
	Cancel(ctx context.Context, bookingID, callerID string) (model.Booking, error)
	Start(ctx context.Context, bookingID string) (model.Booking, error)
	Complete(ctx context.Context, bookingID string) (model.Booking, error)
	UpdateArrivalEstimate(ctx context.Context, bookingID, estimate string) (model.Booking, error)
	Accept(ctx context.Context, candidateID, callerOwnerID string) (model.Booking, error)
	Reject(ctx context.Context, candidateID, callerOwnerID string) (model.Candidate, error)
	ListCandidates(ctx context.Context, ownerID, status string) ([]model.Candidate, error)
}

// Handler serves the booking and candidate endpoints.
type Handler struct {
	mgr Manager
	log logger.Logger
	mon monitoring.Monitor
}

func NewHandler(mgr Manager, log logger.Logger, mon monitoring.Monitor) *Handler {
	return &Handler{mgr: mgr, log: logger.OrNop(log), mon: monitoring.OrNop(mon)}
}

// Register mounts the routes on r.
func (h *Handler) Register(r *mux.Router) {
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/bookings", h.handleCreate).Methods(http.MethodPost)
	api.HandleFunc("/bookings", h.handleList).Methods(http.MethodGet)
	api.HandleFunc("/bookings/{id}", h.handleGet).Methods(http.MethodGet)
	api.HandleFunc("/bookings/{id}/candidates", h.handleBookingCandidates).Methods(http.MethodGet)
	api.HandleFunc("/bookings/{id}/dispatch", h.handleDispatch).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{id}/cancel", h.handleCancel).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{id}/start", h.handleStart).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{id}/complete", h.handleComplete).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{id}/arrival", h.handleArrival).Methods(http.MethodPut)
	api.HandleFunc("/candidates/{id}/accept", h.handleAccept).Methods(http.MethodPost)
	api.HandleFunc("/candidates/{id}/reject", h.handleReject).Methods(http.MethodPost)
	api.HandleFunc("/owners/{id}/candidates", h.handleOwnerCandidates).Methods(http.MethodGet)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req model.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid request body")
		return
	}
	b, err := h.mgr.CreateBooking(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	bs, err := h.mgr.ListBookings(r.Context(), q.Get("account_id"), q.Get("role"), q.Get("status"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(bs))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	h.booking(w, r, h.mgr.GetBooking)
}

func (h *Handler) handleBookingCandidates(w http.ResponseWriter, r *http.Request) {
	cs, err := h.mgr.BookingCandidates(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(cs))
}

func (h *Handler) handleDispatch(w http.ResponseWriter, r *http.Request) {
	h.booking(w, r, h.mgr.Dispatch)
}

// handleCancel checks the caller against the renter only when the header is set.
func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	caller := r.Header.Get(CallerHeader)
	h.booking(w, r, func(ctx context.Context, id string) (model.Booking, error) {
		return h.mgr.Cancel(ctx, id, caller)
	})
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	h.booking(w, r, h.mgr.Start)
}

func (h *Handler) handleComplete(w http.ResponseWriter, r *http.Request) {
	h.booking(w, r, h.mgr.Complete)
}

type arrivalRequest struct {
	Estimate string `json:"estimate"`
}

func (h *Handler) handleArrival(w http.ResponseWriter, r *http.Request) {
	var req arrivalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid request body")
		return
	}
	h.booking(w, r, func(ctx context.Context, id string) (model.Booking, error) {
		return h.mgr.UpdateArrivalEstimate(ctx, id, req.Estimate)
	})
}

func (h *Handler) handleAccept(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}
	h.booking(w, r, func(ctx context.Context, id string) (model.Booking, error) {
		return h.mgr.Accept(ctx, id, caller)
	})
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerID(w, r)
	if !ok {
		return
	}
	c, err := h.mgr.Reject(r.Context(), mux.Vars(r)["id"], caller)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) handleOwnerCandidates(w http.ResponseWriter, r *http.Request) {
	cs, err := h.mgr.ListCandidates(r.Context(), mux.Vars(r)["id"], r.URL.Query().Get("status"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(cs))
}

func (h *Handler) booking(w http.ResponseWriter, r *http.Request, fn func(context.Context, string) (model.Booking, error)) {
	b, err := fn(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		h.log.Errorf("%s %s: %v", r.Method, r.URL.Path, err)
		h.mon.CaptureException(err, map[string]string{"route": r.URL.Path, "method": r.Method})
		writeError(w, status, CodeInternal, "internal error")
		return
	}
	writeError(w, status, CodeFor(err), err.Error())
}

// Error codes carried in the "code" field of error bodies. Clients must not
// retry an accept answered with CodeAlreadyConfirmed.
const (
	CodeNotFound          = "not_found"
	CodeValidation        = "validation"
	CodeForbidden         = "forbidden"
	CodeAlreadyConfirmed  = "already_confirmed"
	CodeInvalidTransition = "invalid_transition"
	CodeBadRequest        = "bad_request"
	CodeInternal          = "internal"
)

// CodeFor maps engine errors to stable error codes.
func CodeFor(err error) string {
	switch {
	case errors.Is(err, model.ErrNotFound):
		return CodeNotFound
	case errors.Is(err, model.ErrValidation):
		return CodeValidation
	case errors.Is(err, model.ErrForbidden):
		return CodeForbidden
	case errors.Is(err, model.ErrAlreadyConfirmed):
		return CodeAlreadyConfirmed
	case errors.Is(err, model.ErrInvalidTransition):
		return CodeInvalidTransition
	default:
		return CodeInternal
	}
}

// StatusFor maps engine errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, model.ErrAlreadyConfirmed), errors.Is(err, model.ErrInvalidTransition):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func callerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.Header.Get(CallerHeader)
	if id == "" {
		writeError(w, http.StatusBadRequest, CodeBadRequest, CallerHeader+" header is required")
		return "", false
	}
	return id, true
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, map[string]string{"error": msg, "code": code})
}
