package bookings

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	mock_bookings "github.com/kilianp07/rentmatch/api/bookings/mocks"
	"github.com/kilianp07/rentmatch/core/model"
)

type captureMonitor struct{ errs []error }

func (c *captureMonitor) CaptureException(err error, _ map[string]string) { c.errs = append(c.errs, err) }
func (c *captureMonitor) Flush(time.Duration)                              {}

func newRouter(t *testing.T) (*mock_bookings.MockManager, *captureMonitor, *mux.Router) {
	t.Helper()
	ctrl := gomock.NewController(t)
	mgr := mock_bookings.NewMockManager(ctrl)
	mon := &captureMonitor{}
	r := mux.NewRouter()
	NewHandler(mgr, nil, mon).Register(r)
	return mgr, mon, r
}

func do(r http.Handler, method, path, caller string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if caller != "" {
		req.Header.Set(CallerHeader, caller)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestHandleCreateBooking(t *testing.T) {
	mgr, _, r := newRouter(t)
	hours := 4

	mgr.EXPECT().
		CreateBooking(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req model.BookingRequest) (model.Booking, error) {
			assert.Equal(t, "tractor", req.EquipmentID)
			assert.Equal(t, "renter", req.RenterID)
			require.NotNil(t, req.Hours)
			assert.Equal(t, 4, *req.Hours)
			return model.Booking{ID: "b1", Status: model.BookingAwaitingOwner}, nil
		})

	rr := do(r, http.MethodPost, "/api/bookings", "", model.BookingRequest{
		EquipmentID: "tractor", RenterID: "renter", StartDate: "2026-06-02", Hours: &hours,
	})
	assert.Equal(t, http.StatusCreated, rr.Code)
	var b model.Booking
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &b))
	assert.Equal(t, "b1", b.ID)
	assert.Equal(t, model.BookingAwaitingOwner, b.Status)
}

func TestHandleCreateBooking_BadBody(t *testing.T) {
	_, _, r := newRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/api/bookings", bytes.NewBufferString("{"))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"invalid request body","code":"bad_request"}`, rr.Body.String())
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
		code     string
	}{
		{"not found", model.ErrCandidateNotFound, http.StatusNotFound, CodeNotFound},
		{"validation", &model.ValidationError{Field: "x", Reason: "bad"}, http.StatusBadRequest, CodeValidation},
		{"forbidden", model.ErrForbidden, http.StatusForbidden, CodeForbidden},
		{"already confirmed", fmt.Errorf("booking b1: %w", model.ErrAlreadyConfirmed), http.StatusConflict, CodeAlreadyConfirmed},
		{"terminal candidate", model.ErrInvalidCandidateState, http.StatusConflict, CodeInvalidTransition},
		{"unexpected", errors.New("db down"), http.StatusInternalServerError, CodeInternal},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mgr, mon, r := newRouter(t)
			mgr.EXPECT().Accept(gomock.Any(), "c1", "owner-1").Return(model.Booking{}, tc.err)

			rr := do(r, http.MethodPost, "/api/candidates/c1/accept", "owner-1", nil)
			assert.Equal(t, tc.expected, rr.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, tc.code, body["code"])
			if tc.expected == http.StatusInternalServerError {
				assert.Len(t, mon.errs, 1)
				assert.JSONEq(t, `{"error":"internal error","code":"internal"}`, rr.Body.String())
			} else {
				assert.Empty(t, mon.errs)
			}
		})
	}
}

func TestHandleAccept_RequiresCaller(t *testing.T) {
	_, _, r := newRouter(t)
	rr := do(r, http.MethodPost, "/api/candidates/c1/accept", "", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleCancel_CallerOptional(t *testing.T) {
	mgr, _, r := newRouter(t)
	gomock.InOrder(
		mgr.EXPECT().Cancel(gomock.Any(), "b1", "").Return(model.Booking{ID: "b1", Status: model.BookingCancelled}, nil),
		mgr.EXPECT().Cancel(gomock.Any(), "b2", "lender").Return(model.Booking{}, model.ErrForbidden),
	)

	rr := do(r, http.MethodPost, "/api/bookings/b1/cancel", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var b model.Booking
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &b))
	assert.Equal(t, model.BookingCancelled, b.Status)

	rr = do(r, http.MethodPost, "/api/bookings/b2/cancel", "lender", nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestHandleReject(t *testing.T) {
	mgr, _, r := newRouter(t)
	mgr.EXPECT().Reject(gomock.Any(), "c1", "owner-1").
		Return(model.Candidate{ID: "c1", Status: model.CandidateRejected}, nil)

	rr := do(r, http.MethodPost, "/api/candidates/c1/reject", "owner-1", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var c model.Candidate
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &c))
	assert.Equal(t, model.CandidateRejected, c.Status)
}

func TestHandleListBookings(t *testing.T) {
	mgr, _, r := newRouter(t)
	mgr.EXPECT().ListBookings(gomock.Any(), "acc", "owner", "CONFIRMED").Return(nil, nil)

	rr := do(r, http.MethodGet, "/api/bookings?account_id=acc&role=owner&status=CONFIRMED", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]\n", rr.Body.String())
}

func TestHandleOwnerCandidates(t *testing.T) {
	mgr, _, r := newRouter(t)
	mgr.EXPECT().ListCandidates(gomock.Any(), "o1", "NOTIFIED").
		Return([]model.Candidate{{ID: "c2"}, {ID: "c1"}}, nil)

	rr := do(r, http.MethodGet, "/api/owners/o1/candidates?status=NOTIFIED", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var out []model.Candidate
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	require.Len(t, out, 2)
	assert.Equal(t, "c2", out[0].ID)
}

func TestBookingLifecycleRoutes(t *testing.T) {
	mgr, _, r := newRouter(t)
	gomock.InOrder(
		mgr.EXPECT().GetBooking(gomock.Any(), "b1").Return(model.Booking{ID: "b1"}, nil),
		mgr.EXPECT().BookingCandidates(gomock.Any(), "b1").Return([]model.Candidate{{ID: "c1"}}, nil),
		mgr.EXPECT().Dispatch(gomock.Any(), "b1").Return(model.Booking{ID: "b1"}, nil),
		mgr.EXPECT().UpdateArrivalEstimate(gomock.Any(), "b1", "45 minutes").Return(model.Booking{ID: "b1"}, nil),
		mgr.EXPECT().Start(gomock.Any(), "b1").Return(model.Booking{ID: "b1", Status: model.BookingActive}, nil),
		mgr.EXPECT().Complete(gomock.Any(), "b1").Return(model.Booking{ID: "b1", Status: model.BookingCompleted}, nil),
		mgr.EXPECT().Cancel(gomock.Any(), "b1", "renter").Return(model.Booking{}, model.ErrInvalidTransition),
	)

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/bookings/b1", "", nil).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/bookings/b1/candidates", "", nil).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/api/bookings/b1/dispatch", "", nil).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodPut, "/api/bookings/b1/arrival", "", arrivalRequest{Estimate: "45 minutes"}).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/api/bookings/b1/start", "", nil).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/api/bookings/b1/complete", "", nil).Code)
	assert.Equal(t, http.StatusConflict, do(r, http.MethodPost, "/api/bookings/b1/cancel", "renter", nil).Code)
}

func TestMethodNotAllowed(t *testing.T) {
	_, _, r := newRouter(t)
	rr := do(r, http.MethodDelete, "/api/bookings/b1", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
