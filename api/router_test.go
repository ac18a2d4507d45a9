package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/kilianp07/rentmatch/api/bookings"
	mock_bookings "github.com/kilianp07/rentmatch/api/bookings/mocks"
	"github.com/kilianp07/rentmatch/core/decisionlog"
)

func TestNewRouter(t *testing.T) {
	mgr := mock_bookings.NewMockManager(gomock.NewController(t))
	r := NewRouter(bookings.NewHandler(mgr, nil, nil), decisionlog.NopStore{}, "secret")

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/decisions", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
