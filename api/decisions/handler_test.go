package decisions

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"github.com/kilianp07/rentmatch/core/decisionlog"
	"github.com/kilianp07/rentmatch/core/events"
)

type memStore struct{ recs []decisionlog.Record }

func (m *memStore) Append(_ context.Context, r decisionlog.Record) error {
	m.recs = append(m.recs, r)
	return nil
}

func (m *memStore) Query(_ context.Context, q decisionlog.Query) ([]decisionlog.Record, error) {
	var res []decisionlog.Record
	for _, r := range m.recs {
		if q.Match(r) {
			res = append(res, r)
		}
	}
	return res, nil
}

func (m *memStore) Close() error { return nil }

func TestHandler_AuthAndFilters(t *testing.T) {
	store := &memStore{}
	now := time.Now()
	_ = store.Append(context.Background(), decisionlog.FromEvent(events.BookingEvent{Kind: events.KindBookingConfirmed, BookingID: "b1", OwnerIDs: []string{"o1"}, OccurredAt: now}))
	_ = store.Append(context.Background(), decisionlog.FromEvent(events.BookingEvent{Kind: events.KindBookingCreated, BookingID: "b2", OccurredAt: now}))
	r := mux.NewRouter()
	Register(r, store, "tok")

	req := httptest.NewRequest("GET", "/api/decisions?owner_id=o1&kind=booking_confirmed", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	var out []decisionlog.Record
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out) != 1 || out[0].Event.BookingID != "b1" {
		t.Fatalf("unexpected records %#v", out)
	}

	req = httptest.NewRequest("GET", "/api/decisions", nil)
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rr.Code)
	}
}

func TestHandler_BadQuery(t *testing.T) {
	h := NewHandler(&memStore{}, "")
	req := httptest.NewRequest("GET", "/api/decisions?start=yesterday", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rr.Code)
	}
}

func TestHandler_EmptyIsArray(t *testing.T) {
	h := NewHandler(decisionlog.NopStore{}, "")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/api/decisions", nil))
	if rr.Body.String() != "[]\n" {
		t.Fatalf("expected empty array got %q", rr.Body.String())
	}
}

func TestHandler_CSV(t *testing.T) {
	store := &memStore{}
	_ = store.Append(context.Background(), decisionlog.FromEvent(events.BookingEvent{Kind: events.KindBookingCreated, BookingID: "b9", OccurredAt: time.Now()}))
	h := NewHandler(store, "")

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/api/decisions?format=csv", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "text/csv" {
		t.Fatalf("content type %q", ct)
	}
	if !strings.HasPrefix(rr.Body.String(), "timestamp,booking_id,kind") || !strings.Contains(rr.Body.String(), ",b9,booking_created,") {
		t.Fatalf("unexpected body %q", rr.Body.String())
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/api/decisions?format=xml", nil))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rr.Code)
	}
}

func TestHandler_TokenMustMatchExactly(t *testing.T) {
	h := NewHandler(decisionlog.NopStore{}, "secret")
	for _, auth := range []string{"", "Bearer ", "Bearer secre", "Bearer secret2", "bearer secret", "secret"} {
		req := httptest.NewRequest("GET", "/api/decisions", nil)
		if auth != "" {
			req.Header.Set("Authorization", auth)
		}
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("Authorization %q: expected 401 got %d", auth, rr.Code)
		}
	}
	req := httptest.NewRequest("GET", "/api/decisions", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rr.Code)
	}
}
