package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/rentmatch/config"
	"github.com/kilianp07/rentmatch/core/decisionlog"
	"github.com/kilianp07/rentmatch/core/events"
	"github.com/kilianp07/rentmatch/core/model"
)

const fixture = `accounts:
  - id: yard
    capabilities: [OWNER]
  - id: farm-a
    latitude: 45.76
    longitude: 4.83
    capabilities: [OWNER]
  - id: farm-b
    capabilities: [OWNER]
  - id: builder
    latitude: 45.75
    longitude: 4.85
    capabilities: [RENTER]
equipment:
  - id: excavator
    owner_id: yard
    daily_price: 300
`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	fx := filepath.Join(dir, "fixture.yaml")
	require.NoError(t, os.WriteFile(fx, []byte(fixture), 0o644))
	cfg := &config.Config{
		HTTP:        config.HTTPConfig{Addr: "127.0.0.1:0"},
		Directory:   config.DirectoryConfig{Fixture: fx},
		DecisionLog: decisionlog.Config{Backend: "jsonl", Path: filepath.Join(dir, "decisions.jsonl")},
	}
	cfg.SetDefaults()
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestService_HandlerAcceptFlow(t *testing.T) {
	svc, err := New(context.Background(), testConfig(t))
	require.NoError(t, err)
	defer func() { _ = svc.Close() }()
	h := svc.Handler()

	body, _ := json.Marshal(model.BookingRequest{EquipmentID: "excavator", RenterID: "builder", StartDate: "2026-06-02"})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/bookings", bytes.NewReader(body)))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var b model.Booking
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &b))
	assert.Equal(t, model.BookingAwaitingOwner, b.Status)
	assert.Equal(t, 300.0, b.TotalCost)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/owners/farm-b/candidates", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var cs []model.Candidate
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &cs))
	require.Len(t, cs, 1)

	req := httptest.NewRequest(http.MethodPost, "/api/candidates/"+cs[0].ID+"/accept", nil)
	req.Header.Set("X-Account-ID", "farm-b")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	// The other candidate lost the race.
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/owners/farm-a/candidates?status=EXPIRED", nil))
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &cs))
	assert.Len(t, cs, 1)
}

func TestService_RunRecordsDecisions(t *testing.T) {
	cfg := testConfig(t)
	svc, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer func() { _ = svc.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	// Consumers subscribe at the start of Run.
	require.Eventually(t, func() bool {
		_, err := svc.Manager.CreateBooking(context.Background(), model.BookingRequest{
			EquipmentID: "excavator", RenterID: "builder", StartDate: "2026-06-02",
		})
		if err != nil {
			return false
		}
		recs, err := svc.decisions.Query(context.Background(), decisionlog.Query{Kind: events.KindCandidatesDispatched})
		return err == nil && len(recs) > 0
	}, 2*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("service did not stop")
	}
}

func TestOpenBackends_UnknownFixture(t *testing.T) {
	cfg := testConfig(t)
	cfg.Directory.Fixture = filepath.Join(t.TempDir(), "missing.yaml")
	_, err := OpenBackends(context.Background(), cfg)
	assert.Error(t, err)
}
