package metrics

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/kilianp07/rentmatch/core/events"
	coremetrics "github.com/kilianp07/rentmatch/core/metrics"
	"github.com/kilianp07/rentmatch/infra/logger"
)

// InfluxConfig locates the InfluxDB bucket.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// InfluxSink writes booking events to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
	timeout  time.Duration
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(cfg InfluxConfig) *InfluxSink {
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:      logger.New("influx-sink"),
		timeout:  5 * time.Second,
	}
}

// NewInfluxSinkWithFallback pings the InfluxDB instance and returns a NopSink
// if the health check fails.
func NewInfluxSinkWithFallback(cfg InfluxConfig) coremetrics.MetricsSink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

func (s *InfluxSink) write(p *write.Point) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordBookingEvent writes one booking_event point.
func (s *InfluxSink) RecordBookingEvent(ev events.BookingEvent) error {
	p := write.NewPointWithMeasurement("booking_event").
		AddTag("kind", string(ev.Kind)).
		AddTag("status", string(ev.Status)).
		AddTag("booking_id", ev.BookingID).
		AddField("candidates", len(ev.CandidateIDs)).
		SetTime(ev.OccurredAt)
	return s.write(p)
}

// RecordPool writes the candidate pool statistics.
func (s *InfluxSink) RecordPool(ps coremetrics.PoolSample) error {
	p := write.NewPointWithMeasurement("candidate_pool").
		AddTag("booking_id", ps.BookingID).
		AddField("size", ps.Summary.Size).
		AddField("unknown", ps.Summary.Unknown).
		AddField("min_km", round3(ps.Summary.MinKm)).
		AddField("median_km", round3(ps.Summary.MedianKm)).
		AddField("mean_km", round3(ps.Summary.MeanKm)).
		AddField("max_km", round3(ps.Summary.MaxKm)).
		SetTime(ps.Time)
	return s.write(p)
}

// RecordResponse writes an owner response latency.
func (s *InfluxSink) RecordResponse(r coremetrics.ResponseSample) error {
	p := write.NewPointWithMeasurement("owner_response").
		AddTag("kind", string(r.Kind)).
		AddTag("booking_id", r.BookingID).
		AddField("latency_ms", float64(r.Latency.Milliseconds())).
		SetTime(r.Time)
	return s.write(p)
}

// Close releases the underlying client.
func (s *InfluxSink) Close() { s.client.Close() }

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
