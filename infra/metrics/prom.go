package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/rentmatch/core/events"
	coremetrics "github.com/kilianp07/rentmatch/core/metrics"
)

// PromSink records booking events in Prometheus metrics.
type PromSink struct {
	events    *prometheus.CounterVec
	poolSize  prometheus.Histogram
	unknown   prometheus.Counter
	distance  prometheus.Histogram
	responses *prometheus.HistogramVec
}

// NewPromSink registers metrics on the default Prometheus registerer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Collectors
// already registered by a previous sink are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rentmatch_booking_events_total",
			Help: "Booking events by kind and resulting booking status",
		}, []string{"kind", "status"}),
		poolSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "rentmatch_candidate_pool_size",
			Help:    "Number of candidates invited per booking",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
		}),
		unknown: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rentmatch_candidates_unknown_distance_total",
			Help: "Candidates invited without a known distance",
		}),
		distance: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "rentmatch_candidate_pool_median_km",
			Help:    "Median known candidate distance per pool",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250},
		}),
		responses: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rentmatch_owner_response_seconds",
			Help:    "Time between invitation and owner answer",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}, []string{"kind"}),
	}
	var err error
	if s.events, err = register(reg, s.events); err != nil {
		return nil, err
	}
	if s.poolSize, err = register(reg, s.poolSize); err != nil {
		return nil, err
	}
	if s.unknown, err = register(reg, s.unknown); err != nil {
		return nil, err
	}
	if s.distance, err = register(reg, s.distance); err != nil {
		return nil, err
	}
	if s.responses, err = register(reg, s.responses); err != nil {
		return nil, err
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordBookingEvent increments the event counter.
func (s *PromSink) RecordBookingEvent(ev events.BookingEvent) error {
	s.events.WithLabelValues(string(ev.Kind), string(ev.Status)).Inc()
	return nil
}

// RecordPool observes the pool size and distance figures.
func (s *PromSink) RecordPool(p coremetrics.PoolSample) error {
	s.poolSize.Observe(float64(p.Summary.Size))
	s.unknown.Add(float64(p.Summary.Unknown))
	if p.Summary.Size > p.Summary.Unknown {
		s.distance.Observe(p.Summary.MedianKm)
	}
	return nil
}

// RecordResponse observes owner response latency.
func (s *PromSink) RecordResponse(r coremetrics.ResponseSample) error {
	s.responses.WithLabelValues(string(r.Kind)).Observe(r.Latency.Seconds())
	return nil
}
