package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/rentmatch/api"
	"github.com/kilianp07/rentmatch/api/bookings"
	"github.com/kilianp07/rentmatch/config"
	"github.com/kilianp07/rentmatch/core/decisionlog"
	"github.com/kilianp07/rentmatch/core/dispatch"
	"github.com/kilianp07/rentmatch/core/events"
	coremetrics "github.com/kilianp07/rentmatch/core/metrics"
	coremon "github.com/kilianp07/rentmatch/core/monitoring"
	"github.com/kilianp07/rentmatch/core/notify"
	"github.com/kilianp07/rentmatch/infra/logger"
	"github.com/kilianp07/rentmatch/infra/metrics"
	"github.com/kilianp07/rentmatch/infra/monitoring"
	"github.com/kilianp07/rentmatch/internal/eventbus"

	// Publisher factories register themselves.
	_ "github.com/kilianp07/rentmatch/infra/kafka"
	_ "github.com/kilianp07/rentmatch/infra/mqtt"
)

// Service wires the booking engine to its transports and observers.
type Service struct {
	Manager *dispatch.Manager

	cfg       *config.Config
	backends  *Backends
	bus       *eventbus.Bus[events.BookingEvent]
	publisher notify.Publisher
	sink      coremetrics.MetricsSink
	decisions decisionlog.Store
	monitor   coremon.Monitor
	log       logger.Logger
}

// New creates a Service from the configuration.
func New(ctx context.Context, cfg *config.Config) (*Service, error) {
	log := logger.New("service")
	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	backends, err := OpenBackends(ctx, cfg)
	if err != nil {
		return nil, err
	}
	s := &Service{cfg: cfg, backends: backends, monitor: mon, log: log}
	if err := s.init(); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Service) init() error {
	var err error
	if s.publisher, err = notify.NewPublisher(s.cfg.Notify.Publishers, logger.New("notify")); err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	if s.sink, err = coremetrics.NewMetricsSink(s.cfg.Metrics.Sinks); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	if s.decisions, err = decisionlog.Open(s.cfg.DecisionLog); err != nil {
		return fmt.Errorf("decision log: %w", err)
	}
	s.bus = eventbus.New[events.BookingEvent]()
	s.Manager, err = dispatch.NewManager(s.backends.Store, s.backends.Directory,
		dispatch.WithLogger(logger.New("dispatch")),
		dispatch.WithPublisher(s.bus),
		dispatch.WithConfig(s.cfg.Dispatch),
	)
	if err != nil {
		return fmt.Errorf("dispatch manager: %w", err)
	}
	return nil
}

// Handler returns the HTTP API.
func (s *Service) Handler() http.Handler {
	h := bookings.NewHandler(s.Manager, logger.New("api"), s.monitor)
	return api.NewRouter(h, s.decisions, s.cfg.API.DecisionsToken)
}

// Run serves HTTP and drives the event consumers until ctx is canceled or one
// of them fails.
func (s *Service) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	relay := notify.Relay{Publisher: s.publisher, Log: logger.New("relay"), Monitor: s.monitor}
	relayCh := s.bus.Subscribe()
	g.Go(func() error { return relay.Run(gctx, relayCh) })

	rec := decisionlog.Recorder{Store: s.decisions, Log: logger.New("decision-log")}
	recCh := s.bus.Subscribe()
	g.Go(func() error { return rec.Run(gctx, recCh) })

	collected := metrics.StartEventCollector(gctx, s.bus, s.sink)
	g.Go(func() error {
		<-collected
		return nil
	})

	if addr := s.cfg.Metrics.PrometheusAddr; addr != "" {
		g.Go(func() error { return metrics.StartPromServer(gctx, addr) })
	}

	srv := &http.Server{
		Addr:              s.cfg.HTTP.Addr,
		Handler:           s.Handler(),
		ReadTimeout:       s.cfg.HTTP.ReadTimeout,
		ReadHeaderTimeout: s.cfg.HTTP.ReadTimeout,
		WriteTimeout:      s.cfg.HTTP.WriteTimeout,
	}
	g.Go(func() error {
		defer coremon.Guard(s.monitor, map[string]string{"module": "http"})
		s.log.Infof("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("http shutdown: %v", err)
		}
		return nil
	})

	err := g.Wait()
	s.log.Infof("service stopped; %d events dropped by the bus", s.bus.Dropped())
	return err
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	var errs []error
	if s.bus != nil {
		s.bus.Close()
	}
	if s.publisher != nil {
		errs = append(errs, s.publisher.Close())
	}
	if s.decisions != nil {
		errs = append(errs, s.decisions.Close())
	}
	if s.backends != nil {
		errs = append(errs, s.backends.Store.Close())
		s.backends.Close()
	}
	s.monitor.Flush(2 * time.Second)
	return errors.Join(errs...)
}
