package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/kilianp07/emsga/config"
	"github.com/kilianp07/emsga/core/forecast"
	"github.com/kilianp07/emsga/core/ga"
	coremetrics "github.com/kilianp07/emsga/core/metrics"
	"github.com/kilianp07/emsga/core/model"
	"github.com/kilianp07/emsga/core/monitoring"
	"github.com/kilianp07/emsga/core/results"
	_ "github.com/kilianp07/emsga/infra/forecast"
	"github.com/kilianp07/emsga/infra/logger"
	"github.com/kilianp07/emsga/infra/metrics"
	inframon "github.com/kilianp07/emsga/infra/monitoring"
	_ "github.com/kilianp07/emsga/infra/results"
)

// Failure stages reported to metrics sinks.
const (
	StageInputs   = "inputs"
	StageOptimise = "optimise"
	StageResults  = "results"
)

// Service runs the optimisation cycle: fetch forecasts, evolve a schedule,
// deliver it to the result sinks.
type Service struct {
	provider forecast.Provider
	engine   *ga.Engine
	sink     results.Sink
	metrics  coremetrics.MetricsSink
	monitor  monitoring.Monitor
	log      logger.Logger
	interval time.Duration
	promPort string
}

// Option overrides a component built from the configuration.
type Option func(*Service)

// WithProvider replaces the configured forecast provider.
func WithProvider(p forecast.Provider) Option {
	return func(s *Service) { s.provider = p }
}

// WithSink replaces the configured result sinks.
func WithSink(sink results.Sink) Option {
	return func(s *Service) { s.sink = sink }
}

// WithMetrics replaces the configured metrics sinks.
func WithMetrics(m coremetrics.MetricsSink) Option {
	return func(s *Service) { s.metrics = m }
}

// WithMonitor replaces the configured error monitor.
func WithMonitor(m monitoring.Monitor) Option {
	return func(s *Service) { s.monitor = m }
}

// New creates a Service from the configuration.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	s := &Service{
		log:      logger.New("service"),
		interval: cfg.Service.Interval(),
		promPort: cfg.Metrics.PrometheusPort,
	}
	for _, o := range opts {
		o(s)
	}
	var err error
	if s.provider == nil {
		if s.provider, err = forecast.New(cfg.Inputs); err != nil {
			return nil, fmt.Errorf("inputs: %w", err)
		}
	}
	if s.monitor == nil {
		if s.monitor, err = inframon.NewSentryMonitor(cfg.Monitoring); err != nil {
			return nil, fmt.Errorf("monitoring: %w", err)
		}
	}
	if s.metrics == nil {
		if s.metrics, err = coremetrics.NewMetricsSink(cfg.Metrics.Sinks); err != nil {
			return nil, fmt.Errorf("metrics: %w", err)
		}
	}
	if s.sink == nil {
		if s.sink, err = results.NewSink(cfg.Results.Sinks); err != nil {
			return nil, fmt.Errorf("results: %w", err)
		}
	}
	s.engine, err = ga.NewEngine(cfg.GA,
		ga.WithLogger(logger.New("ga")),
		ga.WithObserver(s.observe),
	)
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("ga: %w", err)
	}
	return s, nil
}

func (s *Service) observe(st ga.GenerationStats) {
	err := s.metrics.RecordGeneration(coremetrics.GenerationEvent{
		RunID:        st.RunID,
		Generation:   st.Generation,
		BestCost:     st.BestCost,
		BestEverCost: st.BestEverCost,
		MeanCost:     st.MeanCost,
		Time:         time.Now(),
	})
	if err != nil {
		s.log.Warnf("record generation %d: %v", st.Generation, err)
	}
}

func (s *Service) fail(stage string, err error) error {
	s.monitor.CaptureException(err, map[string]string{"stage": stage})
	if rec, ok := s.metrics.(coremetrics.RunFailureRecorder); ok {
		if rerr := rec.RecordRunFailure(coremetrics.RunFailureEvent{Stage: stage, Err: err.Error(), Time: time.Now()}); rerr != nil {
			s.log.Warnf("record failure: %v", rerr)
		}
	}
	return fmt.Errorf("%s: %w", stage, err)
}

// RunOnce performs a single optimisation cycle. The run is returned even when
// delivering it to a sink failed.
func (s *Service) RunOnce(ctx context.Context) (*ga.Result, error) {
	in, err := s.provider.Inputs(ctx)
	if err != nil {
		return nil, s.fail(StageInputs, err)
	}
	res, err := s.engine.Run(in)
	if err != nil {
		return nil, s.fail(StageOptimise, err)
	}
	if rec, ok := s.metrics.(coremetrics.RunRecorder); ok {
		if err := rec.RecordRun(coremetrics.RunEvent{Run: res.Run, Seed: res.Seed, Generations: len(res.Trace)}); err != nil {
			s.log.Warnf("record run %s: %v", res.ID, err)
		}
	}
	if err := s.sink.Save(ctx, res.Run); err != nil {
		return res, s.fail(StageResults, err)
	}
	return res, nil
}

// Run re-optimises every interval until the context is cancelled. Failed
// cycles are logged and retried at the next tick.
func (s *Service) Run(ctx context.Context) error {
	if s.promPort != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	s.log.Infof("optimising every %s", s.interval)
	for {
		if _, err := s.RunOnce(ctx); err != nil {
			s.log.Errorf("cycle failed: %v", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(s.interval):
		}
	}
}

// Latest returns the most recent run of the first readable result sink.
func (s *Service) Latest(ctx context.Context) (model.Run, error) {
	if r, ok := s.sink.(results.Reader); ok {
		return r.Latest(ctx)
	}
	return model.Run{}, results.ErrNoRuns
}

// Close flushes pending error reports and releases resources held by the sinks.
func (s *Service) Close() error {
	if s.monitor != nil {
		s.monitor.Flush(2 * time.Second)
	}
	var errs []error
	for _, c := range []any{s.sink, s.metrics} {
		if cl, ok := c.(io.Closer); ok {
			errs = append(errs, cl.Close())
		}
	}
	return errors.Join(errs...)
}
