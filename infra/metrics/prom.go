package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/emsga/core/metrics"
)

// PromSink records optimisation progress and schedules in Prometheus metrics.
type PromSink struct {
	generations  prometheus.Counter
	genBest      prometheus.Gauge
	genBestEver  prometheus.Gauge
	genMean      prometheus.Gauge
	runs         prometheus.Counter
	failures     *prometheus.CounterVec
	duration     prometheus.Histogram
	bestCost     prometheus.Gauge
	schedule     *prometheus.GaugeVec
	gridSchedule *prometheus.GaugeVec
}

// NewPromSink registers the metrics on the default Prometheus registerer.
// The HTTP endpoint is started separately with StartPromServer.
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
	var (
		s   PromSink
		err error
	)
	if s.generations, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ga_generations_total",
		Help: "Total number of evaluated generations",
	})); err != nil {
		return nil, err
	}
	if s.genBest, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ga_generation_best_cost",
		Help: "Cost of the best individual of the latest generation",
	})); err != nil {
		return nil, err
	}
	if s.genBestEver, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ga_best_ever_cost",
		Help: "Lowest cost seen so far in the current run",
	})); err != nil {
		return nil, err
	}
	if s.genMean, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ga_generation_mean_cost",
		Help: "Mean cost of the latest generation",
	})); err != nil {
		return nil, err
	}
	if s.runs, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ga_runs_total",
		Help: "Total number of finished optimisation runs",
	})); err != nil {
		return nil, err
	}
	if s.failures, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ga_run_failures_total",
		Help: "Total number of optimisation cycles that failed",
	}, []string{"stage"})); err != nil {
		return nil, err
	}
	if s.duration, err = register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "ga_run_duration_seconds",
		Help:    "Wall time of an optimisation run",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
	})); err != nil {
		return nil, err
	}
	if s.bestCost, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ga_run_best_cost",
		Help: "Cost of the schedule of the latest run",
	})); err != nil {
		return nil, err
	}
	if s.schedule, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "ems_schedule_power_kw",
		Help: "Planned power per device and hour of the latest schedule",
	}, []string{"device", "hour"})); err != nil {
		return nil, err
	}
	if s.gridSchedule, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "ems_schedule_grid_kw",
		Help: "Simulated grid exchange per hour of the latest schedule",
	}, []string{"hour"})); err != nil {
		return nil, err
	}
	return &s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordGeneration updates the generation gauges.
func (s *PromSink) RecordGeneration(ev coremetrics.GenerationEvent) error {
	s.generations.Inc()
	s.genBest.Set(ev.BestCost)
	s.genBestEver.Set(ev.BestEverCost)
	s.genMean.Set(ev.MeanCost)
	return nil
}

// RecordRun exposes the latest schedule hour by hour.
func (s *PromSink) RecordRun(ev coremetrics.RunEvent) error {
	s.runs.Inc()
	s.duration.Observe(ev.Run.Duration.Seconds())
	s.bestCost.Set(ev.Run.BestCost)
	for h, v := range ev.Run.Schedule.BatteryKW {
		s.schedule.WithLabelValues("battery", strconv.Itoa(h)).Set(v)
	}
	for h, v := range ev.Run.Schedule.EVKW {
		s.schedule.WithLabelValues("ev", strconv.Itoa(h)).Set(v)
	}
	for h, v := range ev.Run.State.GridKW {
		s.gridSchedule.WithLabelValues(strconv.Itoa(h)).Set(v)
	}
	return nil
}

// RecordRunFailure counts failed cycles by stage.
func (s *PromSink) RecordRunFailure(ev coremetrics.RunFailureEvent) error {
	s.failures.WithLabelValues(ev.Stage).Inc()
	return nil
}
