package metrics

import (
	"time"

	"github.com/kilianp07/emsga/core/model"
)

// GenerationEvent summarises one generation of an optimisation run.
type GenerationEvent struct {
	RunID        string
	Generation   int
	BestCost     float64
	BestEverCost float64
	MeanCost     float64
	Time         time.Time
}

// MetricsSink records generation progress for observability purposes.
type MetricsSink interface {
	RecordGeneration(ev GenerationEvent) error
}

// RunEvent describes a finished optimisation run.
type RunEvent struct {
	Run         model.Run
	Seed        int64
	Generations int
}

// RunRecorder records finished runs and their schedules.
type RunRecorder interface {
	RecordRun(ev RunEvent) error
}

// RunFailureEvent records a cycle that produced no schedule.
type RunFailureEvent struct {
	Stage string
	Err   string
	Time  time.Time
}

// RunFailureRecorder records failed cycles.
type RunFailureRecorder interface {
	RecordRunFailure(ev RunFailureEvent) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordGeneration(GenerationEvent) error { return nil }
func (NopSink) RecordRun(RunEvent) error               { return nil }
func (NopSink) RecordRunFailure(RunFailureEvent) error { return nil }
