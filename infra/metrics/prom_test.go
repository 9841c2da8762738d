package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/kilianp07/emsga/core/metrics"
	"github.com/kilianp07/emsga/core/model"
)

func sampleRun() model.Run {
	st := model.NewHourlyState()
	sched := model.Schedule{BatteryKW: make([]float64, model.Horizon), EVKW: make([]float64, model.Horizon)}
	for h := 0; h < model.Horizon; h++ {
		sched.BatteryKW[h] = float64(h)
		sched.EVKW[h] = float64(h) / 2
		st.GridKW[h] = -float64(h)
	}
	return model.Run{
		ID:        "run-1",
		StartedAt: time.Date(2026, 5, 1, 10, 30, 0, 0, time.UTC),
		Duration:  2 * time.Second,
		BestCost:  -12.3456,
		Schedule:  sched,
		State:     st,
	}
}

func TestPromSink_RecordGeneration(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, sink.RecordGeneration(coremetrics.GenerationEvent{RunID: "r", Generation: 0, BestCost: 5, BestEverCost: 5, MeanCost: 9}))
	require.NoError(t, sink.RecordGeneration(coremetrics.GenerationEvent{RunID: "r", Generation: 1, BestCost: 7, BestEverCost: 5, MeanCost: 8}))

	assert.Equal(t, 2.0, testutil.ToFloat64(sink.generations))
	assert.Equal(t, 7.0, testutil.ToFloat64(sink.genBest))
	assert.Equal(t, 5.0, testutil.ToFloat64(sink.genBestEver))
	assert.Equal(t, 8.0, testutil.ToFloat64(sink.genMean))
}

func TestPromSink_RecordRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, sink.RecordRun(coremetrics.RunEvent{Run: sampleRun(), Generations: 100}))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.runs))
	assert.Equal(t, -12.3456, testutil.ToFloat64(sink.bestCost))
	assert.Equal(t, 23.0, testutil.ToFloat64(sink.schedule.WithLabelValues("battery", "23")))
	assert.Equal(t, 5.5, testutil.ToFloat64(sink.schedule.WithLabelValues("ev", "11")))
	assert.Equal(t, -3.0, testutil.ToFloat64(sink.gridSchedule.WithLabelValues("3")))

	require.NoError(t, sink.RecordRunFailure(coremetrics.RunFailureEvent{Stage: "inputs"}))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.failures.WithLabelValues("inputs")))
}

func TestPromSink_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	second, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, first.RecordGeneration(coremetrics.GenerationEvent{BestCost: 1}))
	require.NoError(t, second.RecordGeneration(coremetrics.GenerationEvent{BestCost: 2}))
	assert.Equal(t, 2.0, testutil.ToFloat64(first.generations))
}
