package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/emsga/core/metrics"
	"github.com/kilianp07/emsga/infra/logger"
)

// InfluxConfig holds the InfluxDB connection settings.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// InfluxSink writes optimisation events to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
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
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
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

// RecordGeneration writes one ga_generation point.
func (s *InfluxSink) RecordGeneration(ev coremetrics.GenerationEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("ga_generation").
		AddTag("run_id", ev.RunID).
		AddField("generation", ev.Generation).
		AddField("best_cost", round3(ev.BestCost)).
		AddField("best_ever_cost", round3(ev.BestEverCost)).
		AddField("mean_cost", round3(ev.MeanCost)).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordRun writes the run summary and one ems_schedule point per hour,
// stamped at the start of the hour it plans.
func (s *InfluxSink) RecordRun(ev coremetrics.RunEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	run := ev.Run
	points := []*write.Point{
		write.NewPointWithMeasurement("ga_run").
			AddTag("run_id", run.ID).
			AddField("best_cost", round3(run.BestCost)).
			AddField("duration_ms", run.Duration.Milliseconds()).
			AddField("generations", ev.Generations).
			AddField("seed", ev.Seed).
			SetTime(run.StartedAt),
	}
	base := run.StartedAt.UTC().Truncate(time.Hour)
	for h := range run.Schedule.BatteryKW {
		p := write.NewPointWithMeasurement("ems_schedule").
			AddTag("run_id", run.ID).
			AddTag("hour", strconv.Itoa(h)).
			AddField("battery_kw", round3(run.Schedule.BatteryKW[h]))
		if h < len(run.Schedule.EVKW) {
			p.AddField("ev_kw", round3(run.Schedule.EVKW[h]))
		}
		if h < len(run.State.GridKW) {
			p.AddField("grid_kw", round3(run.State.GridKW[h])).
				AddField("battery_kwh", round3(run.State.BatteryKWh[h])).
				AddField("ev_kwh", round3(run.State.EVKWh[h])).
				AddField("hour_cost", round3(run.State.HourCost[h]))
		}
		points = append(points, p.SetTime(base.Add(time.Duration(h)*time.Hour)))
	}
	return s.writeAPI.WritePoint(ctx, points...)
}

// RecordRunFailure writes a ga_run_failure point.
func (s *InfluxSink) RecordRunFailure(ev coremetrics.RunFailureEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("ga_run_failure").
		AddTag("stage", ev.Stage).
		AddField("error", ev.Err).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the client resources.
func (s *InfluxSink) Close() error {
	s.client.Close()
	return nil
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
