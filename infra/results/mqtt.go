package results

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kilianp07/emsga/core/factory"
	"github.com/kilianp07/emsga/core/model"
	coreresults "github.com/kilianp07/emsga/core/results"
	"github.com/kilianp07/emsga/infra/mqtt"
)

// DefaultScheduleTopic is the topic used when none is configured.
const DefaultScheduleTopic = "ems/schedule"

// MQTTConfig configures the schedule publisher.
type MQTTConfig struct {
	mqtt.Config `json:",squash"`
	Topic       string `json:"topic"`
}

type publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
	Disconnect()
}

// MQTTSink publishes the schedule of every run to a broker.
type MQTTSink struct {
	pub   publisher
	topic string
}

// schedulePayload is the message consumed by downstream controllers.
type schedulePayload struct {
	RunID     string    `json:"run_id"`
	Generated time.Time `json:"generated_at"`
	BestCost  float64   `json:"best_cost"`
	BatteryKW []float64 `json:"battery_kw"`
	EVKW      []float64 `json:"ev_kw"`
	GridKW    []float64 `json:"grid_kw"`
}

// NewMQTTSink connects to the broker described by cfg.
func NewMQTTSink(cfg MQTTConfig) (*MQTTSink, error) {
	if cfg.Topic == "" {
		cfg.Topic = DefaultScheduleTopic
	}
	pub, err := mqtt.NewPublisher(cfg.Config)
	if err != nil {
		return nil, fmt.Errorf("mqtt sink: %w", err)
	}
	return &MQTTSink{pub: pub, topic: cfg.Topic}, nil
}

// Save publishes the run schedule as JSON.
func (s *MQTTSink) Save(ctx context.Context, run model.Run) error {
	payload, err := json.Marshal(schedulePayload{
		RunID:     run.ID,
		Generated: run.StartedAt.Add(run.Duration),
		BestCost:  run.BestCost,
		BatteryKW: run.Schedule.BatteryKW,
		EVKW:      run.Schedule.EVKW,
		GridKW:    run.State.GridKW,
	})
	if err != nil {
		return err
	}
	return s.pub.Publish(ctx, s.topic, payload)
}

// Close disconnects from the broker.
func (s *MQTTSink) Close() error {
	s.pub.Disconnect()
	return nil
}

func init() {
	_ = coreresults.Register("mqtt", func(conf map[string]any) (coreresults.Sink, error) {
		var c MQTTConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewMQTTSink(c)
	})
}
