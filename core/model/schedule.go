package model

import (
	"errors"
	"fmt"
	"time"
)

// DecisionCount is the number of decision variables of a schedule: one
// battery and one EV power value per hour.
const DecisionCount = 2 * Horizon

// ErrDecisionLength is returned when a decision vector does not hold
// DecisionCount values.
var ErrDecisionLength = errors.New("decision vector length mismatch")

// Schedule is a decoded 24-hour plan. Positive battery power charges the
// storage unit, negative power discharges it. EV power is always a
// charging power.
type Schedule struct {
	BatteryKW []float64 `json:"battery_kw" yaml:"battery_kw"`
	EVKW      []float64 `json:"ev_kw" yaml:"ev_kw"`
}

// ScheduleFromValues splits a flat decision vector into its battery and EV halves.
func ScheduleFromValues(x []float64) (Schedule, error) {
	if len(x) != DecisionCount {
		return Schedule{}, fmt.Errorf("got %d values, want %d: %w", len(x), DecisionCount, ErrDecisionLength)
	}
	return Schedule{
		BatteryKW: cloneFloats(x[:Horizon]),
		EVKW:      cloneFloats(x[Horizon:]),
	}, nil
}

// Values flattens the schedule back to battery values followed by EV values.
func (s Schedule) Values() []float64 {
	out := make([]float64, 0, len(s.BatteryKW)+len(s.EVKW))
	out = append(out, s.BatteryKW...)
	return append(out, s.EVKW...)
}

// HourlyState is the simulated evolution of a schedule over the horizon.
type HourlyState struct {
	BatteryKWh []float64 `json:"battery_kwh"`
	EVKWh      []float64 `json:"ev_kwh"`
	GridKW     []float64 `json:"grid_kw"`
	GridCost   []float64 `json:"grid_cost"`
	HourCost   []float64 `json:"hour_cost"`
}

// NewHourlyState allocates a zeroed state covering the horizon.
func NewHourlyState() HourlyState {
	return HourlyState{
		BatteryKWh: make([]float64, Horizon),
		EVKWh:      make([]float64, Horizon),
		GridKW:     make([]float64, Horizon),
		GridCost:   make([]float64, Horizon),
		HourCost:   make([]float64, Horizon),
	}
}

// Clone returns a deep copy of the state.
func (h HourlyState) Clone() HourlyState {
	return HourlyState{
		BatteryKWh: cloneFloats(h.BatteryKWh),
		EVKWh:      cloneFloats(h.EVKWh),
		GridKW:     cloneFloats(h.GridKW),
		GridCost:   cloneFloats(h.GridCost),
		HourCost:   cloneFloats(h.HourCost),
	}
}

// Run is the outcome of one optimisation, as handed to result sinks.
type Run struct {
	ID        string        `json:"id"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	BestCost  float64       `json:"best_cost"`
	Schedule  Schedule      `json:"schedule"`
	State     HourlyState   `json:"state"`
	// Trace holds the best cost of every generation, in order.
	Trace []float64 `json:"trace"`
}
