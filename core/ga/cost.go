package ga

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/kilianp07/emsga/core/model"
)

// HourZeroPolicy selects how the state of charge of the first hour is computed.
type HourZeroPolicy string

const (
	// HourZeroCorrected advances the initial charge by one hour into index 0.
	HourZeroCorrected HourZeroPolicy = "corrected"
	// HourZeroLegacy leaves index 0 at zero energy and starts the recurrence
	// from there, ignoring the initial charge. It reproduces the schedules of
	// the historical planner.
	HourZeroLegacy HourZeroPolicy = "legacy"
)

// Validate checks the policy is known.
func (p HourZeroPolicy) Validate() error {
	switch p {
	case HourZeroCorrected, HourZeroLegacy:
		return nil
	default:
		return fmt.Errorf("unknown hour zero policy %q: %w", string(p), ErrInvalidConfig)
	}
}

// Storage describes an energy store simulated by the cost model.
type Storage struct {
	MaxKWh     float64
	MinKWh     float64
	InitialKWh float64
	// LossPerHour is the fraction of stored energy lost every hour.
	LossPerHour float64
	Efficiency  float64
	// OverMaxPenalty and UnderMinPenalty weight the absolute violation in kWh.
	OverMaxPenalty  float64
	UnderMinPenalty float64
}

func (s Storage) next(prev, powerKW float64) float64 {
	return prev*(1-s.LossPerHour) + powerKW*s.Efficiency
}

func (s Storage) penalty(energy float64) float64 {
	return s.OverMaxPenalty*math.Abs(math.Max(0, energy-s.MaxKWh)) +
		s.UnderMinPenalty*math.Abs(math.Min(0, energy-s.MinKWh))
}

// Params carries the physical constants and tariffs of the site.
type Params struct {
	Battery Storage
	EV      Storage
	// Revenues per kW of PV and wind production and per kWh held in the EV.
	PVRevenue   float64
	EVRevenue   float64
	WindRevenue float64
	HourZero    HourZeroPolicy
}

// DefaultParams returns the parameters of the reference site.
func DefaultParams() Params {
	const batteryMax = 551.8
	const evMax = 500.0
	return Params{
		Battery: Storage{
			MaxKWh:          batteryMax,
			MinKWh:          0.4 * batteryMax,
			InitialKWh:      0.8 * batteryMax,
			LossPerHour:     0.0001,
			Efficiency:      0.9,
			OverMaxPenalty:  10000,
			UnderMinPenalty: 1000,
		},
		EV: Storage{
			MaxKWh:          evMax,
			MinKWh:          0,
			InitialKWh:      0.25 * evMax,
			LossPerHour:     0.0002,
			Efficiency:      0.9,
			OverMaxPenalty:  10000,
			UnderMinPenalty: 1000,
		},
		PVRevenue:   0.0096,
		EVRevenue:   0.02,
		WindRevenue: 0.0296,
		HourZero:    HourZeroCorrected,
	}
}

// CostModel evaluates decision vectors against a fixed set of forecasts.
// It is not safe for concurrent use: every evaluation overwrites the
// internal simulation state.
type CostModel struct {
	inputs model.Inputs
	params Params
	state  model.HourlyState
}

// NewCostModel validates the forecasts and returns a model bound to them.
// The inputs are copied.
func NewCostModel(in model.Inputs, p Params) (*CostModel, error) {
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("cost model: %w", err)
	}
	if p.HourZero == "" {
		p.HourZero = HourZeroCorrected
	}
	if err := p.HourZero.Validate(); err != nil {
		return nil, err
	}
	return &CostModel{inputs: in.Clone(), params: p, state: model.NewHourlyState()}, nil
}

// Params returns the parameters the model was built with.
func (m *CostModel) Params() Params { return m.params }

// Evaluate simulates the 48 decision variables over the horizon and returns
// the total cost, penalties included. Lower is better.
func (m *CostModel) Evaluate(x []float64) (float64, error) {
	if len(x) != model.DecisionCount {
		return 0, fmt.Errorf("evaluate: got %d values, want %d: %w", len(x), model.DecisionCount, ErrDecisionLength)
	}
	bat, ev := m.params.Battery, m.params.EV
	st := m.state
	for i := 0; i < model.Horizon; i++ {
		batKW, evKW := x[i], x[i+model.Horizon]
		switch {
		case i > 0:
			st.BatteryKWh[i] = bat.next(st.BatteryKWh[i-1], batKW)
			st.EVKWh[i] = ev.next(st.EVKWh[i-1], evKW)
		case m.params.HourZero == HourZeroLegacy:
			st.BatteryKWh[0] = 0
			st.EVKWh[0] = 0
		default:
			st.BatteryKWh[0] = bat.next(bat.InitialKWh, batKW)
			st.EVKWh[0] = ev.next(ev.InitialKWh, evKW)
		}
		st.GridKW[i] = m.inputs.Residual(i) - batKW - evKW
		st.GridCost[i] = m.inputs.Price[i] * st.GridKW[i]
		st.HourCost[i] = st.GridCost[i] -
			m.inputs.PVKW[i]*m.params.PVRevenue -
			st.EVKWh[i]*m.params.EVRevenue -
			m.inputs.WindKW[i]*m.params.WindRevenue +
			bat.penalty(st.BatteryKWh[i]) +
			ev.penalty(st.EVKWh[i])
	}
	return floats.Sum(st.HourCost), nil
}

// State exposes the simulation of the latest evaluation. The slices are
// reused by the next call to Evaluate; use Snapshot to retain them.
func (m *CostModel) State() model.HourlyState { return m.state }

// Snapshot returns a copy of the latest simulation state.
func (m *CostModel) Snapshot() model.HourlyState { return m.state.Clone() }
