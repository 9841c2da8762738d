package model

import (
	"errors"
	"fmt"
)

// Horizon is the number of hourly slots covered by one optimisation run.
const Horizon = 24

// ErrSeriesLength is returned when a forecast series does not cover the horizon.
var ErrSeriesLength = errors.New("series length mismatch")

// Inputs holds the hourly forecasts an optimisation run is computed against.
// All series are expressed per hour: power in kW and price per kWh.
type Inputs struct {
	LoadKW []float64 `json:"load_kw" yaml:"load_kw"`
	PVKW   []float64 `json:"pv_kw" yaml:"pv_kw"`
	WindKW []float64 `json:"wind_kw" yaml:"wind_kw"`
	Price  []float64 `json:"price" yaml:"price"`
}

// Validate ensures every series covers exactly Horizon hours.
func (in Inputs) Validate() error {
	series := []struct {
		name string
		data []float64
	}{
		{"load", in.LoadKW},
		{"pv", in.PVKW},
		{"wind", in.WindKW},
		{"price", in.Price},
	}
	for _, s := range series {
		if len(s.data) != Horizon {
			return fmt.Errorf("%s: got %d values, want %d: %w", s.name, len(s.data), Horizon, ErrSeriesLength)
		}
	}
	return nil
}

// Residual returns the local surplus per hour: generation minus load.
func (in Inputs) Residual(hour int) float64 {
	return -in.LoadKW[hour] + in.PVKW[hour] + in.WindKW[hour]
}

// Clone returns a deep copy of the inputs.
func (in Inputs) Clone() Inputs {
	return Inputs{
		LoadKW: cloneFloats(in.LoadKW),
		PVKW:   cloneFloats(in.PVKW),
		WindKW: cloneFloats(in.WindKW),
		Price:  cloneFloats(in.Price),
	}
}

func cloneFloats(s []float64) []float64 {
	if s == nil {
		return nil
	}
	cp := make([]float64, len(s))
	copy(cp, s)
	return cp
}
