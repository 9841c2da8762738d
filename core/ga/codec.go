package ga

import (
	"fmt"
	"math"

	"github.com/kilianp07/emsga/core/model"
)

const (
	// FieldBits is the number of bits encoding one decision variable.
	FieldBits = 14
	// GenomeLength is the number of bits of a complete genome.
	GenomeLength = model.DecisionCount * FieldBits
)

// Genome is a bit string, one byte per bit holding 0 or 1.
type Genome []uint8

// Clone returns an independent copy of the genome.
func (g Genome) Clone() Genome {
	cp := make(Genome, len(g))
	copy(cp, g)
	return cp
}

// fieldWeights[i] is 2^(9-i). The last four positions carry fractional
// weights, so a field spans [0, 1023.9375].
var fieldWeights = func() [FieldBits]float64 {
	var w [FieldBits]float64
	for i := range w {
		w[i] = math.Ldexp(1, 9-i)
	}
	return w
}()

// Decode converts a genome into its 48 decision variables: 24 battery powers
// in [-50, 150) kW followed by 24 EV powers in [0, 50) kW. A row taken from
// a Population is accepted as is.
func Decode(g Genome) ([]float64, error) {
	if len(g) != GenomeLength {
		return nil, fmt.Errorf("decode: got %d bits, want %d: %w", len(g), GenomeLength, ErrGenomeLength)
	}
	out := make([]float64, model.DecisionCount)
	for k := range out {
		field := g[k*FieldBits : (k+1)*FieldBits]
		raw := 0.0
		for i, bit := range field {
			raw += fieldWeights[i] * float64(bit)
		}
		if k < model.Horizon {
			out[k] = raw/512*100 - 50
		} else {
			out[k] = raw / 1024 * 50
		}
	}
	return out, nil
}

// DecodeSchedule decodes g and splits the values into a Schedule.
func DecodeSchedule(g Genome) (model.Schedule, error) {
	x, err := Decode(g)
	if err != nil {
		return model.Schedule{}, err
	}
	return model.ScheduleFromValues(x)
}
