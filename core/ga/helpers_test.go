package ga

import (
	"math"
	"math/rand"

	"github.com/kilianp07/emsga/core/model"
)

func newTestRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

func constSeries(v float64) []float64 {
	s := make([]float64, model.Horizon)
	for i := range s {
		s[i] = v
	}
	return s
}

func zeroInputs() model.Inputs {
	return model.Inputs{
		LoadKW: constSeries(0),
		PVKW:   constSeries(0),
		WindKW: constSeries(0),
		Price:  constSeries(0),
	}
}

// sampleInputs returns a day with a morning and evening load peak, PV around
// noon and a two-level tariff.
func sampleInputs() model.Inputs {
	in := zeroInputs()
	for h := 0; h < model.Horizon; h++ {
		in.LoadKW[h] = 40 + 25*math.Exp(-math.Pow(float64(h-8), 2)/8) + 35*math.Exp(-math.Pow(float64(h-19), 2)/6)
		in.PVKW[h] = math.Max(0, 60*math.Sin(math.Pi*float64(h-6)/12))
		in.WindKW[h] = 10 + 5*math.Cos(float64(h)/4)
		in.Price[h] = 0.12
		if h >= 8 && h < 22 {
			in.Price[h] = 0.25
		}
	}
	return in
}
