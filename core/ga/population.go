package ga

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Population is a fixed-size set of genomes stored in a single arena.
// Operators never modify their input: each returns a freshly allocated
// population.
type Population struct {
	size    int
	length  int
	bits    []uint8
	fitness []float64
}

// NewPopulation allocates a population of size zeroed genomes.
func NewPopulation(size, length int) *Population {
	return &Population{size: size, length: length, bits: make([]uint8, size*length)}
}

// RandomPopulation draws every bit uniformly from rng.
func RandomPopulation(size, length int, rng *rand.Rand) *Population {
	p := NewPopulation(size, length)
	for i := range p.bits {
		p.bits[i] = uint8(rng.Intn(2))
	}
	return p
}

// PopulationFrom copies the given genomes into a new population. All genomes
// must have the same length.
func PopulationFrom(genomes ...Genome) (*Population, error) {
	if len(genomes) == 0 {
		return NewPopulation(0, 0), nil
	}
	p := NewPopulation(len(genomes), len(genomes[0]))
	for i, g := range genomes {
		if len(g) != p.length {
			return nil, fmt.Errorf("genome %d: got %d bits, want %d: %w", i, len(g), p.length, ErrGenomeLength)
		}
		copy(p.Row(i), g)
	}
	return p, nil
}

// Size returns the number of individuals.
func (p *Population) Size() int { return p.size }

// GenomeLength returns the number of bits per individual.
func (p *Population) GenomeLength() int { return p.length }

// Row returns a view on the i-th genome. Writes through the view modify the
// population.
func (p *Population) Row(i int) Genome {
	start := i * p.length
	return Genome(p.bits[start : start+p.length : start+p.length])
}

// Fitness returns the fitness vector of the last evaluation, or nil.
func (p *Population) Fitness() []float64 { return p.fitness }

// Evaluate computes the fitness of every individual with fn.
func (p *Population) Evaluate(fn func(Genome) (float64, error)) error {
	fit := make([]float64, p.size)
	for i := range fit {
		f, err := fn(p.Row(i))
		if err != nil {
			return fmt.Errorf("individual %d: %w", i, err)
		}
		fit[i] = f
	}
	p.fitness = fit
	return nil
}

// Best returns a copy of the individual with the lowest fitness and that
// fitness. Ties resolve to the lowest index.
func (p *Population) Best() (Genome, float64) {
	if len(p.fitness) == 0 {
		return nil, math.Inf(1)
	}
	idx := 0
	for i := 1; i < len(p.fitness); i++ {
		if p.fitness[i] < p.fitness[idx] {
			idx = i
		}
	}
	return p.Row(idx).Clone(), p.fitness[idx]
}

func (p *Population) clone() *Population {
	cp := NewPopulation(p.size, p.length)
	copy(cp.bits, p.bits)
	return cp
}

// Select draws a new population by roulette wheel, favouring low fitness.
// Individual j weighs (worst + best - f[j]) / total. When the total fitness
// is not a positive finite number every individual weighs 1/n. Draws left
// over once the cumulative distribution is exhausted take the last individual.
func Select(p *Population, rng *rand.Rand) (*Population, error) {
	n := p.size
	if len(p.fitness) != n {
		return nil, ErrNotEvaluated
	}
	next := NewPopulation(n, p.length)
	if n == 0 {
		return next, nil
	}
	weights := make([]float64, n)
	total := floats.Sum(p.fitness)
	if total > 0 && !math.IsInf(total, 1) {
		worst, best := floats.Max(p.fitness), floats.Min(p.fitness)
		for j, f := range p.fitness {
			weights[j] = (worst + best - f) / total
		}
	} else {
		for j := range weights {
			weights[j] = 1 / float64(n)
		}
	}
	cumulative := floats.CumSum(make([]float64, n), weights)

	draws := make([]float64, n)
	for i := range draws {
		draws[i] = rng.Float64()
	}
	sort.Float64s(draws)

	fitIn, newIn := 0, 0
	for newIn < n && fitIn < n {
		if draws[newIn] < cumulative[fitIn] {
			copy(next.Row(newIn), p.Row(fitIn))
			newIn++
		} else {
			fitIn++
		}
	}
	for ; newIn < n; newIn++ {
		copy(next.Row(newIn), p.Row(n-1))
	}
	return next, nil
}

// Crossover pairs individuals (0,1), (2,3), ... and, with probability rate,
// swaps the tails of each pair after a uniformly drawn cut point in
// [0, length]. An odd last individual is copied unchanged.
func Crossover(p *Population, rate float64, rng *rand.Rand) *Population {
	next := p.clone()
	for i := 0; i+1 < p.size; i += 2 {
		if rng.Float64() >= rate {
			continue
		}
		cut := rng.Intn(p.length + 1)
		a, b := next.Row(i), next.Row(i+1)
		for j := cut; j < p.length; j++ {
			a[j], b[j] = b[j], a[j]
		}
	}
	return next
}

// Mutate flips one uniformly drawn bit of each individual with probability
// rate. When excludeLast is set the last individual is never mutated.
func Mutate(p *Population, rate float64, excludeLast bool, rng *rand.Rand) *Population {
	next := p.clone()
	if p.length == 0 {
		return next
	}
	limit := p.size
	if excludeLast {
		limit--
	}
	for i := 0; i < limit; i++ {
		if rng.Float64() >= rate {
			continue
		}
		row := next.Row(i)
		pos := rng.Intn(p.length)
		row[pos] ^= 1
	}
	return next
}
