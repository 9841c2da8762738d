package ga

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// indexedPopulation returns n genomes of length bits where genome i encodes i
// in binary, so every row is distinct for n <= 2^bits.
func indexedPopulation(t *testing.T, n, bits int) *Population {
	t.Helper()
	p := NewPopulation(n, bits)
	for i := 0; i < n; i++ {
		row := p.Row(i)
		for b := 0; b < bits; b++ {
			row[b] = uint8((i >> b) & 1)
		}
	}
	return p
}

func setFitness(p *Population, fit []float64) {
	_ = p.Evaluate(func(Genome) (float64, error) { return 0, nil })
	copy(p.fitness, fit)
}

func rowIndex(p *Population, g Genome) int {
	for i := 0; i < p.Size(); i++ {
		if string(p.Row(i)) == string(g) {
			return i
		}
	}
	return -1
}

func TestPopulationFrom(t *testing.T) {
	p, err := PopulationFrom(Genome{0, 1}, Genome{1, 1})
	require.NoError(t, err)
	assert.Equal(t, 2, p.Size())
	assert.Equal(t, 2, p.GenomeLength())
	assert.Equal(t, Genome{1, 1}, p.Row(1))

	_, err = PopulationFrom(Genome{0, 1}, Genome{1})
	assert.ErrorIs(t, err, ErrGenomeLength)
}

func TestRandomPopulationBits(t *testing.T) {
	p := RandomPopulation(10, GenomeLength, newTestRand(1))
	ones := 0
	for i := 0; i < p.Size(); i++ {
		for _, b := range p.Row(i) {
			require.True(t, b == 0 || b == 1)
			ones += int(b)
		}
	}
	assert.InDelta(t, 0.5, float64(ones)/float64(10*GenomeLength), 0.05)
}

func TestPopulationBest(t *testing.T) {
	p := indexedPopulation(t, 4, 3)
	setFitness(p, []float64{5, 2, 9, 2})
	g, f := p.Best()
	assert.Equal(t, 2.0, f)
	assert.Equal(t, 1, rowIndex(p, g), "ties resolve to the lowest index")
	g[0] ^= 1
	assert.NotEqual(t, g, p.Row(1), "best must be a copy")
}

func TestSelect_PreservesSizeAndCopiesExisting(t *testing.T) {
	p := indexedPopulation(t, 16, 8)
	fit := make([]float64, 16)
	for i := range fit {
		fit[i] = float64(10 + i*3)
	}
	setFitness(p, fit)
	next, err := Select(p, newTestRand(42))
	require.NoError(t, err)
	require.Equal(t, p.Size(), next.Size())
	require.Equal(t, p.GenomeLength(), next.GenomeLength())
	for i := 0; i < next.Size(); i++ {
		assert.NotEqual(t, -1, rowIndex(p, next.Row(i)), "row %d is not from the parent population", i)
	}
	assert.Nil(t, next.Fitness())
}

func TestSelect_DominantIndividual(t *testing.T) {
	p := indexedPopulation(t, 3, 4)
	// weights 1, 1, 0: the first individual covers every draw
	setFitness(p, []float64{0, 0, 100})
	next, err := Select(p, newTestRand(7))
	require.NoError(t, err)
	for i := 0; i < next.Size(); i++ {
		assert.Equal(t, p.Row(0), next.Row(i))
	}
}

func TestSelect_ExhaustedDistributionFallsBackToLast(t *testing.T) {
	p := indexedPopulation(t, 10, 4)
	fit := []float64{1, 100, 100, 100, 100, 100, 100, 100, 100, 100}
	setFitness(p, fit)
	// cumulative weight tops out at 109/901, later draws take the last individual
	next, err := Select(p, newTestRand(11))
	require.NoError(t, err)
	last := 0
	for i := 0; i < next.Size(); i++ {
		idx := rowIndex(p, next.Row(i))
		require.NotEqual(t, -1, idx)
		if idx == 9 {
			last++
		}
	}
	assert.GreaterOrEqual(t, last, 5)
}

func TestSelect_ZeroTotalIsUniform(t *testing.T) {
	p := indexedPopulation(t, 8, 3)
	setFitness(p, make([]float64, 8))
	next, err := Select(p, newTestRand(5))
	require.NoError(t, err)
	require.Equal(t, 8, next.Size())
	for i := 0; i < next.Size(); i++ {
		assert.NotEqual(t, -1, rowIndex(p, next.Row(i)))
	}
}

func TestSelect_NotEvaluated(t *testing.T) {
	_, err := Select(NewPopulation(4, 4), newTestRand(1))
	assert.ErrorIs(t, err, ErrNotEvaluated)
}

func TestSelect_DoesNotModifyInput(t *testing.T) {
	p := RandomPopulation(12, 32, newTestRand(2))
	setFitness(p, []float64{3, 1, 4, 1, 5, 9, 2, 6, 5, 3, 5, 8})
	before := p.clone()
	_, err := Select(p, newTestRand(3))
	require.NoError(t, err)
	assert.Equal(t, before.bits, p.bits)
}

func TestCrossover_RateZeroIsIdentity(t *testing.T) {
	p := RandomPopulation(10, GenomeLength, newTestRand(4))
	next := Crossover(p, 0, newTestRand(5))
	require.Equal(t, p.Size(), next.Size())
	assert.Equal(t, p.bits, next.bits)
}

func TestCrossover_IdenticalParentsUnchanged(t *testing.T) {
	g := RandomPopulation(1, 64, newTestRand(6)).Row(0)
	p, err := PopulationFrom(g, g, g, g)
	require.NoError(t, err)
	next := Crossover(p, 1, newTestRand(7))
	assert.Equal(t, p.bits, next.bits)
}

func TestCrossover_SwapsTails(t *testing.T) {
	zeros := make(Genome, 50)
	ones := make(Genome, 50)
	for i := range ones {
		ones[i] = 1
	}
	p, err := PopulationFrom(zeros, ones, zeros)
	require.NoError(t, err)
	next := Crossover(p, 1, newTestRand(8))
	require.Equal(t, 3, next.Size())
	a, b := next.Row(0), next.Row(1)
	cut := -1
	for j := range a {
		require.Equal(t, uint8(1), a[j]+b[j], "bit %d must come from exactly one parent", j)
		if a[j] == 1 && cut == -1 {
			cut = j
		}
	}
	if cut != -1 {
		for j := cut; j < len(a); j++ {
			assert.Equal(t, uint8(1), a[j], "tail after the cut must be swapped")
		}
	}
	assert.Equal(t, zeros, next.Row(2), "odd last individual is copied")
	assert.Equal(t, zeros, p.Row(0), "input must not change")
}

func TestMutate_RateZeroIsIdentity(t *testing.T) {
	p := RandomPopulation(10, GenomeLength, newTestRand(9))
	next := Mutate(p, 0, true, newTestRand(10))
	assert.Equal(t, p.bits, next.bits)
}

func TestMutate_SingleBitFlips(t *testing.T) {
	p, err := PopulationFrom(Genome{0}, Genome{1})
	require.NoError(t, err)
	next := Mutate(p, 1, true, newTestRand(11))
	assert.Equal(t, Genome{1}, next.Row(0))
	assert.Equal(t, Genome{1}, next.Row(1), "last individual is excluded")

	next = Mutate(p, 1, false, newTestRand(12))
	assert.Equal(t, Genome{1}, next.Row(0))
	assert.Equal(t, Genome{0}, next.Row(1))
	assert.Equal(t, Genome{0}, p.Row(0), "input must not change")
}

func TestMutate_OneBitPerIndividual(t *testing.T) {
	p := RandomPopulation(6, GenomeLength, newTestRand(13))
	next := Mutate(p, 1, true, newTestRand(14))
	for i := 0; i < p.Size(); i++ {
		diff := 0
		for j := range p.Row(i) {
			if p.Row(i)[j] != next.Row(i)[j] {
				diff++
			}
		}
		if i == p.Size()-1 {
			assert.Zero(t, diff)
		} else {
			assert.Equal(t, 1, diff, "individual %d", i)
		}
	}
}
