package ga

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/emsga/core/logger"
	"github.com/kilianp07/emsga/core/model"
)

// GenerationStats summarises one generation for observers.
type GenerationStats struct {
	RunID        string
	Generation   int
	BestCost     float64
	BestEverCost float64
	MeanCost     float64
}

// Observer is notified once per generation, synchronously.
type Observer func(GenerationStats)

// Result is the outcome of Engine.Run.
type Result struct {
	model.Run
	Seed   int64
	Genome Genome
}

// Engine runs the evolution loop. An Engine may run many times; each run
// owns its population and random source.
type Engine struct {
	cfg      Config
	params   Params
	log      logger.Logger
	observer Observer
}

// Option customises an Engine.
type Option func(*Engine)

// WithLogger sets the progress logger.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithObserver registers a per-generation callback.
func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observer = o }
}

// WithParams overrides the site parameters. The hour zero policy of the
// configuration still applies.
func WithParams(p Params) Option {
	return func(e *Engine) { e.params = p }
}

// NewEngine validates cfg and builds an engine using DefaultParams.
func NewEngine(cfg Config, opts ...Option) (*Engine, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{cfg: cfg, params: DefaultParams(), log: logger.Nop{}}
	for _, o := range opts {
		o(e)
	}
	e.params.HourZero = cfg.HourZero
	return e, nil
}

// Config returns the effective configuration.
func (e *Engine) Config() Config { return e.cfg }

// Run performs one complete optimisation against the given forecasts and
// returns the best schedule ever seen with the per-generation trace.
func (e *Engine) Run(in model.Inputs) (*Result, error) {
	costModel, err := NewCostModel(in, e.params)
	if err != nil {
		return nil, err
	}
	seed := e.cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	runID := uuid.NewString()
	started := time.Now()

	evaluate := func(g Genome) (float64, error) {
		x, err := Decode(g)
		if err != nil {
			return 0, err
		}
		return costModel.Evaluate(x)
	}

	pop := RandomPopulation(e.cfg.PopulationSize, GenomeLength, rng)
	trace := make([]float64, e.cfg.Generations)
	var best Genome
	bestCost := math.Inf(1)

	for gen := 0; gen < e.cfg.Generations; gen++ {
		if err := pop.Evaluate(evaluate); err != nil {
			return nil, fmt.Errorf("generation %d: %w", gen, err)
		}
		genBest, genCost := pop.Best()
		if best == nil || genCost < bestCost {
			best, bestCost = genBest, genCost
		}
		trace[gen] = genCost
		if e.observer != nil {
			e.observer(GenerationStats{
				RunID:        runID,
				Generation:   gen,
				BestCost:     genCost,
				BestEverCost: bestCost,
				MeanCost:     stat.Mean(pop.Fitness(), nil),
			})
		}
		if gen%e.cfg.LogEvery == 0 {
			e.log.Infof("run %s generation %d best cost %.3f", runID, gen, genCost)
		}

		selected, err := Select(pop, rng)
		if err != nil {
			return nil, fmt.Errorf("generation %d: %w", gen, err)
		}
		crossed := Crossover(selected, e.cfg.CrossoverRate, rng)
		pop = Mutate(crossed, e.cfg.MutationRate, !e.cfg.MutateLast, rng)

		if d := e.cfg.generationDelay(); d > 0 && gen < e.cfg.Generations-1 {
			time.Sleep(d)
		}
	}

	x, err := Decode(best)
	if err != nil {
		return nil, err
	}
	finalCost, err := costModel.Evaluate(x)
	if err != nil {
		return nil, err
	}
	schedule, err := model.ScheduleFromValues(x)
	if err != nil {
		return nil, err
	}
	res := &Result{
		Run: model.Run{
			ID:        runID,
			StartedAt: started,
			Duration:  time.Since(started),
			BestCost:  finalCost,
			Schedule:  schedule,
			State:     costModel.Snapshot(),
			Trace:     trace,
		},
		Seed:   seed,
		Genome: best,
	}
	e.log.Infof("run %s finished in %s, best cost %.3f", runID, res.Duration, finalCost)
	return res, nil
}
