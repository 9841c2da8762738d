package ga

import (
	"errors"

	"github.com/kilianp07/emsga/core/model"
)

var (
	// ErrGenomeLength indicates a genome that does not hold GenomeLength bits.
	ErrGenomeLength = errors.New("genome length mismatch")
	// ErrSeriesLength indicates a forecast series not covering the horizon.
	ErrSeriesLength = model.ErrSeriesLength
	// ErrDecisionLength indicates a decision vector of the wrong size.
	ErrDecisionLength = model.ErrDecisionLength
	// ErrInvalidConfig is returned by Config.Validate.
	ErrInvalidConfig = errors.New("invalid ga config")
	// ErrNotEvaluated is returned when selecting from a population without fitness.
	ErrNotEvaluated = errors.New("population not evaluated")
)
