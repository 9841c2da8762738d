// Package results defines where finished optimisation runs are delivered.
// Sinks are configured as a list of modules; several sinks are combined into
// a MultiSink.
package results

import (
	"context"
	"errors"

	"github.com/kilianp07/emsga/core/factory"
	"github.com/kilianp07/emsga/core/model"
)

// ErrNoRuns is returned by readers holding no run yet.
var ErrNoRuns = errors.New("no runs stored")

// Sink persists or publishes a finished run.
type Sink interface {
	Save(ctx context.Context, run model.Run) error
}

// Reader is implemented by sinks able to load runs back.
type Reader interface {
	Latest(ctx context.Context) (model.Run, error)
}

// NopSink discards runs.
type NopSink struct{}

func (NopSink) Save(context.Context, model.Run) error { return nil }

// MultiSink fans a run out to several sinks.
type MultiSink struct {
	Sinks []Sink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// Save forwards the run to every sink and joins their errors, so one failing
// sink does not prevent delivery to the others.
func (m *MultiSink) Save(ctx context.Context, run model.Run) error {
	var errs []error
	for _, s := range m.Sinks {
		if err := s.Save(ctx, run); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Latest returns the run of the first sink implementing Reader.
func (m *MultiSink) Latest(ctx context.Context) (model.Run, error) {
	for _, s := range m.Sinks {
		if r, ok := s.(Reader); ok {
			return r.Latest(ctx)
		}
	}
	return model.Run{}, ErrNoRuns
}

// Close closes every sink implementing io.Closer.
func (m *MultiSink) Close() error {
	var errs []error
	for _, s := range m.Sinks {
		if c, ok := s.(interface{ Close() error }); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

var registry = factory.NewRegistry[Sink]()

// Register adds a sink factory identified by name.
func Register(name string, f factory.Factory[Sink]) error {
	return registry.Register(name, f)
}

// NewSink creates a Sink from the provided configuration. No configuration
// yields a NopSink and several yield a MultiSink.
func NewSink(cfgs []factory.ModuleConfig) (Sink, error) {
	if len(cfgs) == 0 {
		return NopSink{}, nil
	}
	sinks := make([]Sink, 0, len(cfgs))
	for _, c := range cfgs {
		s, err := registry.Create(c)
		if err != nil {
			_ = NewMultiSink(sinks...).Close()
			return nil, err
		}
		sinks = append(sinks, s)
	}
	if len(sinks) == 1 {
		return sinks[0], nil
	}
	return NewMultiSink(sinks...), nil
}

func init() {
	_ = Register("nop", func(map[string]any) (Sink, error) { return NopSink{}, nil })
}
