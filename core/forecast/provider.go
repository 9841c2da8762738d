package forecast

import (
	"context"

	"github.com/kilianp07/emsga/core/factory"
	"github.com/kilianp07/emsga/core/model"
)

// Provider supplies the forecasts for the next optimisation run.
type Provider interface {
	Inputs(ctx context.Context) (model.Inputs, error)
}

var registry = factory.NewRegistry[Provider]()

// Register adds a provider factory identified by name.
func Register(name string, f factory.Factory[Provider]) error {
	return registry.Register(name, f)
}

// New creates the provider described by cfg.
func New(cfg factory.ModuleConfig) (Provider, error) {
	return registry.Create(cfg)
}

// StaticProvider always returns the same forecasts.
type StaticProvider struct {
	Data model.Inputs
}

// Inputs returns a copy of the configured series after validating them.
func (s StaticProvider) Inputs(context.Context) (model.Inputs, error) {
	if err := s.Data.Validate(); err != nil {
		return model.Inputs{}, err
	}
	return s.Data.Clone(), nil
}

func init() {
	_ = Register("static", func(conf map[string]any) (Provider, error) {
		var in model.Inputs
		if err := factory.Decode(conf, &in); err != nil {
			return nil, err
		}
		if err := in.Validate(); err != nil {
			return nil, err
		}
		return StaticProvider{Data: in}, nil
	})
}
