// Package forecast defines how hourly load, generation and price forecasts
// reach the optimiser. Providers are built from configuration through the
// registry; concrete sources live in infra/forecast.
package forecast
