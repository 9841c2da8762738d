// Package metrics defines the observability events emitted while schedules
// are optimised and the sinks that record them. Sinks implement
// MetricsSink and may implement the optional recorder interfaces.
package metrics
