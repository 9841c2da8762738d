package metrics

// MultiSink fans events out to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordGeneration forwards the event to all sinks, returning the first error encountered.
func (m *MultiSink) RecordGeneration(ev GenerationEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordGeneration(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordRun forwards finished runs to the sinks recording them.
func (m *MultiSink) RecordRun(ev RunEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(RunRecorder); ok {
			if err := rec.RecordRun(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordRunFailure forwards failures to the sinks recording them.
func (m *MultiSink) RecordRunFailure(ev RunFailureEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(RunFailureRecorder); ok {
			if err := rec.RecordRunFailure(ev); err != nil {
				return err
			}
		}
	}
	return nil
}
