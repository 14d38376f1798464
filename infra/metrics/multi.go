package metrics

import (
	coremetrics "github.com/voltsim/besstwin/core/metrics"
	"github.com/voltsim/besstwin/core/sim"
)

// MultiSink fans step records out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.StepSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.StepSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordStep forwards the record to all sinks, returning the first error
// encountered.
func (m *MultiSink) RecordStep(rec sim.StepRecord) error {
	for _, s := range m.Sinks {
		if err := s.RecordStep(rec); err != nil {
			return err
		}
	}
	return nil
}
