// Package metrics defines the sink interface the simulation publishes its
// per-step records to. Implementations live under infra/metrics.
package metrics

import "github.com/voltsim/besstwin/core/sim"

// StepSink receives one record per simulation step.
type StepSink interface {
	RecordStep(rec sim.StepRecord) error
}

// NopSink discards all records.
type NopSink struct{}

// RecordStep implements StepSink.
func (NopSink) RecordStep(sim.StepRecord) error { return nil }
