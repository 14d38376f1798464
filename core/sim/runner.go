// Package sim drives a site through a run one step at a time and extracts
// the flat per-step records consumed by logging and export collaborators.
package sim

import (
	"github.com/voltsim/besstwin/core/bess"
	"github.com/voltsim/besstwin/core/testcycle"
)

// Runner advances a site step by step. It owns no goroutines: control
// returns to the caller after every step, and stopping is cooperative
// (stop calling Next).
type Runner struct {
	site        *bess.Site
	stepSeconds float64
	maxSteps    int

	steps   int
	stopped bool
}

// NewRunner creates a Runner over site. maxSteps zero or negative means no
// step budget; the run then ends only at the DONE state.
func NewRunner(site *bess.Site, stepSeconds float64, maxSteps int) *Runner {
	return &Runner{site: site, stepSeconds: stepSeconds, maxSteps: maxSteps}
}

// Next advances the simulation one step and returns the site, including
// the step that first reaches DONE. It returns ok=false once the run has
// ended. The returned pointer is the live mutated site, not a copy: a
// consumer must extract what it needs before calling Next again.
func (r *Runner) Next() (*bess.Site, bool) {
	if r.stopped {
		return nil, false
	}
	r.site.RunTimeStep(r.stepSeconds)
	r.steps++
	if r.site.TestState == testcycle.StateDone {
		r.stopped = true
	}
	if r.maxSteps > 0 && r.steps >= r.maxSteps {
		r.stopped = true
	}
	return r.site, true
}

// Steps returns the number of steps taken so far.
func (r *Runner) Steps() int { return r.steps }
