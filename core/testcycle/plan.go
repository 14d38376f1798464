// Package testcycle produces the per-step site power target, either from
// the built-in commissioning cycle or from an externally supplied sequence
// of test steps. A site holds exactly one Plan, selected at construction.
package testcycle

// Built-in cycle state labels. StateDone is terminal for both plan kinds.
const (
	StateIdle           = "IDLE"
	StateInit           = "INIT"
	StateRampCharge     = "RAMP_CHARGE"
	StateConstCharge    = "CONST_CHARGE"
	StateTaperToRest    = "TAPER_TO_REST"
	StateHeatSoak       = "HEAT_SOAK"
	StateRampDischarge  = "RAMP_DISCHARGE"
	StateConstDischarge = "CONST_DISCHARGE"
	StateTaperToFinish  = "TAPER_TO_FINISH"
	StateDone           = "DONE"

	// StateSequence is reported by a sequence step with no name of its own.
	StateSequence = "SEQUENCE"
)

// ContainerProbe exposes the container SOC checks the built-in cycle needs
// to decide its taper transitions.
type ContainerProbe interface {
	AnyContainerSOCAtOrAbove(percent float64) bool
	AnyContainerSOCAtOrBelow(percent float64) bool
}

// Status is the outcome of advancing a plan by one time step.
type Status struct {
	State string
	// TargetPowerMW is the site power target; positive charges.
	TargetPowerMW float64
	// StateTimeS is the time spent in the reported state, including the
	// step just taken.
	StateTimeS float64
}

// Plan is the single advance operation shared by both plan kinds.
type Plan interface {
	// Advance evaluates the plan for one step of dtSeconds.
	Advance(dtSeconds float64, probe ContainerProbe) Status
	// State returns the current state label without advancing.
	State() string
}
