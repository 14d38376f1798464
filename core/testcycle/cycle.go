package testcycle

// CycleParams configures the built-in full test cycle.
type CycleParams struct {
	SiteTargetPowerMW          float64
	RampDurationS              float64
	ChargeTaperDurationS       float64
	DischargeTaperDurationS    float64
	ChargeTaperSOCThreshold    float64 // %, CONST_CHARGE exits when any container reaches it
	DischargeTaperSOCThreshold float64 // %, CONST_DISCHARGE exits when any container falls to it
	HeatSoakDurationHours      float64
}

// DefaultCycleParams returns the standard commissioning cycle parameters.
func DefaultCycleParams() CycleParams {
	return CycleParams{
		SiteTargetPowerMW:          40.0,
		RampDurationS:              30,
		ChargeTaperDurationS:       60,
		DischargeTaperDurationS:    60,
		ChargeTaperSOCThreshold:    98.0,
		DischargeTaperSOCThreshold: 8.0,
		HeatSoakDurationHours:      2.0,
	}
}

// Machine is the built-in test-cycle state machine:
// IDLE -> INIT -> RAMP_CHARGE -> CONST_CHARGE -> TAPER_TO_REST -> HEAT_SOAK
// -> RAMP_DISCHARGE -> CONST_DISCHARGE -> TAPER_TO_FINISH -> DONE.
// Each Advance handles exactly one state; transitions take effect on the
// following step. State time resets on entry and advances by dt after the
// target is evaluated.
type Machine struct {
	params CycleParams

	state      string
	stateTimeS float64
	targetMW   float64
}

// NewMachine creates a Machine in the IDLE state.
func NewMachine(p CycleParams) *Machine {
	return &Machine{params: p, state: StateIdle}
}

// State returns the current state label.
func (m *Machine) State() string { return m.state }

// Advance implements Plan.
func (m *Machine) Advance(dtSeconds float64, probe ContainerProbe) Status {
	p := m.params
	switch m.state {
	case StateIdle:
		m.transition(StateInit, 0)
	case StateInit:
		m.transition(StateRampCharge, 0)
	case StateRampCharge:
		frac := rampFraction(m.stateTimeS, p.RampDurationS)
		m.targetMW = frac * p.SiteTargetPowerMW
		if m.stateTimeS >= p.RampDurationS {
			m.transition(StateConstCharge, p.SiteTargetPowerMW)
		}
	case StateConstCharge:
		m.targetMW = p.SiteTargetPowerMW
		if probe != nil && probe.AnyContainerSOCAtOrAbove(p.ChargeTaperSOCThreshold) {
			m.state = StateTaperToRest
			m.stateTimeS = 0
			return m.status(dtSeconds)
		}
	case StateTaperToRest:
		frac := rampFraction(m.stateTimeS, p.ChargeTaperDurationS)
		m.targetMW = (1 - frac) * p.SiteTargetPowerMW
		if m.stateTimeS >= p.ChargeTaperDurationS {
			m.transition(StateHeatSoak, 0)
		}
	case StateHeatSoak:
		m.targetMW = 0
		if m.stateTimeS >= p.HeatSoakDurationHours*3600 {
			m.state = StateRampDischarge
			m.stateTimeS = 0
			return m.status(dtSeconds)
		}
	case StateRampDischarge:
		frac := rampFraction(m.stateTimeS, p.RampDurationS)
		m.targetMW = -frac * p.SiteTargetPowerMW
		if m.stateTimeS >= p.RampDurationS {
			m.transition(StateConstDischarge, -p.SiteTargetPowerMW)
		}
	case StateConstDischarge:
		m.targetMW = -p.SiteTargetPowerMW
		if probe != nil && probe.AnyContainerSOCAtOrBelow(p.DischargeTaperSOCThreshold) {
			m.state = StateTaperToFinish
			m.stateTimeS = 0
			return m.status(dtSeconds)
		}
	case StateTaperToFinish:
		frac := rampFraction(m.stateTimeS, p.DischargeTaperDurationS)
		m.targetMW = (1 - frac) * -p.SiteTargetPowerMW
		if m.stateTimeS >= p.DischargeTaperDurationS {
			m.transition(StateDone, 0)
		}
	case StateDone:
		m.targetMW = 0
	}
	return m.status(dtSeconds)
}

func (m *Machine) transition(state string, targetMW float64) {
	m.state = state
	m.stateTimeS = 0
	m.targetMW = targetMW
}

func (m *Machine) status(dtSeconds float64) Status {
	m.stateTimeS += dtSeconds
	return Status{State: m.state, TargetPowerMW: m.targetMW, StateTimeS: m.stateTimeS}
}

// rampFraction is the elapsed fraction of a linear ramp, clamped to [0,1].
// Durations under one second use a one-second divisor, so a ramp is never
// instantaneous.
func rampFraction(elapsedS, durationS float64) float64 {
	d := durationS
	if d < 1 {
		d = 1
	}
	f := elapsedS / d
	if f > 1 {
		return 1
	}
	if f < 0 {
		return 0
	}
	return f
}
