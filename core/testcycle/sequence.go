package testcycle

// PowerCommandIdle and PowerCommandReal are the recognized sequence power
// command types.
const (
	PowerCommandIdle = "idle"
	PowerCommandReal = "real"
)

// PowerCommand is a sequence step's power request in the external sign
// convention (negative = charge); it is negated on evaluation.
type PowerCommand struct {
	Type        string
	RealPowerMW float64
}

// TaperSettings ramps a step's target linearly from its base value to
// EndPowerMW over the step duration.
type TaperSettings struct {
	EndPowerMW float64
}

// SequenceStep is one entry of an externally supplied test sequence. The
// first present duration unit wins: seconds, then minutes, then hours.
type SequenceStep struct {
	Name            string
	DurationSeconds float64
	DurationMinutes float64
	DurationHours   float64
	Power           PowerCommand
	Taper           *TaperSettings
}

// DurationS resolves the step duration in seconds, floored at zero.
func (s SequenceStep) DurationS() float64 {
	var d float64
	switch {
	case s.DurationSeconds != 0:
		d = s.DurationSeconds
	case s.DurationMinutes != 0:
		d = s.DurationMinutes * 60
	case s.DurationHours != 0:
		d = s.DurationHours * 3600
	}
	if d < 0 {
		return 0
	}
	return d
}

// targetMW is the step's base target in the internal convention.
func (s SequenceStep) targetMW() float64 {
	if s.Power.Type == PowerCommandReal {
		return -s.Power.RealPowerMW
	}
	return 0
}

// Interpreter walks an ordered step list, holding each step's target for
// its duration. Exhausting the list reports DONE with target zero.
type Interpreter struct {
	steps    []SequenceStep
	index    int
	elapsedS float64
}

// NewInterpreter creates an Interpreter over steps. The list is fixed for
// the interpreter's lifetime.
func NewInterpreter(steps []SequenceStep) *Interpreter {
	return &Interpreter{steps: steps}
}

// State returns the active step's name, or DONE past the end.
func (it *Interpreter) State() string {
	if it.index >= len(it.steps) {
		return StateDone
	}
	return stepName(it.steps[it.index])
}

// Advance implements Plan. The probe is unused: sequence steps run on time
// alone.
func (it *Interpreter) Advance(dtSeconds float64, _ ContainerProbe) Status {
	if it.index >= len(it.steps) {
		return Status{State: StateDone, TargetPowerMW: 0, StateTimeS: it.elapsedS}
	}
	step := it.steps[it.index]
	durS := step.DurationS()

	targetMW := step.targetMW()
	if step.Taper != nil && durS > 0 {
		frac := rampFraction(it.elapsedS, durS)
		targetMW = (1-frac)*targetMW + frac*step.Taper.EndPowerMW
	}

	st := Status{State: stepName(step), TargetPowerMW: targetMW, StateTimeS: it.elapsedS}
	it.elapsedS += dtSeconds
	if it.elapsedS >= durS {
		it.index++
		it.elapsedS = 0
	}
	return st
}

func stepName(s SequenceStep) string {
	if s.Name == "" {
		return StateSequence
	}
	return s.Name
}
