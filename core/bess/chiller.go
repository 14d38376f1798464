package bess

// supplyFilterAlpha is the first-order filter coefficient pulling the
// supply temperature halfway toward the achievable value each step.
const supplyFilterAlpha = 0.5

// Chiller models the container cooling loop: a capacity-limited control
// loop converging the coolant supply temperature toward its setpoint.
type Chiller struct {
	MaxCoolingCapacityW float64
	TotalFlowRateM3PerS float64
	SupplySetpointC     float64

	// CurrentSupplyTempC is the filtered supply temperature; it becomes
	// the pack inlet temperature on the next step.
	CurrentSupplyTempC float64

	fluid FluidProps
}

func newChiller(spec ChillerSpec, fluid FluidProps) *Chiller {
	return &Chiller{
		MaxCoolingCapacityW: spec.MaxCoolingCapacityW,
		TotalFlowRateM3PerS: spec.FlowRateM3PerS,
		SupplySetpointC:     spec.SupplySetpointC,
		CurrentSupplyTempC:  spec.SupplySetpointC,
		fluid:               fluid,
	}
}

// UpdateSupplyTemperature advances the control loop for one step given the
// mixed coolant return temperature. Required removal is Q = m_dot*cp*dT,
// clamped by capacity; the achievable supply is floored at 0 degC and the
// filtered supply moves halfway toward it.
func (c *Chiller) UpdateSupplyTemperature(returnTempC float64) {
	flow := c.TotalFlowRateM3PerS
	if flow < 0 {
		flow = 0
	}
	mDot := c.fluid.DensityKgM3 * flow
	cp := c.fluid.SpecificHeatJKgK

	deltaT := returnTempC - c.SupplySetpointC
	if deltaT < 0 {
		deltaT = 0
	}
	qRequired := mDot * cp * deltaT
	qActual := qRequired
	if qActual > c.MaxCoolingCapacityW {
		qActual = c.MaxCoolingCapacityW
	}

	denom := mDot * cp
	if denom < 1e-6 {
		denom = 1e-6
	}
	achievableSupply := returnTempC - qActual/denom
	if achievableSupply < 0 {
		achievableSupply = 0
	}
	c.CurrentSupplyTempC = (1-supplyFilterAlpha)*c.CurrentSupplyTempC + supplyFilterAlpha*achievableSupply
}
