package bess

// BMSThresholds carries the voltage calibration bands and SOC safety limits
// shared by every pack and inverter group. Values are immutable after
// construction.
type BMSThresholds struct {
	CalibrateLowVoltage  float64 // V, SOC floored to the low calibration pin below this
	CutoffLowVoltage     float64 // V, SOC floored to MinSafeSOC below this
	CalibrateHighVoltage float64 // V, SOC ceilinged to the high calibration pin above this
	CutoffHighVoltage    float64 // V, SOC ceilinged to 100 above this
	MinSafeSOC           float64 // %
	MaxSafeSOC           float64 // %
	// VoltageInterlock selects cell-voltage based weak-link cutoffs.
	// When false, container SOC thresholds are checked instead.
	VoltageInterlock bool
}

// BalancingParams configures the resistor-bleed balancing windows.
type BalancingParams struct {
	TopStartSOC   float64 // %, balancing active at or above this mean SOC
	BottomEndSOC  float64 // %, balancing active at or below this mean SOC
	BleedCurrentA float64 // A per bled cell
}

// FluidProps describes the coolant (50% ethylene glycol by default).
type FluidProps struct {
	DensityKgM3      float64
	SpecificHeatJKgK float64
}

// ChillerSpec sizes the per-container chiller.
type ChillerSpec struct {
	MaxCoolingCapacityW float64
	FlowRateM3PerS      float64
	SupplySetpointC     float64
}

// Params is the immutable configuration shared by every component of a
// site tree. It is passed once at construction; components never consult
// global state.
type Params struct {
	Curve VoltageCurve

	CellCapacityAh     float64
	CellResistanceOhms float64

	CellsPerPack      int
	PacksPerRack      int
	RacksPerContainer int

	BMS       BMSThresholds
	Balancing BalancingParams
	Fluid     FluidProps
	Chiller   ChillerSpec

	AmbientTempC     float64
	InitialCellTempC float64
}

// DefaultParams returns parameters matching the 40MW test-site design.
func DefaultParams() Params {
	return Params{
		Curve:              DefaultVoltageCurve(),
		CellCapacityAh:     300.0,
		CellResistanceOhms: 0.0005,
		CellsPerPack:       44,
		PacksPerRack:       9,
		RacksPerContainer:  9,
		BMS: BMSThresholds{
			CalibrateLowVoltage:  3.0,
			CutoffLowVoltage:     2.8,
			CalibrateHighVoltage: 3.45,
			CutoffHighVoltage:    3.6,
			MinSafeSOC:           5.2,
			MaxSafeSOC:           100.0,
			VoltageInterlock:     true,
		},
		Balancing: BalancingParams{
			TopStartSOC:   94.0,
			BottomEndSOC:  6.0,
			BleedCurrentA: 0.6,
		},
		Fluid: FluidProps{
			DensityKgM3:      1075,
			SpecificHeatJKgK: 3500,
		},
		Chiller: ChillerSpec{
			MaxCoolingCapacityW: 40700.0,
			FlowRateM3PerS:      0.02,
			SupplySetpointC:     20.0,
		},
		AmbientTempC:     35.0,
		InitialCellTempC: 35.0,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
