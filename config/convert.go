package config

import (
	"github.com/voltsim/besstwin/core/bess"
	"github.com/voltsim/besstwin/core/env"
	"github.com/voltsim/besstwin/core/testcycle"
)

// BessParams assembles the immutable simulation parameters. A curve that
// fails to fit falls back to the built-in table.
func (c *Config) BessParams() (bess.Params, error) {
	p := bess.DefaultParams()

	if len(c.Cell.Curve) >= 2 {
		points := make([]bess.CurvePoint, len(c.Cell.Curve))
		for i, cp := range c.Cell.Curve {
			points[i] = bess.CurvePoint{SOCPercent: cp.SOCPercent, Voltage: cp.Voltage}
		}
		curve, err := bess.NewVoltageCurve(points)
		if err != nil {
			return p, err
		}
		p.Curve = curve
	}

	p.CellCapacityAh = c.Cell.CapacityAh
	p.CellResistanceOhms = c.Cell.InternalResistanceOhms
	p.CellsPerPack = c.Layout.CellsPerPack
	p.PacksPerRack = c.Layout.PacksPerRack
	p.RacksPerContainer = c.Layout.RacksPerContainer

	p.BMS = bess.BMSThresholds{
		CalibrateLowVoltage:  c.BMS.CalibrateLowVoltage,
		CutoffLowVoltage:     c.BMS.CutoffLowVoltage,
		CalibrateHighVoltage: c.BMS.CalibrateHighVoltage,
		CutoffHighVoltage:    c.BMS.CutoffHighVoltage,
		MinSafeSOC:           c.BMS.MinSafeSOC,
		MaxSafeSOC:           c.BMS.MaxSafeSOC,
		VoltageInterlock:     c.BMS.VoltageInterlock == nil || *c.BMS.VoltageInterlock,
	}
	p.Balancing = bess.BalancingParams{
		TopStartSOC:   c.Balancing.TopStartSOC,
		BottomEndSOC:  c.Balancing.BottomEndSOC,
		BleedCurrentA: c.Balancing.BleedCurrentA,
	}
	p.Fluid = bess.FluidProps{
		DensityKgM3:      c.Fluid.DensityKgM3,
		SpecificHeatJKgK: c.Fluid.SpecificHeatJKgK,
	}
	p.Chiller = bess.ChillerSpec{
		MaxCoolingCapacityW: c.Chiller.MaxCoolingCapacityW,
		FlowRateM3PerS:      c.Chiller.FlowRateM3PerS,
		SupplySetpointC:     c.Chiller.SupplySetpointC,
	}
	p.AmbientTempC = c.Environment.AmbientTempC
	p.InitialCellTempC = c.InitialState.CellTemperatureC
	return p, nil
}

// SiteLayout converts the layout section.
func (c *Config) SiteLayout() bess.Layout {
	return bess.Layout{
		GroupContainerCounts: c.Layout.GroupContainerCounts,
		NumGroups:            c.Layout.NumGroups,
		ContainersPerGroup:   c.Layout.ContainersPerGroup,
	}
}

// Distribution converts the initial-state section. The safe floor tracks
// the configured minimum SOC.
func (c *Config) Distribution() bess.SOCDistribution {
	return bess.SOCDistribution{
		Type:          c.InitialState.Distribution,
		MeanPercent:   c.InitialState.MeanPercent,
		StdDevPercent: c.InitialState.StdDevPercent,
		MinPercent:    c.InitialState.MinPercent,
		MaxPercent:    c.InitialState.MaxPercent,
		FloorFraction: c.InitialState.FloorFraction,
		FloorSOC:      c.InitialState.MinPercent,
	}
}

// Plan selects the test plan: a non-empty sequence replaces the built-in
// cycle.
func (c *Config) Plan() testcycle.Plan {
	if len(c.Sequence) > 0 {
		steps := make([]testcycle.SequenceStep, len(c.Sequence))
		for i, s := range c.Sequence {
			step := testcycle.SequenceStep{
				Name:            s.StepName,
				DurationSeconds: s.DurationSeconds,
				DurationMinutes: s.DurationMinutes,
				DurationHours:   s.DurationHours,
				Power: testcycle.PowerCommand{
					Type:        s.PowerCommand.CommandType,
					RealPowerMW: s.PowerCommand.RealPowerMW,
				},
			}
			if s.TaperSettings != nil {
				step.Taper = &testcycle.TaperSettings{EndPowerMW: s.TaperSettings.EndPowerMW}
			}
			steps[i] = step
		}
		return testcycle.NewInterpreter(steps)
	}
	return testcycle.NewMachine(testcycle.CycleParams{
		SiteTargetPowerMW:          c.Cycle.SiteTargetPowerMW,
		RampDurationS:              c.Cycle.RampDurationS,
		ChargeTaperDurationS:       c.Cycle.ChargeTaperDurationS,
		DischargeTaperDurationS:    c.Cycle.DischargeTaperDurationS,
		ChargeTaperSOCThreshold:    c.Cycle.ChargeTaperSOCThreshold,
		DischargeTaperSOCThreshold: c.Cycle.DischargeTaperSOCThreshold,
		HeatSoakDurationHours:      c.Cycle.HeatSoakDurationHours,
	})
}

// AmbientConditions is the constant-mode environment value, also used as
// the historical provider's fallback.
func (c *Config) AmbientConditions() env.Conditions {
	return env.Conditions{
		AmbientTempC:       c.Environment.AmbientTempC,
		SolarIrradianceWM2: c.Environment.SolarIrradianceWM2,
	}
}
