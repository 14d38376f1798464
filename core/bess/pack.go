package bess

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// SOC pins applied by the voltage-band calibration. These model the BMS
// recalibration table, not physical charge flow; the exact values come from
// the vendor's L2 calibration map.
const (
	calibrateLowSOC  = 6.0
	calibrateHighSOC = 99.2
)

// voltageSumFloor guards the series-current division when every cell is
// fully depleted.
const voltageSumFloor = 1e-6

// Pack models one battery pack as flat per-cell state vectors plus coolant
// temperatures. Cells are wired in series and carry equal current; the
// shared current is the only cross-cell coupling.
type Pack struct {
	p *Params

	soc         []float64 // %, invariant 0 <= soc <= 100
	voltage     []float64 // V, always derived from soc via the curve
	temperature []float64 // degC
	current     []float64 // A

	CoolantInTempC  float64
	CoolantOutTempC float64

	lastTotalHeatW float64
	averageSOC     float64
}

// newPack builds a pack with the given initial per-cell SOC. Voltages are
// derived immediately so the cached state is consistent from step zero.
func newPack(p *Params, initialSOC []float64, cellTempC float64) *Pack {
	n := len(initialSOC)
	pk := &Pack{
		p:               p,
		soc:             initialSOC,
		voltage:         make([]float64, n),
		temperature:     make([]float64, n),
		current:         make([]float64, n),
		CoolantInTempC:  p.AmbientTempC,
		CoolantOutTempC: p.AmbientTempC,
	}
	p.Curve.VoltagesInto(pk.voltage, pk.soc)
	for i := range pk.temperature {
		pk.temperature[i] = cellTempC
	}
	pk.averageSOC = stat.Mean(pk.soc, nil)
	return pk
}

// Update applies one time step of powerW watts (positive charges) over
// dtSeconds: series current split, SOC integration, balancing bleed,
// voltage-band calibration and the heat cache.
func (pk *Pack) Update(powerW, dtSeconds float64) {
	p := pk.p
	n := len(pk.soc)
	if n == 0 {
		pk.lastTotalHeatW = 0
		return
	}

	p.Curve.VoltagesInto(pk.voltage, pk.soc)
	sumVoltage := floats.Sum(pk.voltage)
	denom := sumVoltage
	if denom <= voltageSumFloor {
		denom = voltageSumFloor
	}
	currentPerCell := powerW / denom
	for i := range pk.current {
		pk.current[i] = currentPerCell
	}

	// Coulomb counting: amp-seconds to Ah to percent of capacity.
	deltaSOC := (currentPerCell * dtSeconds / 3600.0) / p.CellCapacityAh * 100.0
	for i := range pk.soc {
		pk.soc[i] = clamp(pk.soc[i]+deltaSOC, 0.0, 100.0)
	}
	p.Curve.VoltagesInto(pk.voltage, pk.soc)

	bleedHeatW := pk.balance(dtSeconds)
	pk.calibrate()

	mainHeatW := currentPerCell * currentPerCell * p.CellResistanceOhms * float64(n)
	pk.lastTotalHeatW = mainHeatW + bleedHeatW
	pk.averageSOC = stat.Mean(pk.soc, nil)
}

// balance bleeds a constant current from every cell above the current mean
// when the mean sits inside the top or bottom balancing window. Returns the
// resistor heat added by the bled cells.
func (pk *Pack) balance(dtSeconds float64) float64 {
	p := pk.p
	avg := stat.Mean(pk.soc, nil)
	if avg < p.Balancing.TopStartSOC && avg > p.Balancing.BottomEndSOC {
		return 0
	}
	bleed := p.Balancing.BleedCurrentA
	if bleed <= 0 {
		return 0
	}
	bleedDeltaSOC := (bleed * dtSeconds / 3600.0) / p.CellCapacityAh * 100.0
	bledCount := 0
	for i, s := range pk.soc {
		if s > avg {
			v := s - bleedDeltaSOC
			if v < 0 {
				v = 0
			}
			pk.soc[i] = v
			bledCount++
		}
	}
	if bledCount == 0 {
		return 0
	}
	for i := range pk.soc {
		pk.soc[i] = clamp(pk.soc[i], 0.0, 100.0)
	}
	p.Curve.VoltagesInto(pk.voltage, pk.soc)
	return bleed * bleed * p.CellResistanceOhms * float64(bledCount)
}

// calibrate applies the one-directional voltage-band clamps: a floor is
// only ever raised, a ceiling only ever lowered. Voltages are not refreshed
// here; the next Update recomputes them before they are read.
func (pk *Pack) calibrate() {
	bms := pk.p.BMS
	for i, v := range pk.voltage {
		s := pk.soc[i]
		if v <= bms.CutoffLowVoltage {
			if s < bms.MinSafeSOC {
				s = bms.MinSafeSOC
			}
		} else if v <= bms.CalibrateLowVoltage {
			if s < calibrateLowSOC {
				s = calibrateLowSOC
			}
		}
		if v >= bms.CutoffHighVoltage {
			if s > 100.0 {
				s = 100.0
			}
		} else if v >= bms.CalibrateHighVoltage {
			if s > calibrateHighSOC {
				s = calibrateHighSOC
			}
		}
		pk.soc[i] = clamp(s, 0.0, 100.0)
	}
}

// TotalHeatW returns the heat cached by the last Update.
func (pk *Pack) TotalHeatW() float64 { return pk.lastTotalHeatW }

// AverageSOC returns the cached mean cell SOC in percent.
func (pk *Pack) AverageSOC() float64 { return pk.averageSOC }

// VoltageExtrema returns the minimum and maximum cached cell voltages.
func (pk *Pack) VoltageExtrema() (minV, maxV float64) {
	if len(pk.voltage) == 0 {
		return 0, 0
	}
	return floats.Min(pk.voltage), floats.Max(pk.voltage)
}

// NumCells returns the pack's cell count.
func (pk *Pack) NumCells() int { return len(pk.soc) }
