package bess

import (
	"fmt"

	"gonum.org/v1/gonum/interp"
)

// CurvePoint is one breakpoint of the empirical SOC to voltage curve.
type CurvePoint struct {
	SOCPercent float64
	Voltage    float64
}

// VoltageCurve performs piecewise-linear interpolation of cell voltage from
// SOC. Inputs are clamped to the breakpoint range, so queries beyond the
// last breakpoint return its voltage.
type VoltageCurve struct {
	pl       interp.PiecewiseLinear
	min, max float64
}

// NewVoltageCurve builds a curve from breakpoints ordered by strictly
// increasing SOC. At least two points are required.
func NewVoltageCurve(points []CurvePoint) (VoltageCurve, error) {
	if len(points) < 2 {
		return VoltageCurve{}, fmt.Errorf("voltage curve needs at least 2 points, got %d", len(points))
	}
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		if i > 0 && p.SOCPercent <= points[i-1].SOCPercent {
			return VoltageCurve{}, fmt.Errorf("curve SOC values must be strictly increasing at index %d", i)
		}
		xs[i] = p.SOCPercent
		ys[i] = p.Voltage
	}
	var pl interp.PiecewiseLinear
	if err := pl.Fit(xs, ys); err != nil {
		return VoltageCurve{}, fmt.Errorf("fit voltage curve: %w", err)
	}
	return VoltageCurve{pl: pl, min: xs[0], max: xs[len(xs)-1]}, nil
}

// Voltage returns the interpolated voltage for one SOC value.
func (c VoltageCurve) Voltage(socPercent float64) float64 {
	return c.pl.Predict(clamp(socPercent, c.min, c.max))
}

// VoltagesInto interpolates a batch of SOC values into dst. It applies the
// scalar lookup per element, so scalar and batch results are identical for
// any input. dst and soc must have equal length.
func (c VoltageCurve) VoltagesInto(dst, soc []float64) {
	for i, s := range soc {
		dst[i] = c.pl.Predict(clamp(s, c.min, c.max))
	}
}

// DefaultVoltageCurve returns the approximate LFP curve of the test-site
// cells.
func DefaultVoltageCurve() VoltageCurve {
	c, err := NewVoltageCurve(DefaultCurvePoints())
	if err != nil {
		panic(err) // static table, cannot fail
	}
	return c
}

// DefaultCurvePoints returns the built-in breakpoint table.
func DefaultCurvePoints() []CurvePoint {
	return []CurvePoint{
		{0.0, 2.50},
		{5.0, 2.80},
		{10.0, 3.10},
		{20.0, 3.20},
		{30.0, 3.25},
		{40.0, 3.30},
		{50.0, 3.32},
		{60.0, 3.35},
		{70.0, 3.40},
		{80.0, 3.45},
		{90.0, 3.55},
		{95.0, 3.60},
		{100.0, 3.65},
	}
}
