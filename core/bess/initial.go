package bess

import (
	"math/rand"
)

// SOCDistribution describes how per-cell initial SOC values are drawn at
// construction. This is the only point where randomness enters a site;
// every subsequent step is a deterministic function of state and Params.
type SOCDistribution struct {
	// Type is "uniform" or "normal". Uniform fills every cell with
	// MeanPercent; normal draws N(MeanPercent, StdDevPercent) clamped to
	// [MinPercent, MaxPercent].
	Type          string
	MeanPercent   float64
	StdDevPercent float64
	MinPercent    float64
	MaxPercent    float64
	// FloorFraction pins this share of cells to FloorSOC before sampling
	// the remainder. Zero disables the floor.
	FloorFraction float64
	FloorSOC      float64
}

// Sample draws n initial SOC values using the provided source. Results are
// shuffled so floored cells are not grouped.
func (d SOCDistribution) Sample(n int, rng *rand.Rand) []float64 {
	soc := make([]float64, n)
	if n == 0 {
		return soc
	}
	if d.Type == "uniform" {
		v := clamp(d.MeanPercent, 0.0, 100.0)
		for i := range soc {
			soc[i] = v
		}
		return soc
	}

	std := d.StdDevPercent
	if std < 1e-6 {
		std = 1e-6
	}
	frac := clamp(d.FloorFraction, 0.0, 1.0)
	floorCount := int(float64(n)*frac + 0.5)
	if floorCount > n {
		floorCount = n
	}
	for i := 0; i < floorCount; i++ {
		soc[i] = d.FloorSOC
	}
	for i := floorCount; i < n; i++ {
		soc[i] = clamp(d.MeanPercent+rng.NormFloat64()*std, d.MinPercent, d.MaxPercent)
	}
	rng.Shuffle(n, func(i, j int) {
		soc[i], soc[j] = soc[j], soc[i]
	})
	return soc
}

// DefaultSOCDistribution mirrors the measured delivery state: a spread
// with median 6.6% and roughly 40% of cells resting at the safe floor.
func DefaultSOCDistribution() SOCDistribution {
	return SOCDistribution{
		Type:          "normal",
		MeanPercent:   6.6,
		StdDevPercent: 1.2,
		MinPercent:    5.2,
		MaxPercent:    12.0,
		FloorFraction: 0.4,
		FloorSOC:      5.2,
	}
}
