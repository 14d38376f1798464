// Package env supplies ambient conditions to the simulation, either as
// fixed constants or from a historical weather provider.
package env

import "time"

// Conditions are the ambient inputs for one simulation step.
type Conditions struct {
	AmbientTempC       float64
	SolarIrradianceWM2 float64
}

// Provider resolves ambient conditions for a point in time.
type Provider interface {
	Conditions(at time.Time) (Conditions, error)
}

// Constant returns the same conditions for every query.
type Constant struct {
	Value Conditions
}

// Conditions implements Provider.
func (c Constant) Conditions(time.Time) (Conditions, error) {
	return c.Value, nil
}
