package bess

import "math"

// Container owns racks plus one chiller. Power splits equally across racks
// and the container SOC rolls up as the mean of rack means; the thermal
// model runs after every electrical update.
type Container struct {
	ID      string
	Racks   []*Rack
	Chiller *Chiller

	p   *Params
	soc float64
}

func newContainer(id string, p *Params, racks []*Rack) *Container {
	c := &Container{
		ID:      id,
		Racks:   racks,
		Chiller: newChiller(p.Chiller, p.Fluid),
		p:       p,
	}
	c.soc = meanRackSOC(racks)
	return c
}

// Update distributes powerW equally across racks, refreshes the SOC rollup
// and runs the thermal pass.
func (c *Container) Update(powerW, dtSeconds float64) {
	if len(c.Racks) == 0 {
		return
	}
	perRack := powerW / float64(len(c.Racks))
	total := 0.0
	for _, r := range c.Racks {
		r.Update(perRack, dtSeconds)
		total += r.AverageSOC()
	}
	c.soc = total / float64(len(c.Racks))
	c.updateThermal()
}

// updateThermal splits the chiller flow equally across all packs, computes
// each pack's outlet temperature from its cached heat and feeds the mixed
// return back into the chiller loop.
func (c *Container) updateThermal() {
	numPacks := 0
	for _, r := range c.Racks {
		numPacks += len(r.Packs)
	}

	supply := c.Chiller.CurrentSupplyTempC
	returnTemp := supply
	if numPacks > 0 {
		divisor := numPacks
		if divisor < 1 {
			divisor = 1
		}
		flowPerPack := c.Chiller.TotalFlowRateM3PerS / float64(divisor)
		mDotPerPack := flowPerPack * c.p.Fluid.DensityKgM3
		denom := mDotPerPack * c.p.Fluid.SpecificHeatJKgK
		if denom < 1e-6 {
			denom = 1e-6
		}
		sumOut := 0.0
		for _, r := range c.Racks {
			for _, pk := range r.Packs {
				out := supply + pk.TotalHeatW()/denom
				pk.CoolantInTempC = supply
				pk.CoolantOutTempC = out
				sumOut += out
			}
		}
		returnTemp = sumOut / float64(numPacks)
	}
	c.Chiller.UpdateSupplyTemperature(returnTemp)
}

// SOC returns the cached container SOC rollup in percent.
func (c *Container) SOC() float64 { return c.soc }

// VoltageExtrema returns the minimum and maximum cell voltage across all
// packs, or (0, 0) for an empty container.
func (c *Container) VoltageExtrema() (minV, maxV float64) {
	minV = math.Inf(1)
	maxV = math.Inf(-1)
	found := false
	for _, r := range c.Racks {
		for _, pk := range r.Packs {
			if pk.NumCells() == 0 {
				continue
			}
			pMin, pMax := pk.VoltageExtrema()
			if pMin < minV {
				minV = pMin
			}
			if pMax > maxV {
				maxV = pMax
			}
			found = true
		}
	}
	if !found {
		return 0, 0
	}
	return minV, maxV
}

// MinCellVoltage returns the lowest cached cell voltage in the container.
func (c *Container) MinCellVoltage() float64 {
	minV, _ := c.VoltageExtrema()
	return minV
}

// MaxCellVoltage returns the highest cached cell voltage in the container.
func (c *Container) MaxCellVoltage() float64 {
	_, maxV := c.VoltageExtrema()
	return maxV
}

func meanRackSOC(racks []*Rack) float64 {
	if len(racks) == 0 {
		return 0
	}
	total := 0.0
	for _, r := range racks {
		total += r.AverageSOC()
	}
	return total / float64(len(racks))
}
