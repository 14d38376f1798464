package bess

// InverterGroup owns containers behind one inverter block and applies the
// weak-link safety interlock: one faulted container zeroes the whole
// group's output for the step without affecting other groups.
type InverterGroup struct {
	ID         string
	Containers []*Container

	// LastCommandedPowerMW is the pre-interlock request for the step;
	// LastAppliedPowerMW the post-interlock value actually distributed.
	LastCommandedPowerMW float64
	LastAppliedPowerMW   float64

	p *Params
}

func newInverterGroup(id string, p *Params, containers []*Container) *InverterGroup {
	return &InverterGroup{ID: id, Containers: containers, p: p}
}

// Update applies the interlock to powerMW (positive charges) and splits the
// surviving power equally across containers.
func (g *InverterGroup) Update(powerMW, dtSeconds float64) {
	if len(g.Containers) == 0 {
		return
	}
	g.LastCommandedPowerMW = powerMW

	charging := powerMW > 0
	discharging := powerMW < 0
	if g.p.BMS.VoltageInterlock {
		if charging && g.anyContainerMaxVoltageAtOrAbove(g.p.BMS.CutoffHighVoltage) {
			powerMW = 0
		}
		if discharging && g.anyContainerMinVoltageAtOrBelow(g.p.BMS.CutoffLowVoltage) {
			powerMW = 0
		}
	} else {
		if charging && g.anyContainerSOCAtOrAbove(g.p.BMS.MaxSafeSOC) {
			powerMW = 0
		}
		if discharging && g.anyContainerSOCAtOrBelow(g.p.BMS.MinSafeSOC) {
			powerMW = 0
		}
	}

	perContainerW := powerMW * 1e6 / float64(len(g.Containers))
	for _, c := range g.Containers {
		c.Update(perContainerW, dtSeconds)
	}
	g.LastAppliedPowerMW = powerMW
}

func (g *InverterGroup) anyContainerMaxVoltageAtOrAbove(v float64) bool {
	for _, c := range g.Containers {
		if c.MaxCellVoltage() >= v {
			return true
		}
	}
	return false
}

func (g *InverterGroup) anyContainerMinVoltageAtOrBelow(v float64) bool {
	for _, c := range g.Containers {
		if c.MinCellVoltage() <= v {
			return true
		}
	}
	return false
}

func (g *InverterGroup) anyContainerSOCAtOrAbove(soc float64) bool {
	for _, c := range g.Containers {
		if c.SOC() >= soc {
			return true
		}
	}
	return false
}

func (g *InverterGroup) anyContainerSOCAtOrBelow(soc float64) bool {
	for _, c := range g.Containers {
		if c.SOC() <= soc {
			return true
		}
	}
	return false
}
