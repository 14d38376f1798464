package bess

import (
	"fmt"
	"math"
	"testing"
)

func testGroup(p *Params, socPerContainer ...float64) *InverterGroup {
	var containers []*Container
	for i, soc := range socPerContainer {
		c := testContainer(p, [][]float64{uniformSOC(4, soc)})
		c.ID = fmt.Sprintf("G1C%d", i+1)
		containers = append(containers, c)
	}
	return newInverterGroup("G1", p, containers)
}

func TestGroupWeakLinkBlocksDischarge(t *testing.T) {
	p := testParams()
	// Cells at 4% read 2.74V, at or below the 2.8V low cutoff.
	g := testGroup(p, 50, 4)

	g.Update(-1.0, 1)
	if g.LastCommandedPowerMW != -1.0 {
		t.Fatalf("expected commanded -1 got %v", g.LastCommandedPowerMW)
	}
	if g.LastAppliedPowerMW != 0 {
		t.Fatalf("expected applied 0 got %v", g.LastAppliedPowerMW)
	}
	if got := g.Containers[0].SOC(); math.Abs(got-50) > 1e-12 {
		t.Fatalf("healthy container SOC moved under zero power: %v", got)
	}
}

func TestGroupWeakLinkAllowsCharge(t *testing.T) {
	p := testParams()
	g := testGroup(p, 50, 4)
	g.Update(1.0, 1)
	if g.LastAppliedPowerMW != 1.0 {
		t.Fatalf("expected charge to pass, applied %v", g.LastAppliedPowerMW)
	}
}

func TestGroupHighVoltageBlocksCharge(t *testing.T) {
	p := testParams()
	g := testGroup(p, 50, 100)

	g.Update(1.0, 1)
	if g.LastAppliedPowerMW != 0 {
		t.Fatalf("expected charge blocked, applied %v", g.LastAppliedPowerMW)
	}
	g.Update(-1.0, 1)
	if g.LastAppliedPowerMW != -1.0 {
		t.Fatalf("expected discharge to pass, applied %v", g.LastAppliedPowerMW)
	}
}

func TestGroupSOCModeInterlock(t *testing.T) {
	p := testParams()
	p.BMS.VoltageInterlock = false
	// 4% sits below MinSafeSOC but the 2.74V reading is ignored in SOC mode.
	g := testGroup(p, 50, 4)

	g.Update(-1.0, 1)
	if g.LastAppliedPowerMW != 0 {
		t.Fatalf("expected discharge blocked on SOC floor, applied %v", g.LastAppliedPowerMW)
	}
	g = testGroup(p, 50, 4)
	g.Update(1.0, 1)
	if g.LastAppliedPowerMW != 1.0 {
		t.Fatalf("expected charge to pass, applied %v", g.LastAppliedPowerMW)
	}
}

func TestGroupZeroPowerSkipsInterlock(t *testing.T) {
	p := testParams()
	g := testGroup(p, 4)
	g.Update(0, 1)
	if g.LastAppliedPowerMW != 0 || g.LastCommandedPowerMW != 0 {
		t.Fatalf("expected zero power recorded, got %v/%v", g.LastCommandedPowerMW, g.LastAppliedPowerMW)
	}
}

func TestGroupEmptyIsInert(t *testing.T) {
	p := testParams()
	g := newInverterGroup("G1", p, nil)
	g.Update(5.0, 1)
	if g.LastCommandedPowerMW != 0 || g.LastAppliedPowerMW != 0 {
		t.Fatalf("empty group recorded power: %v/%v", g.LastCommandedPowerMW, g.LastAppliedPowerMW)
	}
}
