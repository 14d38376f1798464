package bess

import (
	"math"
	"testing"

	"github.com/voltsim/besstwin/core/testcycle"
)

func smallParams() *Params {
	p := DefaultParams()
	p.CellsPerPack = 4
	p.PacksPerRack = 2
	p.RacksPerContainer = 2
	return &p
}

func TestSiteSameSeedIsBitIdentical(t *testing.T) {
	layout := Layout{NumGroups: 2, ContainersPerGroup: 2}
	dist := DefaultSOCDistribution()
	a := NewSite(smallParams(), layout, dist, 7, testcycle.NewMachine(testcycle.DefaultCycleParams()))
	b := NewSite(smallParams(), layout, dist, 7, testcycle.NewMachine(testcycle.DefaultCycleParams()))

	for step := 0; step < 50; step++ {
		a.RunTimeStep(1)
		b.RunTimeStep(1)
		if a.TestState != b.TestState || a.TargetPowerMW != b.TargetPowerMW {
			t.Fatalf("step %d diverged: %s/%v vs %s/%v", step, a.TestState, a.TargetPowerMW, b.TestState, b.TargetPowerMW)
		}
		for gi, ga := range a.Groups {
			gb := b.Groups[gi]
			if ga.LastAppliedPowerMW != gb.LastAppliedPowerMW {
				t.Fatalf("step %d group %s applied power diverged", step, ga.ID)
			}
			for ci, ca := range ga.Containers {
				cb := gb.Containers[ci]
				if ca.SOC() != cb.SOC() {
					t.Fatalf("step %d container %s SOC diverged: %v vs %v", step, ca.ID, ca.SOC(), cb.SOC())
				}
				aMin, aMax := ca.VoltageExtrema()
				bMin, bMax := cb.VoltageExtrema()
				if aMin != bMin || aMax != bMax {
					t.Fatalf("step %d container %s voltages diverged", step, ca.ID)
				}
			}
		}
	}
}

func TestSiteDifferentSeedsDiffer(t *testing.T) {
	layout := Layout{NumGroups: 1, ContainersPerGroup: 1}
	dist := DefaultSOCDistribution()
	a := NewSite(smallParams(), layout, dist, 1, testcycle.NewMachine(testcycle.DefaultCycleParams()))
	b := NewSite(smallParams(), layout, dist, 2, testcycle.NewMachine(testcycle.DefaultCycleParams()))
	if a.Groups[0].Containers[0].SOC() == b.Groups[0].Containers[0].SOC() {
		t.Fatalf("expected different initial states for different seeds")
	}
}

func TestSiteLayoutAndIDs(t *testing.T) {
	layout := Layout{GroupContainerCounts: []int{2, 1}}
	site := NewSite(smallParams(), layout, DefaultSOCDistribution(), 1, testcycle.NewMachine(testcycle.DefaultCycleParams()))
	if len(site.Groups) != 2 {
		t.Fatalf("expected 2 groups got %d", len(site.Groups))
	}
	if site.Groups[0].ID != "G1" || site.Groups[1].ID != "G2" {
		t.Fatalf("unexpected group IDs %s %s", site.Groups[0].ID, site.Groups[1].ID)
	}
	if got := site.Groups[0].Containers[1].ID; got != "G1C2" {
		t.Fatalf("expected container G1C2 got %s", got)
	}
	if got := site.Groups[1].Containers[0].ID; got != "G2C1" {
		t.Fatalf("expected container G2C1 got %s", got)
	}
	if site.RunID == "" {
		t.Fatalf("expected a run id")
	}
}

func TestSiteRampReachesFullTarget(t *testing.T) {
	p := testParams()
	layout := Layout{NumGroups: 1, ContainersPerGroup: 1}
	dist := SOCDistribution{Type: "uniform", MeanPercent: 50}
	site := NewSite(p, layout, dist, 1, testcycle.NewMachine(testcycle.DefaultCycleParams()))

	// Step 1 leaves IDLE, step 2 enters the ramp, 30 more complete it.
	for i := 0; i < 32; i++ {
		site.RunTimeStep(1)
	}
	if site.TestState != testcycle.StateConstCharge {
		t.Fatalf("expected CONST_CHARGE got %s", site.TestState)
	}
	if math.Abs(site.TargetPower()-40.0) > 1e-9 {
		t.Fatalf("expected target 40 got %v", site.TargetPower())
	}
	g := site.Groups[0]
	if g.LastCommandedPowerMW != g.LastAppliedPowerMW {
		t.Fatalf("interlock engaged unexpectedly: %v vs %v", g.LastCommandedPowerMW, g.LastAppliedPowerMW)
	}
	if got := g.Containers[0].SOC(); got <= 50 {
		t.Fatalf("expected SOC above 50 after charging, got %v", got)
	}
	if site.CurrentTimeS != 32 {
		t.Fatalf("expected 32s elapsed got %v", site.CurrentTimeS)
	}
}

func TestSiteEmptyLayoutAdvancesTime(t *testing.T) {
	layout := Layout{NumGroups: 1, ContainersPerGroup: 0}
	site := NewSite(smallParams(), layout, DefaultSOCDistribution(), 1, testcycle.NewMachine(testcycle.DefaultCycleParams()))
	site.RunTimeStep(1)
	site.RunTimeStep(1)
	if site.CurrentTimeS != 2 {
		t.Fatalf("expected time 2 got %v", site.CurrentTimeS)
	}
}

func TestSiteContainerProbes(t *testing.T) {
	p := smallParams()
	layout := Layout{NumGroups: 1, ContainersPerGroup: 1}
	dist := SOCDistribution{Type: "uniform", MeanPercent: 97}
	site := NewSite(p, layout, dist, 1, testcycle.NewMachine(testcycle.DefaultCycleParams()))
	if !site.AnyContainerSOCAtOrAbove(97) {
		t.Fatalf("expected probe above 97 to fire")
	}
	if site.AnyContainerSOCAtOrAbove(98) {
		t.Fatalf("probe above 98 fired unexpectedly")
	}
	if !site.AnyContainerSOCAtOrBelow(97) {
		t.Fatalf("expected probe below 97 to fire")
	}
	if site.AnyContainerSOCAtOrBelow(96) {
		t.Fatalf("probe below 96 fired unexpectedly")
	}
}
