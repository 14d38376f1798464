package sim

import (
	"math"
	"testing"

	"github.com/voltsim/besstwin/core/bess"
	"github.com/voltsim/besstwin/core/testcycle"
)

func testSite(plan testcycle.Plan) *bess.Site {
	p := bess.DefaultParams()
	p.CellsPerPack = 4
	p.PacksPerRack = 2
	p.RacksPerContainer = 2
	layout := bess.Layout{NumGroups: 1, ContainersPerGroup: 1}
	dist := bess.SOCDistribution{Type: "uniform", MeanPercent: 50}
	return bess.NewSite(&p, layout, dist, 1, plan)
}

func TestRunnerStopsAfterDone(t *testing.T) {
	plan := testcycle.NewInterpreter([]testcycle.SequenceStep{
		{Name: "REST", DurationSeconds: 2, Power: testcycle.PowerCommand{Type: testcycle.PowerCommandIdle}},
	})
	r := NewRunner(testSite(plan), 1, 0)

	yields := 0
	var lastState string
	for {
		site, ok := r.Next()
		if !ok {
			break
		}
		yields++
		lastState = site.TestState
	}
	// Two steps inside the sequence step, then the step that reports DONE.
	if yields != 3 {
		t.Fatalf("expected 3 yields got %d", yields)
	}
	if lastState != testcycle.StateDone {
		t.Fatalf("expected final state DONE got %s", lastState)
	}
	if _, ok := r.Next(); ok {
		t.Fatalf("Next after stop must return false")
	}
	if r.Steps() != 3 {
		t.Fatalf("expected 3 steps got %d", r.Steps())
	}
}

func TestRunnerHonorsMaxSteps(t *testing.T) {
	r := NewRunner(testSite(testcycle.NewMachine(testcycle.DefaultCycleParams())), 1, 5)
	yields := 0
	for {
		if _, ok := r.Next(); !ok {
			break
		}
		yields++
	}
	if yields != 5 {
		t.Fatalf("expected 5 yields got %d", yields)
	}
}

func TestRunnerYieldsLiveSite(t *testing.T) {
	r := NewRunner(testSite(testcycle.NewMachine(testcycle.DefaultCycleParams())), 1, 2)
	s1, ok := r.Next()
	if !ok {
		t.Fatalf("expected first yield")
	}
	s2, ok := r.Next()
	if !ok {
		t.Fatalf("expected second yield")
	}
	if s1 != s2 {
		t.Fatalf("runner must yield the same mutated site")
	}
	if s2.CurrentTimeS != 2 {
		t.Fatalf("expected 2s simulated got %v", s2.CurrentTimeS)
	}
}

func TestSnapshotAggregates(t *testing.T) {
	site := testSite(testcycle.NewMachine(testcycle.DefaultCycleParams()))
	site.RunTimeStep(1)
	rec := Snapshot(site)

	if rec.RunID != site.RunID {
		t.Fatalf("run id mismatch")
	}
	if rec.TimeS != 1 || math.Abs(rec.TimeH-1.0/3600) > 1e-12 {
		t.Fatalf("time fields wrong: %v %v", rec.TimeS, rec.TimeH)
	}
	if rec.TestState != site.TestState {
		t.Fatalf("state mismatch: %s vs %s", rec.TestState, site.TestState)
	}
	if math.Abs(rec.AvgGroupSOCPercent-50) > 1e-9 {
		t.Fatalf("expected SOC 50 got %v", rec.AvgGroupSOCPercent)
	}
	if math.Abs(rec.MinCellVoltageV-3.32) > 1e-9 || math.Abs(rec.MaxCellVoltageV-3.32) > 1e-9 {
		t.Fatalf("expected 3.32V extremes got %v..%v", rec.MinCellVoltageV, rec.MaxCellVoltageV)
	}
	if len(rec.Groups) != 1 || len(rec.Groups[0].Containers) != 1 {
		t.Fatalf("unexpected detail shape")
	}
	if rec.Groups[0].Containers[0].ID != "G1C1" {
		t.Fatalf("expected container G1C1 got %s", rec.Groups[0].Containers[0].ID)
	}
}

func TestSnapshotEmptySiteIsZero(t *testing.T) {
	p := bess.DefaultParams()
	layout := bess.Layout{NumGroups: 1, ContainersPerGroup: 0}
	site := bess.NewSite(&p, layout, bess.DefaultSOCDistribution(), 1, testcycle.NewMachine(testcycle.DefaultCycleParams()))
	rec := Snapshot(site)
	if rec.AvgGroupSOCPercent != 0 || rec.MinCellVoltageV != 0 || rec.MaxCellVoltageV != 0 {
		t.Fatalf("expected zeroed aggregates, got %+v", rec)
	}
	if len(rec.Groups) != 0 {
		t.Fatalf("empty groups must be skipped")
	}
}
