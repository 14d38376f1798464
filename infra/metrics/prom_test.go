package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	coremetrics "github.com/voltsim/besstwin/core/metrics"
	"github.com/voltsim/besstwin/core/sim"
)

func TestPromSinkRecordStep(t *testing.T) {
	reg := prometheus.NewRegistry()
	sinkIf, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	sink, ok := sinkIf.(*PromSink)
	if !ok {
		t.Fatalf("expected PromSink")
	}

	rec := sim.StepRecord{
		SiteTargetPowerMW:      40,
		AvgGroupAppliedPowerMW: 20,
		AvgGroupSOCPercent:     55.5,
		MinCellVoltageV:        3.1,
		MaxCellVoltageV:        3.4,
		Groups: []sim.GroupRecord{{
			ID:         "G1",
			Containers: []sim.ContainerRecord{{ID: "G1C1", SOCPercent: 55.5}},
		}},
	}
	if err := sink.RecordStep(rec); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := sink.RecordStep(rec); err != nil {
		t.Fatalf("record: %v", err)
	}

	expected := `
# HELP bess_site_target_power_mw Site power target for the current step (positive charges)
# TYPE bess_site_target_power_mw gauge
bess_site_target_power_mw 40
`
	if err := testutil.CollectAndCompare(sink.targetPower, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected target metric: %v", err)
	}
	expectedSteps := `
# HELP bess_simulation_steps_total Number of simulation steps completed
# TYPE bess_simulation_steps_total counter
bess_simulation_steps_total 2
`
	if err := testutil.CollectAndCompare(sink.stepsTotal, strings.NewReader(expectedSteps)); err != nil {
		t.Errorf("unexpected steps metric: %v", err)
	}
	expectedSOC := `
# HELP bess_container_soc_percent State of charge per container
# TYPE bess_container_soc_percent gauge
bess_container_soc_percent{container_id="G1C1",group_id="G1"} 55.5
`
	if err := testutil.CollectAndCompare(sink.containerSOC, strings.NewReader(expectedSOC)); err != nil {
		t.Errorf("unexpected container metric: %v", err)
	}
}

func TestPromSinkDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if _, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg); err != nil {
		t.Fatalf("second registration must reuse collectors: %v", err)
	}
}
