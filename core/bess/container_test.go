package bess

import (
	"math"
	"testing"
)

func testContainer(p *Params, socPerPack [][]float64) *Container {
	var racks []*Rack
	for _, soc := range socPerPack {
		racks = append(racks, newRack([]*Pack{newPack(p, soc, 25)}))
	}
	return newContainer("G1C1", p, racks)
}

func TestContainerSOCRollupIsMeanOfRackMeans(t *testing.T) {
	p := testParams()
	c := testContainer(p, [][]float64{uniformSOC(4, 40), uniformSOC(4, 60)})
	if got := c.SOC(); math.Abs(got-50) > 1e-12 {
		t.Fatalf("expected rollup 50 got %v", got)
	}
	c.Update(0, 1)
	if got := c.SOC(); math.Abs(got-50) > 1e-12 {
		t.Fatalf("expected rollup 50 after idle step got %v", got)
	}
}

func TestContainerThermalOutletTemperature(t *testing.T) {
	p := testParams()
	c := testContainer(p, [][]float64{uniformSOC(4, 50)})
	pk := c.Racks[0].Packs[0]

	supplyBefore := c.Chiller.CurrentSupplyTempC
	c.Update(1328, 1) // 100A through the single pack

	wantHeat := 100.0 * 100.0 * p.CellResistanceOhms * 4
	mDot := p.Chiller.FlowRateM3PerS * p.Fluid.DensityKgM3
	wantOut := supplyBefore + wantHeat/(mDot*p.Fluid.SpecificHeatJKgK)

	if math.Abs(pk.CoolantInTempC-supplyBefore) > 1e-9 {
		t.Fatalf("expected inlet %v got %v", supplyBefore, pk.CoolantInTempC)
	}
	if math.Abs(pk.CoolantOutTempC-wantOut) > 1e-9 {
		t.Fatalf("expected outlet %v got %v", wantOut, pk.CoolantOutTempC)
	}
}

func TestContainerVoltageExtrema(t *testing.T) {
	p := testParams()
	c := testContainer(p, [][]float64{uniformSOC(4, 20), uniformSOC(4, 80)})
	minV, maxV := c.VoltageExtrema()
	if math.Abs(minV-3.20) > 1e-9 {
		t.Fatalf("expected min 3.20 got %v", minV)
	}
	if math.Abs(maxV-3.45) > 1e-9 {
		t.Fatalf("expected max 3.45 got %v", maxV)
	}
}

func TestContainerEmptyIsInert(t *testing.T) {
	p := testParams()
	c := newContainer("G1C1", p, nil)
	c.Update(1e6, 1)
	if got := c.SOC(); got != 0 {
		t.Fatalf("expected zero SOC got %v", got)
	}
	minV, maxV := c.VoltageExtrema()
	if minV != 0 || maxV != 0 {
		t.Fatalf("expected (0,0) extrema got (%v,%v)", minV, maxV)
	}
}
