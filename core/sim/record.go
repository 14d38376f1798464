package sim

import "github.com/voltsim/besstwin/core/bess"

// ContainerRecord is a per-container view within a step record.
type ContainerRecord struct {
	ID              string  `json:"id"`
	SOCPercent      float64 `json:"soc_percent"`
	MinCellVoltageV float64 `json:"min_cell_voltage_v"`
	MaxCellVoltageV float64 `json:"max_cell_voltage_v"`
}

// GroupRecord is a per-group view within a step record.
type GroupRecord struct {
	ID               string            `json:"id"`
	CommandedPowerMW float64           `json:"commanded_power_mw"`
	AppliedPowerMW   float64           `json:"applied_power_mw"`
	Containers       []ContainerRecord `json:"containers"`
}

// StepRecord is the flat per-step output row. The scalar fields match the
// batch export column set exactly.
type StepRecord struct {
	RunID                    string  `json:"run_id"`
	TimeS                    float64 `json:"time_s"`
	TimeH                    float64 `json:"time_h"`
	SiteTargetPowerMW        float64 `json:"site_target_power_mw"`
	TestState                string  `json:"test_state"`
	AvgGroupSOCPercent       float64 `json:"avg_group_soc_percent"`
	AvgGroupCommandedPowerMW float64 `json:"avg_group_commanded_power_mw"`
	AvgGroupAppliedPowerMW   float64 `json:"avg_group_applied_power_mw"`
	MinCellVoltageV          float64 `json:"min_cell_voltage_v"`
	MaxCellVoltageV          float64 `json:"max_cell_voltage_v"`

	Groups []GroupRecord `json:"groups,omitempty"`
}

// Snapshot extracts a StepRecord from the site's current state. Groups
// without containers are skipped in the averages, and an empty site yields
// zero values rather than NaN.
func Snapshot(site *bess.Site) StepRecord {
	rec := StepRecord{
		RunID:             site.RunID,
		TimeS:             site.CurrentTimeS,
		TimeH:             site.CurrentTimeS / 3600.0,
		SiteTargetPowerMW: site.TargetPower(),
		TestState:         site.TestState,
	}

	var (
		sumSOC, sumCmd, sumApplied float64
		groupCount                 int
		minV, maxV                 float64
		haveVolts                  bool
	)
	for _, g := range site.Groups {
		if len(g.Containers) == 0 {
			continue
		}
		gr := GroupRecord{
			ID:               g.ID,
			CommandedPowerMW: g.LastCommandedPowerMW,
			AppliedPowerMW:   g.LastAppliedPowerMW,
		}
		groupSOC := 0.0
		for _, c := range g.Containers {
			cMin, cMax := c.VoltageExtrema()
			gr.Containers = append(gr.Containers, ContainerRecord{
				ID:              c.ID,
				SOCPercent:      c.SOC(),
				MinCellVoltageV: cMin,
				MaxCellVoltageV: cMax,
			})
			groupSOC += c.SOC()
			if !haveVolts || cMin < minV {
				minV = cMin
			}
			if !haveVolts || cMax > maxV {
				maxV = cMax
			}
			haveVolts = true
		}
		sumSOC += groupSOC / float64(len(g.Containers))
		sumCmd += g.LastCommandedPowerMW
		sumApplied += g.LastAppliedPowerMW
		groupCount++
		rec.Groups = append(rec.Groups, gr)
	}
	if groupCount > 0 {
		rec.AvgGroupSOCPercent = sumSOC / float64(groupCount)
		rec.AvgGroupCommandedPowerMW = sumCmd / float64(groupCount)
		rec.AvgGroupAppliedPowerMW = sumApplied / float64(groupCount)
	}
	if haveVolts {
		rec.MinCellVoltageV = minV
		rec.MaxCellVoltageV = maxV
	}
	return rec
}
