// Package export writes simulation results to CSV and JSON.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/voltsim/besstwin/core/sim"
)

// CSVHeader is the column set of the per-step results file.
var CSVHeader = []string{
	"time_s",
	"time_h",
	"site_target_power_mw",
	"test_state",
	"avg_group_soc_percent",
	"avg_group_commanded_power_mw",
	"avg_group_applied_power_mw",
	"min_cell_voltage_v",
	"max_cell_voltage_v",
}

// WriteJSON writes the step records to w in JSON format.
func WriteJSON(w io.Writer, records []sim.StepRecord) error {
	enc := json.NewEncoder(w)
	return enc.Encode(records)
}

// WriteCSV writes the step records to w in CSV format with the standard
// header. Per-group detail is not flattened into the CSV; it is available
// in the JSON export.
func WriteCSV(w io.Writer, records []sim.StepRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			formatFloat(r.TimeS),
			formatFloat(r.TimeH),
			formatFloat(r.SiteTargetPowerMW),
			r.TestState,
			formatFloat(r.AvgGroupSOCPercent),
			formatFloat(r.AvgGroupCommandedPowerMW),
			formatFloat(r.AvgGroupAppliedPowerMW),
			formatFloat(r.MinCellVoltageV),
			formatFloat(r.MaxCellVoltageV),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
