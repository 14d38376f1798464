// Package config loads, defaults and sanitizes the full simulation
// configuration. Loading is fail-soft: a bad or missing value is replaced
// with its default and logged, and a run never aborts on configuration
// alone.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/voltsim/besstwin/core/metrics"
	"github.com/voltsim/besstwin/infra/mqtt"
)

// Config is the root configuration document.
type Config struct {
	Simulation   SimulationConfig     `json:"simulation"`
	Layout       LayoutConfig         `json:"layout"`
	Environment  EnvironmentConfig    `json:"environment"`
	InitialState InitialStateConfig   `json:"initial_state"`
	Cell         CellConfig           `json:"cell"`
	BMS          BMSConfig            `json:"bms"`
	Balancing    BalancingConfig      `json:"balancing"`
	Cycle        CycleConfig          `json:"cycle"`
	Sequence     []SequenceStepConfig `json:"sequence"`
	Chiller      ChillerConfig        `json:"chiller"`
	Fluid        FluidConfig          `json:"fluid"`
	Metrics      metrics.Config       `json:"metrics"`
	MQTT         mqtt.Config          `json:"mqtt"`
	Export       ExportConfig         `json:"export"`
	Seed         int64                `json:"seed"`
}

// SimulationConfig controls run length and resolution.
type SimulationConfig struct {
	StepSeconds      int     `json:"step_seconds"`
	DurationHours    float64 `json:"duration_hours"`
	StartDatetimeUTC string  `json:"start_datetime_utc"`
	// MaxSteps caps the run regardless of duration; zero means no cap
	// beyond DurationHours.
	MaxSteps int `json:"max_steps"`
}

// TotalSteps is the step budget implied by duration and resolution.
func (s SimulationConfig) TotalSteps() int {
	if s.StepSeconds <= 0 {
		return 0
	}
	return int(s.DurationHours * 3600 / float64(s.StepSeconds))
}

// LayoutConfig shapes the site tree.
type LayoutConfig struct {
	GroupContainerCounts []int `json:"group_container_counts"`
	NumGroups            int   `json:"num_groups"`
	ContainersPerGroup   int   `json:"containers_per_group"`
	CellsPerPack         int   `json:"cells_per_pack"`
	PacksPerRack         int   `json:"packs_per_rack"`
	RacksPerContainer    int   `json:"racks_per_container"`
}

// EnvironmentConfig selects ambient conditions: constant values or a
// historical weather provider.
type EnvironmentConfig struct {
	Mode               string         `json:"mode"` // constant | historical
	AmbientTempC       float64        `json:"ambient_temp_c"`
	SolarIrradianceWM2 float64        `json:"solar_irradiance_w_m2"`
	Provider           ProviderConfig `json:"provider"`
	LocationAddress    string         `json:"location_address"`
}

// ProviderConfig identifies the weather API for historical mode.
type ProviderConfig struct {
	APIName   string  `json:"api_name"`
	BaseURL   string  `json:"base_url"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// InitialStateConfig seeds per-cell SOC and temperature.
type InitialStateConfig struct {
	Distribution     string  `json:"distribution"` // uniform | normal
	MeanPercent      float64 `json:"mean_percent"`
	StdDevPercent    float64 `json:"std_dev_percent"`
	MinPercent       float64 `json:"min_percent"`
	MaxPercent       float64 `json:"max_percent"`
	FloorFraction    float64 `json:"floor_fraction"`
	CellTemperatureC float64 `json:"cell_temperature_c"`
}

// CellConfig describes the cell electrical model.
type CellConfig struct {
	CapacityAh             float64            `json:"capacity_ah"`
	InternalResistanceOhms float64            `json:"internal_resistance_ohms"`
	Curve                  []CurvePointConfig `json:"curve"`
}

// CurvePointConfig is one SOC to voltage breakpoint.
type CurvePointConfig struct {
	SOCPercent float64 `json:"soc_percent"`
	Voltage    float64 `json:"voltage"`
}

// BMSConfig carries calibration bands and safety limits.
type BMSConfig struct {
	CalibrateLowVoltage  float64 `json:"calibrate_low_voltage"`
	CutoffLowVoltage     float64 `json:"cutoff_low_voltage"`
	CalibrateHighVoltage float64 `json:"calibrate_high_voltage"`
	CutoffHighVoltage    float64 `json:"cutoff_high_voltage"`
	MinSafeSOC           float64 `json:"min_safe_soc"`
	MaxSafeSOC           float64 `json:"max_safe_soc"`
	VoltageInterlock     *bool   `json:"voltage_interlock"`
}

// BalancingConfig configures resistor-bleed balancing.
type BalancingConfig struct {
	TopStartSOC   float64 `json:"top_start_soc"`
	BottomEndSOC  float64 `json:"bottom_end_soc"`
	BleedCurrentA float64 `json:"bleed_current_a"`
}

// CycleConfig parameterizes the built-in test cycle.
type CycleConfig struct {
	SiteTargetPowerMW          float64 `json:"site_target_power_mw"`
	RampDurationS              float64 `json:"ramp_duration_s"`
	ChargeTaperDurationS       float64 `json:"charge_taper_duration_s"`
	DischargeTaperDurationS    float64 `json:"discharge_taper_duration_s"`
	ChargeTaperSOCThreshold    float64 `json:"charge_taper_soc_threshold"`
	DischargeTaperSOCThreshold float64 `json:"discharge_taper_soc_threshold"`
	HeatSoakDurationHours      float64 `json:"heat_soak_duration_hours"`
}

// SequenceStepConfig is one entry of an externally supplied test sequence.
// A non-empty sequence replaces the built-in cycle entirely.
type SequenceStepConfig struct {
	StepName        string               `json:"step_name"`
	DurationSeconds float64              `json:"duration_seconds"`
	DurationMinutes float64              `json:"duration_minutes"`
	DurationHours   float64              `json:"duration_hours"`
	PowerCommand    PowerCommandConfig   `json:"power_command"`
	TaperSettings   *TaperSettingsConfig `json:"taper_settings"`
}

// PowerCommandConfig is the step's power request. real_power_mw uses the
// grid convention where negative charges the site.
type PowerCommandConfig struct {
	CommandType string  `json:"command_type"` // idle | real
	RealPowerMW float64 `json:"real_power_mw"`
}

// TaperSettingsConfig ramps the step target to end_power_mw over the step.
type TaperSettingsConfig struct {
	EndPowerMW float64 `json:"end_power_mw"`
}

// ChillerConfig sizes the per-container cooling loop.
type ChillerConfig struct {
	MaxCoolingCapacityW float64 `json:"max_cooling_capacity_w"`
	FlowRateM3PerS      float64 `json:"flow_rate_m3_per_s"`
	SupplySetpointC     float64 `json:"supply_setpoint_c"`
}

// FluidConfig describes the coolant.
type FluidConfig struct {
	DensityKgM3      float64 `json:"density_kg_m3"`
	SpecificHeatJKgK float64 `json:"specific_heat_j_kg_k"`
}

// ExportConfig names the result files. An empty path disables that output.
type ExportConfig struct {
	CSVPath  string `json:"csv_path"`
	JSONPath string `json:"json_path"`
}

// Load reads the configuration file at path with optional BESS_*
// environment overrides (BESS_SIMULATION__STEP_SECONDS maps to
// simulation.step_seconds).
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	if err := k.Load(env.Provider("BESS_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "bess_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	cfg := Default()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the standard commissioning-test configuration.
func Default() *Config {
	return &Config{
		Simulation: SimulationConfig{
			StepSeconds:   1,
			DurationHours: 10,
		},
		Layout: LayoutConfig{
			NumGroups:          2,
			ContainersPerGroup: 2,
			CellsPerPack:       44,
			PacksPerRack:       9,
			RacksPerContainer:  9,
		},
		Environment: EnvironmentConfig{
			Mode:         "constant",
			AmbientTempC: 35.0,
		},
		InitialState: InitialStateConfig{
			Distribution:     "normal",
			MeanPercent:      6.6,
			StdDevPercent:    1.2,
			MinPercent:       5.2,
			MaxPercent:       12.0,
			FloorFraction:    0.4,
			CellTemperatureC: 35.0,
		},
		Cell: CellConfig{
			CapacityAh:             300.0,
			InternalResistanceOhms: 0.0005,
		},
		BMS: BMSConfig{
			CalibrateLowVoltage:  3.0,
			CutoffLowVoltage:     2.8,
			CalibrateHighVoltage: 3.45,
			CutoffHighVoltage:    3.6,
			MinSafeSOC:           5.2,
			MaxSafeSOC:           100.0,
		},
		Balancing: BalancingConfig{
			TopStartSOC:   94.0,
			BottomEndSOC:  6.0,
			BleedCurrentA: 0.6,
		},
		Cycle: CycleConfig{
			SiteTargetPowerMW:          40.0,
			RampDurationS:              30,
			ChargeTaperDurationS:       60,
			DischargeTaperDurationS:    60,
			ChargeTaperSOCThreshold:    98.0,
			DischargeTaperSOCThreshold: 8.0,
			HeatSoakDurationHours:      2.0,
		},
		Chiller: ChillerConfig{
			MaxCoolingCapacityW: 40700.0,
			FlowRateM3PerS:      0.02,
			SupplySetpointC:     20.0,
		},
		Fluid: FluidConfig{
			DensityKgM3:      1075,
			SpecificHeatJKgK: 3500,
		},
		Export: ExportConfig{
			CSVPath: "outputs/simulation_results.csv",
		},
		Seed: 42,
	}
}
