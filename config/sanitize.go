package config

import "github.com/voltsim/besstwin/infra/logger"

// Sanitize replaces invalid values with defaults, logging each repair.
// It never returns an error: a run proceeds on best-effort configuration.
func (c *Config) Sanitize(log logger.Logger) {
	def := Default()

	if c.Simulation.StepSeconds <= 0 {
		log.Warnf("invalid step_seconds %d, using %d", c.Simulation.StepSeconds, def.Simulation.StepSeconds)
		c.Simulation.StepSeconds = def.Simulation.StepSeconds
	}
	if c.Simulation.DurationHours <= 0 {
		log.Warnf("invalid duration_hours %v, using %v", c.Simulation.DurationHours, def.Simulation.DurationHours)
		c.Simulation.DurationHours = def.Simulation.DurationHours
	}
	if c.Simulation.MaxSteps < 0 {
		c.Simulation.MaxSteps = 0
	}

	if len(c.Layout.GroupContainerCounts) > 0 {
		for i, n := range c.Layout.GroupContainerCounts {
			if n < 0 {
				log.Warnf("negative container count for group %d, using 0", i+1)
				c.Layout.GroupContainerCounts[i] = 0
			}
		}
	} else {
		if c.Layout.NumGroups < 1 {
			log.Warnf("invalid num_groups %d, using %d", c.Layout.NumGroups, def.Layout.NumGroups)
			c.Layout.NumGroups = def.Layout.NumGroups
		}
		if c.Layout.ContainersPerGroup < 0 {
			log.Warnf("negative containers_per_group, using %d", def.Layout.ContainersPerGroup)
			c.Layout.ContainersPerGroup = def.Layout.ContainersPerGroup
		}
	}
	if c.Layout.CellsPerPack < 1 {
		log.Warnf("invalid cells_per_pack %d, using %d", c.Layout.CellsPerPack, def.Layout.CellsPerPack)
		c.Layout.CellsPerPack = def.Layout.CellsPerPack
	}
	if c.Layout.PacksPerRack < 1 {
		log.Warnf("invalid packs_per_rack %d, using %d", c.Layout.PacksPerRack, def.Layout.PacksPerRack)
		c.Layout.PacksPerRack = def.Layout.PacksPerRack
	}
	if c.Layout.RacksPerContainer < 1 {
		log.Warnf("invalid racks_per_container %d, using %d", c.Layout.RacksPerContainer, def.Layout.RacksPerContainer)
		c.Layout.RacksPerContainer = def.Layout.RacksPerContainer
	}

	switch c.Environment.Mode {
	case "constant", "historical":
	case "":
		c.Environment.Mode = "constant"
	default:
		log.Warnf("unknown environment mode %q, using constant", c.Environment.Mode)
		c.Environment.Mode = "constant"
	}
	if c.Environment.Mode == "historical" && c.Environment.Provider.BaseURL == "" {
		log.Warnf("historical environment without provider base_url, using constant")
		c.Environment.Mode = "constant"
	}

	switch c.InitialState.Distribution {
	case "uniform", "normal":
	case "":
		c.InitialState.Distribution = def.InitialState.Distribution
	default:
		log.Warnf("unknown initial distribution %q, using %s", c.InitialState.Distribution, def.InitialState.Distribution)
		c.InitialState.Distribution = def.InitialState.Distribution
	}
	if c.InitialState.MaxPercent < c.InitialState.MinPercent {
		log.Warnf("initial max_percent below min_percent, swapping")
		c.InitialState.MinPercent, c.InitialState.MaxPercent = c.InitialState.MaxPercent, c.InitialState.MinPercent
	}

	if c.Cell.CapacityAh <= 0 {
		log.Warnf("invalid cell capacity %v, using %v", c.Cell.CapacityAh, def.Cell.CapacityAh)
		c.Cell.CapacityAh = def.Cell.CapacityAh
	}
	if c.Cell.InternalResistanceOhms < 0 {
		log.Warnf("negative cell resistance, using %v", def.Cell.InternalResistanceOhms)
		c.Cell.InternalResistanceOhms = def.Cell.InternalResistanceOhms
	}
	if n := len(c.Cell.Curve); n > 0 && n < 2 {
		log.Warnf("voltage curve needs at least 2 points, got %d, using built-in curve", n)
		c.Cell.Curve = nil
	}

	c.Sequence = sanitizeSequence(c.Sequence, log)

	if c.Chiller.FlowRateM3PerS < 0 {
		log.Warnf("negative chiller flow rate, using %v", def.Chiller.FlowRateM3PerS)
		c.Chiller.FlowRateM3PerS = def.Chiller.FlowRateM3PerS
	}
	if c.Fluid.DensityKgM3 <= 0 {
		c.Fluid.DensityKgM3 = def.Fluid.DensityKgM3
	}
	if c.Fluid.SpecificHeatJKgK <= 0 {
		c.Fluid.SpecificHeatJKgK = def.Fluid.SpecificHeatJKgK
	}

	c.Metrics.SetDefaults()
	c.MQTT.SetDefaults()
}

// sanitizeSequence validates a supplied sequence as a whole. A sequence
// with any invalid step is dropped entirely, falling back to the built-in
// cycle, so a run never executes a partially understood plan.
func sanitizeSequence(steps []SequenceStepConfig, log logger.Logger) []SequenceStepConfig {
	for i, s := range steps {
		switch s.PowerCommand.CommandType {
		case "idle", "real":
		default:
			log.Warnf("sequence step %d has unknown command_type %q, ignoring sequence", i+1, s.PowerCommand.CommandType)
			return nil
		}
		if s.DurationSeconds < 0 || s.DurationMinutes < 0 || s.DurationHours < 0 {
			log.Warnf("sequence step %d has a negative duration, ignoring sequence", i+1)
			return nil
		}
		if s.DurationSeconds == 0 && s.DurationMinutes == 0 && s.DurationHours == 0 {
			log.Warnf("sequence step %d has no duration, ignoring sequence", i+1)
			return nil
		}
	}
	return steps
}
