package metrics

import (
	coremetrics "github.com/voltsim/besstwin/core/metrics"
	"github.com/voltsim/besstwin/core/sim"
	"github.com/prometheus/client_golang/prometheus"
)

// PromSink exposes the latest simulation step as Prometheus metrics.
type PromSink struct {
	targetPower   prometheus.Gauge
	appliedPower  prometheus.Gauge
	avgSOC        prometheus.Gauge
	minCellVolt   prometheus.Gauge
	maxCellVolt   prometheus.Gauge
	stepsTotal    prometheus.Counter
	containerSOC  *prometheus.GaugeVec
}

// NewPromSink registers simulation metrics on the default Prometheus
// registerer. The HTTP exposition server is started separately using
// cfg.PrometheusPort.
func NewPromSink(cfg coremetrics.Config) (coremetrics.StepSink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(_ coremetrics.Config, reg prometheus.Registerer) (coremetrics.StepSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		targetPower: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bess_site_target_power_mw",
			Help: "Site power target for the current step (positive charges)",
		}),
		appliedPower: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bess_avg_group_applied_power_mw",
			Help: "Average applied power across inverter groups",
		}),
		avgSOC: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bess_avg_group_soc_percent",
			Help: "Average state of charge across inverter groups",
		}),
		minCellVolt: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bess_min_cell_voltage_volts",
			Help: "Minimum cell voltage across the site",
		}),
		maxCellVolt: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bess_max_cell_voltage_volts",
			Help: "Maximum cell voltage across the site",
		}),
		stepsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bess_simulation_steps_total",
			Help: "Number of simulation steps completed",
		}),
		containerSOC: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "bess_container_soc_percent",
			Help: "State of charge per container",
		}, []string{"group_id", "container_id"}),
	}

	for _, c := range []prometheus.Collector{
		s.targetPower, s.appliedPower, s.avgSOC,
		s.minCellVolt, s.maxCellVolt, s.stepsTotal, s.containerSOC,
	} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return nil, err
			}
		}
	}
	return s, nil
}

// RecordStep publishes the step record to the registered gauges.
func (s *PromSink) RecordStep(rec sim.StepRecord) error {
	s.targetPower.Set(rec.SiteTargetPowerMW)
	s.appliedPower.Set(rec.AvgGroupAppliedPowerMW)
	s.avgSOC.Set(rec.AvgGroupSOCPercent)
	s.minCellVolt.Set(rec.MinCellVoltageV)
	s.maxCellVolt.Set(rec.MaxCellVoltageV)
	s.stepsTotal.Inc()
	for _, g := range rec.Groups {
		for _, c := range g.Containers {
			s.containerSOC.WithLabelValues(g.ID, c.ID).Set(c.SOCPercent)
		}
	}
	return nil
}
