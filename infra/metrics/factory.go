package metrics

import (
	coremetrics "github.com/voltsim/besstwin/core/metrics"
	"github.com/voltsim/besstwin/infra/logger"
)

// New builds the composed step sink from configuration. Backends that are
// disabled or fail their health check degrade to a NopSink, so a run never
// aborts because a metrics backend is unreachable.
func New(cfg coremetrics.Config, log logger.Logger) coremetrics.StepSink {
	var sinks []coremetrics.StepSink

	if cfg.PrometheusEnabled {
		prom, err := NewPromSink(cfg)
		if err != nil {
			log.Warnf("prometheus sink disabled: %v", err)
		} else {
			sinks = append(sinks, prom)
		}
	}
	if cfg.InfluxEnabled {
		sinks = append(sinks, NewInfluxSinkWithFallback(cfg.InfluxURL, cfg.InfluxToken, cfg.InfluxOrg, cfg.InfluxBucket))
	}

	switch len(sinks) {
	case 0:
		return coremetrics.NopSink{}
	case 1:
		return sinks[0]
	default:
		return NewMultiSink(sinks...)
	}
}
