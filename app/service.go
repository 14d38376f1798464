// Package app wires configuration, simulation, metrics, telemetry and
// export into one runnable service.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/voltsim/besstwin/config"
	"github.com/voltsim/besstwin/core/bess"
	"github.com/voltsim/besstwin/core/env"
	coremetrics "github.com/voltsim/besstwin/core/metrics"
	"github.com/voltsim/besstwin/core/sim"
	"github.com/voltsim/besstwin/infra/logger"
	"github.com/voltsim/besstwin/infra/metrics"
	"github.com/voltsim/besstwin/infra/mqtt"
	"github.com/voltsim/besstwin/infra/weather"
	"github.com/voltsim/besstwin/internal/eventbus"
	"github.com/voltsim/besstwin/pkg/export"
)

// Service owns one simulation run from site construction to export.
type Service struct {
	cfg  *config.Config
	log  logger.Logger
	sink coremetrics.StepSink
	bus  *eventbus.Bus[sim.StepRecord]
	pub  *mqtt.Publisher
	envp env.Provider
}

// New creates a Service from the configuration. Optional backends that
// fail to initialize are disabled with a warning.
func New(cfg *config.Config) (*Service, error) {
	log := logger.New("service")
	cfg.Sanitize(log)

	svc := &Service{
		cfg:  cfg,
		log:  log,
		sink: metrics.New(cfg.Metrics, log),
		bus:  eventbus.New[sim.StepRecord](),
	}

	if cfg.MQTT.Enabled {
		pub, err := mqtt.NewPublisher(cfg.MQTT)
		if err != nil {
			log.Warnf("mqtt telemetry disabled: %v", err)
		} else {
			svc.pub = pub
		}
	}

	svc.envp = env.Constant{Value: cfg.AmbientConditions()}
	if cfg.Environment.Mode == "historical" {
		svc.envp = weather.NewClient(weather.Config{
			APIName:   cfg.Environment.Provider.APIName,
			BaseURL:   cfg.Environment.Provider.BaseURL,
			Latitude:  cfg.Environment.Provider.Latitude,
			Longitude: cfg.Environment.Provider.Longitude,
		}, cfg.AmbientConditions())
	}
	return svc, nil
}

// Subscribe exposes the step record stream for additional consumers.
func (s *Service) Subscribe() <-chan sim.StepRecord {
	return s.bus.Subscribe()
}

// Run executes the simulation until the plan finishes, the step budget is
// exhausted or the context is canceled, then writes the configured exports.
func (s *Service) Run(ctx context.Context) error {
	cfg := s.cfg

	params, err := cfg.BessParams()
	if err != nil {
		s.log.Warnf("voltage curve rejected, using built-in table: %v", err)
	}
	start := time.Now().UTC()
	if cfg.Simulation.StartDatetimeUTC != "" {
		if t, perr := time.Parse(time.RFC3339, cfg.Simulation.StartDatetimeUTC); perr == nil {
			start = t.UTC()
		} else {
			s.log.Warnf("invalid start_datetime_utc %q: %v", cfg.Simulation.StartDatetimeUTC, perr)
		}
	}
	if wc, ok := s.envp.(*weather.Client); ok {
		end := start.Add(time.Duration(cfg.Simulation.DurationHours * float64(time.Hour)))
		if err := wc.Prefetch(ctx, start, end); err != nil {
			s.log.Warnf("weather prefetch failed, using constant conditions: %v", err)
		}
	}
	if cond, err := s.envp.Conditions(start); err == nil {
		params.AmbientTempC = cond.AmbientTempC
	}

	site := bess.NewSite(&params, cfg.SiteLayout(), cfg.Distribution(), cfg.Seed, cfg.Plan())
	s.log.Infof("run %s: %d groups, step %ds, duration %.1fh",
		site.RunID, len(site.Groups), cfg.Simulation.StepSeconds, cfg.Simulation.DurationHours)

	if cfg.Metrics.PrometheusEnabled {
		go func() {
			addr := ":" + cfg.Metrics.PrometheusPort
			if err := metrics.StartPromServer(ctx, addr, s.log); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	maxSteps := cfg.Simulation.MaxSteps
	if maxSteps <= 0 {
		maxSteps = cfg.Simulation.TotalSteps()
	}
	runner := sim.NewRunner(site, float64(cfg.Simulation.StepSeconds), maxSteps)

	var records []sim.StepRecord
	nextProgress := 3600.0
	for {
		select {
		case <-ctx.Done():
			s.log.Warnf("run %s canceled after %d steps", site.RunID, runner.Steps())
			return s.finish(site, records, ctx.Err())
		default:
		}
		st, ok := runner.Next()
		if !ok {
			break
		}
		rec := sim.Snapshot(st)
		records = append(records, rec)
		if err := s.sink.RecordStep(rec); err != nil {
			s.log.Warnf("metrics sink: %v", err)
		}
		s.bus.Publish(rec)
		if s.pub != nil {
			if err := s.pub.PublishStep(rec); err != nil {
				s.log.Warnf("mqtt publish: %v", err)
			}
		}
		if rec.TimeS >= nextProgress {
			s.log.Infof("t=%.1fh state=%s soc=%.2f%% target=%.2fMW",
				rec.TimeH, rec.TestState, rec.AvgGroupSOCPercent, rec.SiteTargetPowerMW)
			nextProgress += 3600.0
		}
	}
	return s.finish(site, records, nil)
}

// finish writes exports and closes backends. Export failures are logged
// but do not mask a cancellation error.
func (s *Service) finish(site *bess.Site, records []sim.StepRecord, runErr error) error {
	cfg := s.cfg
	if cfg.Export.CSVPath != "" {
		if err := writeFile(cfg.Export.CSVPath, func(f *os.File) error {
			return export.WriteCSV(f, records)
		}); err != nil {
			s.log.Errorf("csv export: %v", err)
		} else {
			s.log.Infof("wrote %d rows to %s", len(records), cfg.Export.CSVPath)
		}
	}
	if cfg.Export.JSONPath != "" {
		if err := writeFile(cfg.Export.JSONPath, func(f *os.File) error {
			return export.WriteJSON(f, records)
		}); err != nil {
			s.log.Errorf("json export: %v", err)
		}
	}

	last := sim.Snapshot(site)
	s.log.Infow("run finished", map[string]any{
		"run_id":     site.RunID,
		"steps":      len(records),
		"time_h":     last.TimeH,
		"state":      last.TestState,
		"final_soc":  last.AvgGroupSOCPercent,
		"min_cell_v": last.MinCellVoltageV,
		"max_cell_v": last.MaxCellVoltageV,
	})
	return runErr
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.bus.Close()
	if s.pub != nil {
		s.pub.Close()
	}
	return nil
}

func writeFile(path string, write func(*os.File) error) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
