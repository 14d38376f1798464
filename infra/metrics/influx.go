package metrics

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/voltsim/besstwin/core/metrics"
	"github.com/voltsim/besstwin/core/sim"
	"github.com/voltsim/besstwin/infra/logger"
)

// InfluxSink writes step records to an InfluxDB instance using the official
// client. Step time is mapped onto wall time so successive steps keep
// distinct timestamps.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
	start    time.Time
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
		start:    time.Now(),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.StepSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordStep writes the step record as a single measurement point.
func (s *InfluxSink) RecordStep(rec sim.StepRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("simulation_step").
		AddTag("run_id", rec.RunID).
		AddTag("test_state", rec.TestState).
		AddField("time_s", rec.TimeS).
		AddField("site_target_power_mw", round3(rec.SiteTargetPowerMW)).
		AddField("avg_group_soc_percent", round3(rec.AvgGroupSOCPercent)).
		AddField("avg_group_commanded_power_mw", round3(rec.AvgGroupCommandedPowerMW)).
		AddField("avg_group_applied_power_mw", round3(rec.AvgGroupAppliedPowerMW)).
		AddField("min_cell_voltage_v", round3(rec.MinCellVoltageV)).
		AddField("max_cell_voltage_v", round3(rec.MaxCellVoltageV)).
		SetTime(s.start.Add(time.Duration(rec.TimeS * float64(time.Second))))
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the underlying client.
func (s *InfluxSink) Close() {
	s.client.Close()
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
