// Package weather fetches historical ambient conditions from an external
// weather API and caches them per hour.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/voltsim/besstwin/core/env"
	"github.com/voltsim/besstwin/infra/logger"
)

// Config identifies the weather API endpoint and location.
type Config struct {
	APIName   string  `json:"api_name"`
	BaseURL   string  `json:"base_url"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Client is an env.Provider backed by an hourly historical weather API
// (open-meteo style archive endpoint). Results are cached per hour; a query
// outside the fetched range returns the fallback conditions.
type Client struct {
	cfg      Config
	client   *http.Client
	log      logger.Logger
	fallback env.Conditions

	mu    sync.Mutex
	cache map[int64]env.Conditions
}

// NewClient creates a weather client. fallback is served whenever the API
// has no data for the requested hour.
func NewClient(cfg Config, fallback env.Conditions) *Client {
	return &Client{
		cfg:      cfg,
		client:   &http.Client{Timeout: 10 * time.Second},
		log:      logger.New("weather-client"),
		fallback: fallback,
		cache:    make(map[int64]env.Conditions),
	}
}

// Prefetch loads hourly conditions for [from, to] into the cache. It is
// best effort; on failure the client keeps serving the fallback.
func (c *Client) Prefetch(ctx context.Context, from, to time.Time) error {
	q := url.Values{}
	q.Set("latitude", fmt.Sprintf("%.4f", c.cfg.Latitude))
	q.Set("longitude", fmt.Sprintf("%.4f", c.cfg.Longitude))
	q.Set("start_date", from.UTC().Format("2006-01-02"))
	q.Set("end_date", to.UTC().Format("2006-01-02"))
	q.Set("hourly", "temperature_2m,shortwave_radiation")
	q.Set("timeformat", "unixtime")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("weather api status %d", resp.StatusCode)
	}

	var body struct {
		Hourly struct {
			Time               []int64   `json:"time"`
			Temperature2M      []float64 `json:"temperature_2m"`
			ShortwaveRadiation []float64 `json:"shortwave_radiation"`
		} `json:"hourly"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for i, ts := range body.Hourly.Time {
		cond := c.fallback
		if i < len(body.Hourly.Temperature2M) {
			cond.AmbientTempC = body.Hourly.Temperature2M[i]
		}
		if i < len(body.Hourly.ShortwaveRadiation) {
			cond.SolarIrradianceWM2 = body.Hourly.ShortwaveRadiation[i]
		}
		c.cache[ts] = cond
	}
	c.log.Infof("cached %d hourly samples from %s", len(body.Hourly.Time), c.cfg.APIName)
	return nil
}

// Conditions implements env.Provider.
func (c *Client) Conditions(at time.Time) (env.Conditions, error) {
	hour := at.UTC().Truncate(time.Hour).Unix()
	c.mu.Lock()
	cond, ok := c.cache[hour]
	c.mu.Unlock()
	if !ok {
		return c.fallback, nil
	}
	return cond, nil
}
