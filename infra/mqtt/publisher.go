package mqtt

import (
	"encoding/json"
	"fmt"

	"github.com/voltsim/besstwin/core/sim"
)

// Publisher emits step records as JSON telemetry messages.
type Publisher struct {
	client *Client
	prefix string
}

// NewPublisher connects a telemetry publisher using cfg.
func NewPublisher(cfg Config) (*Publisher, error) {
	cfg.SetDefaults()
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &Publisher{client: client, prefix: cfg.TopicPrefix}, nil
}

// PublishStep publishes one step record under <prefix>/<run_id>/step.
func (p *Publisher) PublishStep(rec sim.StepRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	topic := fmt.Sprintf("%s/%s/step", p.prefix, rec.RunID)
	return p.client.Publish(topic, payload)
}

// Close disconnects the underlying client.
func (p *Publisher) Close() {
	if p.client != nil {
		p.client.Disconnect()
	}
}
