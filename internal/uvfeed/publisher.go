package uvfeed

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"
)

// Publisher publishes UV updates to a Pub/Sub topic.
type Publisher struct {
	publisher *pubsub.Publisher
	logger    zerolog.Logger
}

// PublisherConfig holds configuration for the publisher.
type PublisherConfig struct {
	Client *pubsub.Client
	Topic  string
	Logger zerolog.Logger
}

// NewPublisher creates a publisher for the given topic.
func NewPublisher(cfg PublisherConfig) *Publisher {
	return &Publisher{
		publisher: cfg.Client.Publisher(cfg.Topic),
		logger:    cfg.Logger,
	}
}

// Publish sends a UV update for a device.
func (p *Publisher) Publish(ctx context.Context, update Update) error {
	data, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("marshaling uv update: %w", err)
	}

	result := p.publisher.Publish(ctx, &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"device_id": update.DeviceID,
		},
	})

	id, err := result.Get(ctx)
	if err != nil {
		return fmt.Errorf("publishing uv update: %w", err)
	}

	p.logger.Debug().
		Str("message_id", id).
		Str("device_id", update.DeviceID).
		Int("uv_index", update.UVIndex).
		Msg("published uv update")

	return nil
}

// Stop flushes pending messages.
func (p *Publisher) Stop() {
	p.publisher.Stop()
}
