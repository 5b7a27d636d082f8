package alerts

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/suntrack/suntrack/internal/exposure"
	"github.com/suntrack/suntrack/internal/sunscreen"
)

// Publisher publishes alert events to a Pub/Sub topic. Publishing is
// retried with exponential backoff; alerts are advisory and the caller
// treats failures as non-fatal.
type Publisher struct {
	publisher *pubsub.Publisher
	logger    zerolog.Logger

	maxRetries      uint64
	initialInterval time.Duration
}

// PublisherConfig holds configuration for the alert publisher.
type PublisherConfig struct {
	Client *pubsub.Client
	Topic  string
	Logger zerolog.Logger

	// MaxRetries bounds publish retry attempts (default: 3).
	MaxRetries uint64

	// InitialInterval is the initial retry backoff interval (default: 200ms).
	InitialInterval time.Duration
}

// NewPublisher creates an alert publisher for the given topic.
func NewPublisher(cfg PublisherConfig) *Publisher {
	maxRetries := cfg.MaxRetries
	if maxRetries == 0 {
		maxRetries = 3
	}

	initialInterval := cfg.InitialInterval
	if initialInterval == 0 {
		initialInterval = 200 * time.Millisecond
	}

	return &Publisher{
		publisher:       cfg.Client.Publisher(cfg.Topic),
		logger:          cfg.Logger,
		maxRetries:      maxRetries,
		initialInterval: initialInterval,
	}
}

// ExposureExceeded publishes an exposure limit alert.
func (p *Publisher) ExposureExceeded(ctx context.Context, deviceID string, ev exposure.ExceededEvent) error {
	return p.publish(ctx, ExposureExceededMessage(deviceID, ev))
}

// SunscreenExpired publishes a reapply reminder alert.
func (p *Publisher) SunscreenExpired(ctx context.Context, deviceID string, ev sunscreen.ExpiredEvent) error {
	return p.publish(ctx, SunscreenExpiredMessage(deviceID, ev))
}

func (p *Publisher) publish(ctx context.Context, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshaling alert: %w", err)
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = p.initialInterval
	bo.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, p.maxRetries), ctx)

	operation := func() error {
		result := p.publisher.Publish(ctx, &pubsub.Message{
			Data: data,
			Attributes: map[string]string{
				"type":      msg.Type,
				"device_id": msg.DeviceID,
			},
		})

		id, err := result.Get(ctx)
		if err != nil {
			return err
		}

		p.logger.Debug().
			Str("message_id", id).
			Str("type", msg.Type).
			Str("device_id", msg.DeviceID).
			Msg("published alert")
		return nil
	}

	if err := backoff.Retry(operation, policy); err != nil {
		return fmt.Errorf("publishing alert: %w", err)
	}
	return nil
}

// Stop flushes pending messages.
func (p *Publisher) Stop() {
	p.publisher.Stop()
}
