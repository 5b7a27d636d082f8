package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"
)

// RefreshMessage tells widget and live-activity collaborators to re-read
// the snapshot for a device.
type RefreshMessage struct {
	DeviceID  string    `json:"device_id"`
	RecordKey string    `json:"record_key"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PubSubNotifier publishes snapshot refresh signals to a Pub/Sub topic.
type PubSubNotifier struct {
	publisher *pubsub.Publisher
	logger    zerolog.Logger
}

// PubSubNotifierConfig holds configuration for the notifier.
type PubSubNotifierConfig struct {
	Client *pubsub.Client
	Topic  string
	Logger zerolog.Logger
}

// NewPubSubNotifier creates a notifier publishing to the given topic.
func NewPubSubNotifier(cfg PubSubNotifierConfig) *PubSubNotifier {
	return &PubSubNotifier{
		publisher: cfg.Client.Publisher(cfg.Topic),
		logger:    cfg.Logger,
	}
}

// SnapshotUpdated publishes the refresh signal. The caller treats errors as
// non-fatal; the persisted record is already correct and the next natural
// refresh cycle will pick it up.
func (n *PubSubNotifier) SnapshotUpdated(ctx context.Context, deviceID string) error {
	msg := RefreshMessage{
		DeviceID:  deviceID,
		RecordKey: recordKey(deviceID),
		UpdatedAt: time.Now(),
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal refresh message: %w", err)
	}

	result := n.publisher.Publish(ctx, &pubsub.Message{Data: data})
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("publish refresh signal: %w", err)
	}

	n.logger.Debug().
		Str("device_id", deviceID).
		Msg("snapshot refresh signal published")
	return nil
}

// Stop flushes pending messages. Call during shutdown.
func (n *PubSubNotifier) Stop() {
	n.publisher.Stop()
}
