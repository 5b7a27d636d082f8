package uvfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"
)

// Handler consumes decoded UV updates.
type Handler interface {
	HandleUpdate(ctx context.Context, update Update)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, update Update)

// HandleUpdate calls f.
func (f HandlerFunc) HandleUpdate(ctx context.Context, update Update) {
	f(ctx, update)
}

// Subscriber receives UV updates from a Pub/Sub subscription and feeds
// them to a handler.
type Subscriber struct {
	subscriber       *pubsub.Subscriber
	subscriptionName string
	handler          Handler
	logger           zerolog.Logger
}

// SubscriberConfig holds configuration for the subscriber.
type SubscriberConfig struct {
	Client           *pubsub.Client
	SubscriptionName string
	Handler          Handler
	Logger           zerolog.Logger
}

// NewSubscriber creates a subscriber for the given subscription.
func NewSubscriber(cfg SubscriberConfig) *Subscriber {
	subscriber := cfg.Client.Subscriber(cfg.SubscriptionName)
	subscriber.ReceiveSettings.MaxOutstandingMessages = 10
	subscriber.ReceiveSettings.MaxExtension = 10 * time.Minute

	return &Subscriber{
		subscriber:       subscriber,
		subscriptionName: cfg.SubscriptionName,
		handler:          cfg.Handler,
		logger:           cfg.Logger,
	}
}

// Start begins receiving updates. It blocks until ctx is canceled.
func (s *Subscriber) Start(ctx context.Context) error {
	s.logger.Info().
		Str("subscription", s.subscriptionName).
		Msg("starting uv feed subscriber")

	err := s.subscriber.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		s.handleMessage(ctx, msg)
	})
	if err != nil {
		return fmt.Errorf("receiving uv updates: %w", err)
	}
	return nil
}

func (s *Subscriber) handleMessage(ctx context.Context, msg *pubsub.Message) {
	var update Update
	if err := json.Unmarshal(msg.Data, &update); err != nil {
		s.logger.Error().Err(err).
			Str("message_id", msg.ID).
			Msg("failed to parse uv update")
		// Malformed payloads never become parseable on redelivery
		msg.Ack()
		return
	}

	if update.DeviceID == "" {
		s.logger.Warn().
			Str("message_id", msg.ID).
			Msg("uv update without device id")
		msg.Ack()
		return
	}

	s.handler.HandleUpdate(ctx, update)
	msg.Ack()
}
