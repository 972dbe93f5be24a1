package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/modulo-iot/modulocore/internal/infrastructure/logging"
	"github.com/modulo-iot/modulocore/internal/infrastructure/mqtt"
)

// defaultBufferSize bounds the intake queue between the paho callbacks
// and the dispatch goroutine.
const defaultBufferSize = 256

// Subscriber abstracts the MQTT client for topic subscription.
type Subscriber interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
}

// Consumer drains the bus into the handlers.
//
// MQTT callbacks enqueue envelopes onto a buffered channel; a single
// goroutine dispatches them sequentially, so module field mutations
// (tech-info, beam position) never race each other. A full buffer drops
// the message with a warning rather than blocking the paho callback.
type Consumer struct {
	client   Subscriber
	handlers *Handlers
	topics   mqtt.Topics
	logger   *logging.Logger
	qos      byte

	queue chan Envelope
	done  chan struct{}
}

// NewConsumer creates a consumer reading from the given client.
func NewConsumer(client Subscriber, handlers *Handlers, logger *logging.Logger, qos byte) *Consumer {
	return &Consumer{
		client:   client,
		handlers: handlers,
		logger:   logger.With("component", "consumer"),
		qos:      qos,
		queue:    make(chan Envelope, defaultBufferSize),
		done:     make(chan struct{}),
	}
}

// Start subscribes to all telemetry patterns and launches the dispatch
// goroutine. Subscriptions are restored by the client on reconnect.
func (c *Consumer) Start(ctx context.Context) error {
	for _, pattern := range c.topics.SubscriptionPatterns() {
		if err := c.client.Subscribe(pattern, c.qos, c.enqueue); err != nil {
			return fmt.Errorf("subscribing to %s: %w", pattern, err)
		}
		c.logger.Debug("subscribed", "pattern", pattern)
	}

	go c.run(ctx)

	c.logger.Info("consumer started",
		"patterns", len(c.topics.SubscriptionPatterns()),
		"buffer", cap(c.queue))
	return nil
}

// enqueue is the MQTT callback: stamp receipt time and hand off.
func (c *Consumer) enqueue(topic string, payload []byte) error {
	env := Envelope{
		Topic:      topic,
		Payload:    payload,
		ReceivedAt: time.Now().UTC(),
	}

	select {
	case c.queue <- env:
		return nil
	default:
		c.logger.Warn("intake buffer full, message dropped", "topic", topic)
		return nil
	}
}

// run dispatches envelopes sequentially until ctx is cancelled. The
// in-flight message finishes before the loop returns.
func (c *Consumer) run(ctx context.Context) {
	defer close(c.done)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("consumer stopped")
			return
		case env := <-c.queue:
			// A single bad message must never take the loop down.
			if err := c.handlers.Handle(ctx, env); err != nil {
				c.logger.Error("message handling failed",
					"topic", env.Topic,
					"error", err)
			}
		}
	}
}

// Wait blocks until the dispatch goroutine has exited.
func (c *Consumer) Wait() {
	<-c.done
}
