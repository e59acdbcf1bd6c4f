// Copyright (c) 2026 Sajag Subedi. All rights reserved.

package events

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// redialDelay is the pause between reconnect attempts after the broker
// drops the delivery stream.
const redialDelay = 5 * time.Second

// AMQPConsumer delivers events from the shared exchange to a [Handler].
//
// Each consumer owns a private, auto-deleted queue bound to its routing key.
// The queue lives only as long as the broker session does; when the stream
// drops, the consumer redials and binds a fresh queue, picking up events
// published after it reconnects.
type AMQPConsumer struct {
	url      string
	exchange string
	logger   *slog.Logger

	conn    *amqp.Connection
	channel *amqp.Channel

	// connect opens the delivery stream. Points at setup outside of tests.
	connect func(routingKey string) (<-chan amqp.Delivery, error)
	delay   time.Duration
}

// NewAMQPConsumer creates a consumer for the given broker URL and exchange.
func NewAMQPConsumer(url string, exchange string, logger *slog.Logger) *AMQPConsumer {
	consumer := &AMQPConsumer{
		url:      url,
		exchange: exchange,
		logger:   logger,
		delay:    redialDelay,
	}
	consumer.connect = consumer.setup
	return consumer
}

/*
Subscribe binds a private queue to routingKey and dispatches deliveries to
handler until the context is canceled.

Description: Messages are acknowledged after the handler returns, whether or
not it succeeded. A handler failure is logged and the message is consumed;
a poison message must not wedge the queue. If the broker closes the delivery
stream, the consumer keeps redialing on a fixed delay until it is bound
again or the context ends.

Parameters:
  - context: Governs the consume loop lifetime.
  - routingKey: Topic pattern to bind, e.g. "post.deleted".
  - handler: Callback invoked per delivery.

Returns:
  - error: Initial broker setup failures. The consume loop itself runs
    until cancel, reconnecting as needed.
*/
func (consumer *AMQPConsumer) Subscribe(context context.Context, routingKey string, handler Handler) error {
	deliveries, err := consumer.connect(routingKey)
	if err != nil {
		return err
	}

	go consumer.run(context, routingKey, deliveries, handler)

	return nil
}

// Close shuts the broker connection down. Safe to call when never connected.
func (consumer *AMQPConsumer) Close() error {
	if consumer.conn == nil {
		return nil
	}
	return consumer.conn.Close()
}

// setup establishes the broker session and returns the delivery stream.
func (consumer *AMQPConsumer) setup(routingKey string) (<-chan amqp.Delivery, error) {

	// ── 1. Establish the broker session ──────────────────────────────────
	conn, err := amqp.Dial(consumer.url)
	if err != nil {
		return nil, fmt.Errorf("events: broker dial failed: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("events: channel open failed: %w", err)
	}

	consumer.conn = conn
	consumer.channel = channel

	// ── 2. Declare the exchange and a private queue ──────────────────────
	err = channel.ExchangeDeclare(consumer.exchange, "topic", false, false, false, false, nil)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("events: exchange declare failed: %w", err)
	}

	// Server-named, exclusive queue: deleted when this consumer goes away.
	queue, err := channel.QueueDeclare("", false, false, true, false, nil)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("events: queue declare failed: %w", err)
	}

	err = channel.QueueBind(queue.Name, routingKey, consumer.exchange, false, nil)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("events: queue bind failed: %w", err)
	}

	// ── 3. Start the delivery stream with manual acknowledgement ─────────
	deliveries, err := channel.Consume(queue.Name, "", false, true, false, false, nil)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("events: consume failed: %w", err)
	}

	consumer.logger.Info("event_subscription_started",
		slog.String("exchange", consumer.exchange),
		slog.String("routing_key", routingKey),
		slog.String("queue", queue.Name),
	)

	return deliveries, nil
}

// run drains delivery streams until the context ends, resubscribing
// whenever the broker drops the current one.
func (consumer *AMQPConsumer) run(ctx context.Context, routingKey string, deliveries <-chan amqp.Delivery, handler Handler) {
	for {
		consumer.dispatch(ctx, routingKey, deliveries, handler)

		if ctx.Err() != nil {
			consumer.logger.Info("event_subscription_stopped", slog.String("routing_key", routingKey))
			return
		}

		consumer.logger.Warn("event_stream_closed", slog.String("routing_key", routingKey))

		// Redial until the stream is bound again or the context ends.
		for {
			select {
			case <-ctx.Done():
				consumer.logger.Info("event_subscription_stopped", slog.String("routing_key", routingKey))
				return
			case <-time.After(consumer.delay):
			}

			next, err := consumer.connect(routingKey)
			if err != nil {
				consumer.logger.Error("event_resubscribe_failed",
					slog.String("routing_key", routingKey),
					slog.Any("error", err),
				)
				continue
			}

			deliveries = next
			break
		}
	}
}

// dispatch runs the consume loop until the stream closes or ctx is canceled.
func (consumer *AMQPConsumer) dispatch(ctx context.Context, routingKey string, deliveries <-chan amqp.Delivery, handler Handler) {
	for {
		select {
		case <-ctx.Done():
			return

		case delivery, open := <-deliveries:
			if !open {
				return
			}

			if err := handler(ctx, delivery.Body); err != nil {
				consumer.logger.Error("event_handler_failed",
					slog.String("routing_key", delivery.RoutingKey),
					slog.Any("error", err),
				)
			}

			// Ack regardless of handler outcome.
			if err := delivery.Ack(false); err != nil {
				consumer.logger.Error("event_ack_failed",
					slog.String("routing_key", delivery.RoutingKey),
					slog.Any("error", err),
				)
			}
		}
	}
}
