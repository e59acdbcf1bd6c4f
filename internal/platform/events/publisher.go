// Copyright (c) 2026 Sajag Subedi. All rights reserved.

package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

// publishChannel is the slice of the AMQP channel API the publisher uses.
type publishChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	IsClosed() bool
}

// AMQPPublisher is a lazily connecting [Publisher] over a shared exchange.
//
// The broker connection is established on first use, not at construction, so
// services come up even when the broker is still starting. A failed publish
// tears the connection down; the next publish redials.
type AMQPPublisher struct {
	url      string
	exchange string
	logger   *slog.Logger

	mu      sync.Mutex
	conn    *amqp.Connection
	channel publishChannel
}

// NewAMQPPublisher creates a publisher for the given broker URL and exchange.
func NewAMQPPublisher(url string, exchange string, logger *slog.Logger) *AMQPPublisher {
	return &AMQPPublisher{
		url:      url,
		exchange: exchange,
		logger:   logger,
	}
}

// Publish implements [Publisher].
func (publisher *AMQPPublisher) Publish(context context.Context, routingKey string, event any) error {

	// ── 1. Serialize the payload before touching the broker ──────────────
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("events: marshal for %q failed: %w", routingKey, err)
	}

	publisher.mu.Lock()
	defer publisher.mu.Unlock()

	// ── 2. Ensure a live channel, dialing if necessary ───────────────────
	channel, err := publisher.ensureChannel()
	if err != nil {
		return err
	}

	// ── 3. Publish to the topic exchange ─────────────────────────────────
	err = channel.PublishWithContext(context,
		publisher.exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
	if err != nil {
		// Drop the broken connection so the next call redials.
		publisher.reset()
		return fmt.Errorf("events: publish %q failed: %w", routingKey, err)
	}

	publisher.logger.Info("event_published",
		slog.String("exchange", publisher.exchange),
		slog.String("routing_key", routingKey),
	)

	return nil
}

// Close shuts the broker connection down. Safe to call when never connected.
func (publisher *AMQPPublisher) Close() error {
	publisher.mu.Lock()
	defer publisher.mu.Unlock()

	if publisher.conn == nil {
		return nil
	}

	err := publisher.conn.Close()
	publisher.conn = nil
	publisher.channel = nil

	return err
}

// ensureChannel returns a usable channel, establishing the connection and
// declaring the exchange on first use. Caller must hold the mutex.
func (publisher *AMQPPublisher) ensureChannel() (publishChannel, error) {
	if publisher.channel != nil && !publisher.channel.IsClosed() {
		return publisher.channel, nil
	}

	conn, err := amqp.Dial(publisher.url)
	if err != nil {
		return nil, fmt.Errorf("events: broker dial failed: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("events: channel open failed: %w", err)
	}

	// Topic exchange, non-durable: events are transient signals, not a log.
	err = channel.ExchangeDeclare(publisher.exchange, "topic", false, false, false, false, nil)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("events: exchange declare failed: %w", err)
	}

	publisher.conn = conn
	publisher.channel = channel

	publisher.logger.Info("event_broker_connected", slog.String("exchange", publisher.exchange))

	return publisher.channel, nil
}

// reset drops the current connection. Caller must hold the mutex.
func (publisher *AMQPPublisher) reset() {
	if publisher.conn != nil {
		_ = publisher.conn.Close()
	}
	publisher.conn = nil
	publisher.channel = nil
}
