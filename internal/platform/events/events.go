// Copyright (c) 2026 Sajag Subedi. All rights reserved.

/*
Package events carries asynchronous domain events between services over AMQP.

All traffic flows through a single topic exchange. Producers publish JSON
payloads under a routing key; consumers bind private queues to the keys they
care about. Delivery is at-least-once: handlers must tolerate replays.

Core Responsibilities:

  - Decoupling: A producer never knows which services consume its events.
  - Resilience: Publishers reconnect lazily after broker outages; consumers
    redial and rebind when the delivery stream drops.
  - Safety: Consumers acknowledge only after the handler has run.
*/
package events

import "context"

// PostDeleted is emitted when a post is removed, so downstream services can
// release resources tied to it.
type PostDeleted struct {
	PostID   string   `json:"postId"`
	UserID   string   `json:"userId"`
	MediaIDs []string `json:"mediaIds"`
}

// Handler processes one delivered event payload.
//
// A non-nil error is logged by the consumer but does not trigger redelivery;
// the message is acknowledged either way. Handlers own their retries.
type Handler func(context context.Context, payload []byte) error

// Publisher emits domain events under a routing key.
type Publisher interface {
	// Publish serializes event as JSON and sends it to the exchange. The
	// first call establishes the broker connection.
	Publish(context context.Context, routingKey string, event any) error
}
