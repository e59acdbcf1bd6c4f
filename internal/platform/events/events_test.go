// Copyright (c) 2026 Sajag Subedi. All rights reserved.

// The publisher's channel seam and the consumer's connect and dispatch
// loops are unexported, so these tests live inside the package to drive
// them without a live broker.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeChannel records publishes and can simulate broker failures.
type fakeChannel struct {
	published []amqp.Publishing
	keys      []string
	failWith  error
	closed    bool
}

func (channel *fakeChannel) ExchangeDeclare(string, string, bool, bool, bool, bool, amqp.Table) error {
	return nil
}

func (channel *fakeChannel) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp.Publishing) error {
	if channel.failWith != nil {
		return channel.failWith
	}
	channel.keys = append(channel.keys, key)
	channel.published = append(channel.published, msg)
	return nil
}

func (channel *fakeChannel) IsClosed() bool { return channel.closed }

// fakeAcknowledger records acknowledgements for constructed deliveries.
type fakeAcknowledger struct {
	acked  []uint64
	nacked []uint64
}

func (ack *fakeAcknowledger) Ack(tag uint64, _ bool) error {
	ack.acked = append(ack.acked, tag)
	return nil
}

func (ack *fakeAcknowledger) Nack(tag uint64, _, _ bool) error {
	ack.nacked = append(ack.nacked, tag)
	return nil
}

func (ack *fakeAcknowledger) Reject(tag uint64, _ bool) error {
	ack.nacked = append(ack.nacked, tag)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

/*
TestAMQPPublisher_Publish verifies the JSON body and routing key handed to
the channel.
*/
func TestAMQPPublisher_Publish(t *testing.T) {
	channel := &fakeChannel{}
	publisher := &AMQPPublisher{
		exchange: "socialmedia_exchange",
		logger:   discardLogger(),
		channel:  channel,
	}

	event := PostDeleted{PostID: "p1", UserID: "u1", MediaIDs: []string{"m1"}}
	require.NoError(t, publisher.Publish(context.Background(), "post.deleted", event))

	require.Len(t, channel.published, 1)
	assert.Equal(t, "post.deleted", channel.keys[0])
	assert.Equal(t, "application/json", channel.published[0].ContentType)
	assert.JSONEq(t, `{"postId":"p1","userId":"u1","mediaIds":["m1"]}`, string(channel.published[0].Body))
}

/*
TestAMQPPublisher_PublishFailureResets verifies a failed publish drops the
channel so the next call redials instead of reusing a broken session.
*/
func TestAMQPPublisher_PublishFailureResets(t *testing.T) {
	channel := &fakeChannel{failWith: errors.New("channel gone")}
	publisher := &AMQPPublisher{
		exchange: "socialmedia_exchange",
		logger:   discardLogger(),
		channel:  channel,
	}

	err := publisher.Publish(context.Background(), "post.deleted", PostDeleted{PostID: "p1"})
	require.Error(t, err)
	assert.Nil(t, publisher.channel)
}

/*
TestAMQPPublisher_RejectsUnmarshalable verifies serialization failures never
reach the broker.
*/
func TestAMQPPublisher_RejectsUnmarshalable(t *testing.T) {
	channel := &fakeChannel{}
	publisher := &AMQPPublisher{
		exchange: "socialmedia_exchange",
		logger:   discardLogger(),
		channel:  channel,
	}

	err := publisher.Publish(context.Background(), "post.deleted", func() {})
	require.Error(t, err)
	assert.Empty(t, channel.published)
}

/*
TestConsumer_DispatchAcksAfterHandler verifies the dispatch loop invokes the
handler and acknowledges every delivery, including failed ones, so a poison
message cannot wedge the queue.
*/
func TestConsumer_DispatchAcksAfterHandler(t *testing.T) {
	consumer := NewAMQPConsumer("amqp://unused", "socialmedia_exchange", discardLogger())
	acknowledger := &fakeAcknowledger{}

	deliveries := make(chan amqp.Delivery, 2)
	deliveries <- amqp.Delivery{
		Acknowledger: acknowledger,
		DeliveryTag:  1,
		RoutingKey:   "post.deleted",
		Body:         []byte(`{"postId":"p1","userId":"u1","mediaIds":["m1"]}`),
	}
	deliveries <- amqp.Delivery{
		Acknowledger: acknowledger,
		DeliveryTag:  2,
		RoutingKey:   "post.deleted",
		Body:         []byte(`{broken`),
	}
	close(deliveries)

	var seen []PostDeleted
	handler := func(_ context.Context, payload []byte) error {
		var event PostDeleted
		if err := json.Unmarshal(payload, &event); err != nil {
			return err
		}
		seen = append(seen, event)
		return nil
	}

	// The closed channel ends the loop after both deliveries.
	consumer.dispatch(context.Background(), "post.deleted", deliveries, handler)

	require.Len(t, seen, 1)
	assert.Equal(t, "p1", seen[0].PostID)

	// Both deliveries acknowledged, the poison one included.
	assert.Equal(t, []uint64{1, 2}, acknowledger.acked)
	assert.Empty(t, acknowledger.nacked)
}

// signalAcknowledger publishes acknowledged tags on a channel so concurrent
// consume loops can be observed without sharing slices.
type signalAcknowledger struct {
	tags chan uint64
}

func (ack *signalAcknowledger) Ack(tag uint64, _ bool) error {
	select {
	case ack.tags <- tag:
	default:
	}
	return nil
}

func (ack *signalAcknowledger) Nack(uint64, bool, bool) error { return nil }
func (ack *signalAcknowledger) Reject(uint64, bool) error     { return nil }

/*
TestConsumer_ResubscribesAfterStreamClose verifies a dropped delivery stream
is re-established: the consumer redials, survives a failed attempt, and keeps
dispatching on the fresh stream.
*/
func TestConsumer_ResubscribesAfterStreamClose(t *testing.T) {
	consumer := NewAMQPConsumer("amqp://unused", "socialmedia_exchange", discardLogger())
	consumer.delay = time.Millisecond

	acknowledger := &signalAcknowledger{tags: make(chan uint64, 16)}
	closedStream := func(tag uint64) <-chan amqp.Delivery {
		stream := make(chan amqp.Delivery, 1)
		stream <- amqp.Delivery{
			Acknowledger: acknowledger,
			DeliveryTag:  tag,
			RoutingKey:   "post.deleted",
			Body:         []byte(`{"postId":"p1","userId":"u1"}`),
		}
		close(stream)
		return stream
	}

	// First stream drops after one delivery, the first redial fails, the
	// next one binds a fresh stream.
	var connects int
	consumer.connect = func(string) (<-chan amqp.Delivery, error) {
		connects++
		switch connects {
		case 1:
			return closedStream(1), nil
		case 2:
			return nil, errors.New("broker still down")
		default:
			return closedStream(2), nil
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler := func(context.Context, []byte) error { return nil }
	require.NoError(t, consumer.Subscribe(ctx, "post.deleted", handler))

	waitForTag := func(want uint64) {
		t.Helper()
		select {
		case tag := <-acknowledger.tags:
			assert.Equal(t, want, tag)
		case <-time.After(5 * time.Second):
			t.Fatalf("delivery %d never acknowledged", want)
		}
	}

	waitForTag(1)
	// Tag 2 arriving proves the consumer rebound after both the stream
	// close and the failed redial.
	waitForTag(2)
}
