package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-matcher/internal/logging"
)

// Outcome tells the consumer how to settle a delivery.
type Outcome int

const (
	// Ack removes the message.
	Ack Outcome = iota
	// Reject drops the message without requeueing it.
	Reject
	// Requeue returns the message to the queue for another attempt.
	Requeue
)

func (o Outcome) String() string {
	switch o {
	case Ack:
		return "ack"
	case Reject:
		return "reject"
	case Requeue:
		return "requeue"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Delivery is the part of an AMQP delivery a handler sees.
type Delivery struct {
	Body        []byte
	Redelivered bool
	MessageID   string
}

// HandlerFunc processes one delivery.
type HandlerFunc func(ctx context.Context, d Delivery) Outcome

// RabbitMQ publishes JSON messages and consumes queues over one connection.
type RabbitMQ struct {
	conn *amqp.Connection

	mu  sync.Mutex
	pub *amqp.Channel
}

// Dial connects to the broker.
func Dial(url string) (*RabbitMQ, error) {
	if url == "" {
		return nil, fmt.Errorf("amqp url is required")
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	pub, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	return &RabbitMQ{conn: conn, pub: pub}, nil
}

// Close closes the connection and its channels.
func (r *RabbitMQ) Close() error {
	return r.conn.Close()
}

// DeclareQueue declares a durable queue.
func (r *RabbitMQ) DeclareQueue(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.pub.QueueDeclare(name, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", name, err)
	}
	return nil
}

// Publish sends v as a persistent JSON message to queue through the default exchange.
func (r *RabbitMQ) Publish(ctx context.Context, queue string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	err = r.pub.PublishWithContext(ctx, "", queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", queue, err)
	}
	return nil
}

// Consume delivers messages from queue to handle with at most concurrency in flight and settles
// each one by its Outcome. It blocks until ctx is done or the broker closes the channel.
func (r *RabbitMQ) Consume(ctx context.Context, queue string, concurrency int, handle HandlerFunc) error {
	if concurrency <= 0 {
		concurrency = 1
	}

	ch, err := r.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(concurrency, 0, false); err != nil {
		return fmt.Errorf("failed to set qos: %w", err)
	}
	deliveries, err := ch.ConsumeWithContext(ctx, queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to consume %s: %w", queue, err)
	}

	logging.Info().Str("queue", queue).Int("concurrency", concurrency).Msg("consumer started")
	defer logging.Info().Str("queue", queue).Msg("consumer stopped")

	var g errgroup.Group
	g.SetLimit(concurrency)
	defer func() { _ = g.Wait() }()

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("delivery channel for %s closed", queue)
			}
			g.Go(func() error {
				settle(d, handle(ctx, Delivery{Body: d.Body, Redelivered: d.Redelivered, MessageID: d.MessageId}))
				return nil
			})
		}
	}
}

func settle(d amqp.Delivery, outcome Outcome) {
	var err error
	switch outcome {
	case Ack:
		err = d.Ack(false)
	case Requeue:
		err = d.Nack(false, true)
	default:
		err = d.Reject(false)
	}
	if err != nil {
		logging.Error().Err(err).Str("outcome", outcome.String()).Msg("failed to settle delivery")
	}
}
