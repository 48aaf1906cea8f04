package common

import (
	"context"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

type Queue string

const (
	// BlogNotificationQueue carries one message per published blog post. The
	// queue is declared durable and messages are published persistent so both
	// survive a broker restart.
	BlogNotificationQueue Queue = "blog_notifications"
)

type MessageProducer interface {
	Publish(ctx context.Context, queue Queue, msg []byte) error
}

type MessageConsumer interface {
	Consume(queue Queue) (<-chan amqp.Delivery, error)
}

// MessageBroker is a thin durable pub/sub wrapper around a single AMQP
// connection and channel, shared process-wide. Connecting is lazy: Publish and
// Consume establish the connection on first use.
type MessageBroker struct {
	uri string

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewMessageBroker(URI string) *MessageBroker {
	return &MessageBroker{uri: URI}
}

// Connect dials the broker, opens a channel and declares the notification
// queue. Calling Connect on an already connected broker is a no-op.
func (mb *MessageBroker) Connect() error {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	return mb.connect()
}

// connect must be called with mb.mu held.
func (mb *MessageBroker) connect() error {
	if mb.conn != nil && !mb.conn.IsClosed() && mb.ch != nil {
		return nil
	}

	conn, err := amqp.Dial(mb.uri)
	if err != nil {
		return fmt.Errorf("could not connect to AMQP: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("could not open channel: %w", err)
	}

	_, err = ch.QueueDeclare(string(BlogNotificationQueue), true, false, false, false, nil)
	if err != nil {
		ch.Close()
		conn.Close()
		return fmt.Errorf("could not declare queue: %w", err)
	}

	mb.conn = conn
	mb.ch = ch

	return nil
}

// Close closes the channel then the connection. Safe to call when the broker
// never connected or is already closed.
func (mb *MessageBroker) Close() error {
	mb.mu.Lock()
	defer mb.mu.Unlock()

	if mb.ch != nil {
		if err := mb.ch.Close(); err != nil && err != amqp.ErrClosed {
			return err
		}
		mb.ch = nil
	}

	if mb.conn != nil {
		if err := mb.conn.Close(); err != nil && err != amqp.ErrClosed {
			return err
		}
		mb.conn = nil
	}

	return nil
}

// Publish sends msg to the named queue with persistent delivery, connecting
// first if needed.
func (mb *MessageBroker) Publish(ctx context.Context, queue Queue, msg []byte) error {
	mb.mu.Lock()
	defer mb.mu.Unlock()

	if err := mb.connect(); err != nil {
		return err
	}

	err := mb.ch.PublishWithContext(ctx, "", string(queue), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         msg,
	})
	if err != nil {
		return fmt.Errorf("could not publish message: %w", err)
	}

	return nil
}

// Consume registers a consumer on the named queue with a prefetch of one so a
// slow handler never accumulates unacknowledged deliveries. Deliveries must be
// acknowledged manually by the caller.
func (mb *MessageBroker) Consume(queue Queue) (<-chan amqp.Delivery, error) {
	mb.mu.Lock()
	defer mb.mu.Unlock()

	if err := mb.connect(); err != nil {
		return nil, err
	}

	if err := mb.ch.Qos(1, 0, false); err != nil {
		return nil, fmt.Errorf("could not set prefetch: %w", err)
	}

	msgs, err := mb.ch.Consume(string(queue), "", false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("could not consume message: %w", err)
	}

	return msgs, nil
}
