package notifyservice

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"

	"github.com/blogmhq/blogm/internal/common"
	"github.com/blogmhq/blogm/internal/mailservice"
	"github.com/blogmhq/blogm/internal/subscriberservice"
)

type fakeLoader struct {
	subscribers []subscriberservice.Subscriber
	err         error
}

func (l *fakeLoader) GetActiveSubscribers(ctx context.Context) ([]subscriberservice.Subscriber, error) {
	return l.subscribers, l.err
}

type fakeConsumer struct {
	msgs chan amqp.Delivery
}

func (c *fakeConsumer) Consume(queue common.Queue) (<-chan amqp.Delivery, error) {
	return c.msgs, nil
}

// fakeAcknowledger records the settlement of each delivery.
type fakeAcknowledger struct {
	mu      sync.Mutex
	acked   int
	nacked  int
	requeue bool
	done    chan struct{}
}

func (a *fakeAcknowledger) Ack(tag uint64, multiple bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.acked++
	close(a.done)
	return nil
}

func (a *fakeAcknowledger) Nack(tag uint64, multiple, requeue bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nacked++
	a.requeue = requeue
	close(a.done)
	return nil
}

func (a *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	return a.Nack(tag, false, requeue)
}

func subscribers(emails ...string) []subscriberservice.Subscriber {
	subs := make([]subscriberservice.Subscriber, 0, len(emails))
	for _, email := range emails {
		subs = append(subs, subscriberservice.Subscriber{Email: email, IsSubscribed: true})
	}
	return subs
}

func TestProcessNotificationFanOut(t *testing.T) {
	loader := &fakeLoader{subscribers: subscribers("a@example.com", "b@example.com", "c@example.com")}
	mailer := &mailservice.MockMailer{}

	w := NewWorker(&fakeConsumer{}, loader, mailer, testLogger(), "http://localhost:4000", "BlogM")

	err := w.processNotification(context.Background(), &NotificationMessage{
		Type:      MessageTypeNewBlogPost,
		BlogID:    "blog-1",
		BlogTitle: "Fan Out",
	})
	assert.NoError(t, err)

	sent := mailer.SentTo()
	assert.Len(t, sent, 3)
	assert.Contains(t, sent, "a@example.com")
	assert.Contains(t, sent, "b@example.com")
	assert.Contains(t, sent, "c@example.com")
}

// One failing recipient never blocks the rest of the batch and the handler
// still reports success so the message is acknowledged.
func TestProcessNotificationFailureIsolation(t *testing.T) {
	loader := &fakeLoader{subscribers: subscribers("a@example.com", "b@example.com", "c@example.com")}
	mailer := &mailservice.MockMailer{
		FailFor: map[string]error{"b@example.com": errors.New("mailbox on fire")},
	}

	w := NewWorker(&fakeConsumer{}, loader, mailer, testLogger(), "http://localhost:4000", "BlogM")

	err := w.processNotification(context.Background(), &NotificationMessage{
		Type:      MessageTypeNewBlogPost,
		BlogID:    "blog-1",
		BlogTitle: "Fan Out",
	})
	assert.NoError(t, err)

	sent := mailer.SentTo()
	assert.Contains(t, sent, "a@example.com")
	assert.Contains(t, sent, "c@example.com")

	// The failing recipient is retried before being given up on.
	failures := 0
	for _, email := range sent {
		if email == "b@example.com" {
			failures++
		}
	}
	assert.Equal(t, 3, failures)
}

func TestProcessNotificationNoSubscribers(t *testing.T) {
	loader := &fakeLoader{}
	mailer := &mailservice.MockMailer{}

	w := NewWorker(&fakeConsumer{}, loader, mailer, testLogger(), "http://localhost:4000", "BlogM")

	err := w.processNotification(context.Background(), &NotificationMessage{BlogID: "blog-1"})
	assert.NoError(t, err)
	assert.Empty(t, mailer.SentTo())
}

func TestProcessNotificationLoaderFailure(t *testing.T) {
	loader := &fakeLoader{err: errors.New("db unreachable")}
	mailer := &mailservice.MockMailer{}

	w := NewWorker(&fakeConsumer{}, loader, mailer, testLogger(), "http://localhost:4000", "BlogM")

	err := w.processNotification(context.Background(), &NotificationMessage{BlogID: "blog-1"})
	assert.Error(t, err)
	assert.Empty(t, mailer.SentTo())
}

func delivery(t *testing.T, body []byte) (amqp.Delivery, *fakeAcknowledger) {
	t.Helper()

	ack := &fakeAcknowledger{done: make(chan struct{})}
	return amqp.Delivery{Acknowledger: ack, Body: body}, ack
}

func waitSettled(t *testing.T, ack *fakeAcknowledger) {
	t.Helper()

	select {
	case <-ack.done:
	case <-time.After(5 * time.Second):
		t.Fatal("delivery was never settled")
	}
}

func TestWorkerAcksProcessedMessage(t *testing.T) {
	consumer := &fakeConsumer{msgs: make(chan amqp.Delivery, 1)}
	loader := &fakeLoader{subscribers: subscribers("a@example.com")}
	mailer := &mailservice.MockMailer{}

	w := NewWorker(consumer, loader, mailer, testLogger(), "http://localhost:4000", "BlogM")
	assert.NoError(t, w.Start())
	t.Cleanup(w.Stop)

	body, err := json.Marshal(NotificationMessage{Type: MessageTypeNewBlogPost, BlogID: "blog-1", BlogTitle: "Hello"})
	assert.NoError(t, err)

	msg, ack := delivery(t, body)
	consumer.msgs <- msg

	waitSettled(t, ack)
	assert.Equal(t, 1, ack.acked)
	assert.Equal(t, 0, ack.nacked)
	assert.Equal(t, []string{"a@example.com"}, mailer.SentTo())
}

// A malformed payload is rejected without requeue so it can never poison the
// queue.
func TestWorkerRejectsMalformedMessage(t *testing.T) {
	consumer := &fakeConsumer{msgs: make(chan amqp.Delivery, 1)}
	loader := &fakeLoader{subscribers: subscribers("a@example.com")}
	mailer := &mailservice.MockMailer{}

	w := NewWorker(consumer, loader, mailer, testLogger(), "http://localhost:4000", "BlogM")
	assert.NoError(t, w.Start())
	t.Cleanup(w.Stop)

	msg, ack := delivery(t, []byte("{not json"))
	consumer.msgs <- msg

	waitSettled(t, ack)
	assert.Equal(t, 0, ack.acked)
	assert.Equal(t, 1, ack.nacked)
	assert.False(t, ack.requeue)
	assert.Empty(t, mailer.SentTo())
}

func TestWorkerRejectsOnHandlerFailure(t *testing.T) {
	consumer := &fakeConsumer{msgs: make(chan amqp.Delivery, 1)}
	loader := &fakeLoader{err: errors.New("db unreachable")}
	mailer := &mailservice.MockMailer{}

	w := NewWorker(consumer, loader, mailer, testLogger(), "http://localhost:4000", "BlogM")
	assert.NoError(t, w.Start())
	t.Cleanup(w.Stop)

	body, err := json.Marshal(NotificationMessage{Type: MessageTypeNewBlogPost, BlogID: "blog-1"})
	assert.NoError(t, err)

	msg, ack := delivery(t, body)
	consumer.msgs <- msg

	waitSettled(t, ack)
	assert.Equal(t, 1, ack.nacked)
	assert.False(t, ack.requeue)
}

func TestWorkerStartIsIdempotent(t *testing.T) {
	consumer := &fakeConsumer{msgs: make(chan amqp.Delivery)}
	w := NewWorker(consumer, &fakeLoader{}, &mailservice.MockMailer{}, testLogger(), "http://localhost:4000", "BlogM")

	assert.NoError(t, w.Start())
	assert.NoError(t, w.Start())
	assert.True(t, w.IsRunning())

	w.Stop()
	w.Stop()
	assert.False(t, w.IsRunning())
}
