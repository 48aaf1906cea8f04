package common

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMessageBrokerPublishConsume(t *testing.T) {
	uri := TestRabbitMQ(t)

	mb := NewMessageBroker(uri)
	t.Cleanup(func() { mb.Close() })

	// Publish connects lazily.
	err := mb.Publish(context.Background(), BlogNotificationQueue, []byte(`{"type":"new_blog_post"}`))
	assert.NoError(t, err)

	msgs, err := mb.Consume(BlogNotificationQueue)
	assert.NoError(t, err)

	select {
	case msg := <-msgs:
		assert.Equal(t, `{"type":"new_blog_post"}`, string(msg.Body))
		assert.NoError(t, msg.Ack(false))
	case <-time.After(10 * time.Second):
		t.Fatal("message was never delivered")
	}
}

func TestMessageBrokerConnectIsIdempotent(t *testing.T) {
	uri := TestRabbitMQ(t)

	mb := NewMessageBroker(uri)

	assert.NoError(t, mb.Connect())
	assert.NoError(t, mb.Connect())

	assert.NoError(t, mb.Close())
	assert.NoError(t, mb.Close())
}
