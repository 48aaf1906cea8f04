package notifyservice

import (
	"context"
	"sync"

	"github.com/blogmhq/blogm/internal/common"
	"github.com/blogmhq/blogm/internal/subscriberservice"
)

// NotificationMessage is the queue payload for a published blog post. It only
// exists on the wire between publish and consume and is never persisted.
type NotificationMessage struct {
	Type            string `json:"type"`
	BlogID          string `json:"blogId"`
	BlogTitle       string `json:"blogTitle"`
	BlogDescription string `json:"blogDescription"`
	AuthorName      string `json:"authorName"`
	BlogURL         string `json:"blogUrl"`
	Timestamp       string `json:"timestamp"`
}

const MessageTypeNewBlogPost = "new_blog_post"

// SubscriberLoader yields the active subscriber set a notification fans out
// to. Satisfied by subscriberservice.SubscriberService.
type SubscriberLoader interface {
	GetActiveSubscribers(ctx context.Context) ([]subscriberservice.Subscriber, error)
}

// Mailer sends one templated email. Satisfied by mailservice.Mail.
type Mailer interface {
	Send(recipient string, data any, templateFile string) error
}

// Logger is the subset of slog the worker and service need.
type Logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

type Publisher struct {
	mb         common.MessageProducer
	logger     Logger
	websiteURL string
}

type Worker struct {
	mb         common.MessageConsumer
	subs       SubscriberLoader
	mailer     Mailer
	logger     Logger
	websiteURL string
	siteName   string

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
}

// Broker is the connection lifecycle the Service drives. Satisfied by
// common.MessageBroker.
type Broker interface {
	Connect() error
	Close() error
}

// WorkerRunner is the worker lifecycle the Service drives.
type WorkerRunner interface {
	Start() error
	Stop()
}

// Service coordinates the queue connection and the dispatch worker as one
// explicitly constructed unit; the process owns it, there is no hidden global.
type Service struct {
	broker Broker
	worker WorkerRunner
	logger Logger

	mu          sync.Mutex
	initialized bool
}
