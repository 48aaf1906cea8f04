package notifyservice

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"golang.org/x/exp/rand"

	"github.com/blogmhq/blogm/internal/common"
)

func NewWorker(mb common.MessageConsumer, subs SubscriberLoader, mailer Mailer, logger Logger, websiteURL, siteName string) *Worker {
	return &Worker{
		mb:         mb,
		subs:       subs,
		mailer:     mailer,
		logger:     logger,
		websiteURL: websiteURL,
		siteName:   siteName,
	}
}

// Start registers the worker on the notification queue and begins processing
// deliveries in a background goroutine. Calling Start on a running worker is
// a no-op.
func (w *Worker) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		w.logger.Info("notification worker is already running")
		return nil
	}

	msgs, err := w.mb.Consume(common.BlogNotificationQueue)
	if err != nil {
		return fmt.Errorf("could not start notification worker: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.running = true

	go func() {
		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					return
				}

				var notification NotificationMessage
				if err := json.Unmarshal(msg.Body, &notification); err != nil {
					w.logger.Error("could not unmarshal notification message", slog.String("error", err.Error()))
					msg.Nack(false, false)
					continue
				}

				// One attempt per message: a handler failure rejects
				// without requeue instead of retrying forever.
				if err := w.processNotification(ctx, &notification); err != nil {
					w.logger.Error("could not process notification", slog.String("blog_id", notification.BlogID), slog.String("error", err.Error()))
					msg.Nack(false, false)
					continue
				}

				msg.Ack(false)

			case <-ctx.Done():
				w.logger.Info("stopping notification worker")
				return
			}
		}
	}()

	w.logger.Info("notification worker started")

	return nil
}

// Stop halts the consumer loop. Safe to call on a worker that never started.
func (w *Worker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}

	w.cancel()
	w.running = false
}

func (w *Worker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

type notificationEmailData struct {
	SubscriberEmail string
	BlogTitle       string
	BlogDescription string
	AuthorName      string
	BlogURL         string
	SiteName        string
	UnsubscribeLink string
}

// processNotification fans the notification out to every active subscriber.
// Sends run concurrently and failures are isolated per recipient: the batch
// always runs to completion and only a subscriber load failure makes the
// handler itself fail.
func (w *Worker) processNotification(ctx context.Context, msg *NotificationMessage) error {
	subscribers, err := w.subs.GetActiveSubscribers(ctx)
	if err != nil {
		return fmt.Errorf("could not load subscribers: %w", err)
	}

	if len(subscribers) == 0 {
		w.logger.Info("no active subscribers found", slog.String("blog_id", msg.BlogID))
		return nil
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		failed    int
	)

	for _, sub := range subscribers {
		wg.Add(1)

		go func(email string) {
			defer wg.Done()

			data := notificationEmailData{
				SubscriberEmail: email,
				BlogTitle:       msg.BlogTitle,
				BlogDescription: msg.BlogDescription,
				AuthorName:      msg.AuthorName,
				BlogURL:         msg.BlogURL,
				SiteName:        w.siteName,
				UnsubscribeLink: fmt.Sprintf("%s/api/v2/subscribers/unsubscribe?email=%s", w.websiteURL, url.QueryEscape(email)),
			}

			err := w.sendWithRetry(email, data)

			mu.Lock()
			if err != nil {
				failed++
			} else {
				succeeded++
			}
			mu.Unlock()

			if err != nil {
				w.logger.Error("could not send notification email", slog.String("email", email), slog.String("error", err.Error()))
			}
		}(sub.Email)
	}

	wg.Wait()

	w.logger.Info("blog notification processed",
		slog.String("blog_id", msg.BlogID),
		slog.Int("succeeded", succeeded),
		slog.Int("failed", failed))

	return nil
}

// sendWithRetry attempts the send a few times with jittered exponential
// backoff before giving up on the recipient.
func (w *Worker) sendWithRetry(email string, data notificationEmailData) error {
	const maxRetries = 3
	const baseDelay = 500 * time.Millisecond

	var err error
	for attempt := 0; attempt < maxRetries; attempt++ {
		err = w.mailer.Send(email, data, "blog_notification.html")
		if err == nil {
			return nil
		}

		if attempt < maxRetries-1 {
			delay := time.Duration(rand.Int63n(int64(baseDelay) << uint(attempt)))
			time.Sleep(delay)
		}
	}

	return err
}
