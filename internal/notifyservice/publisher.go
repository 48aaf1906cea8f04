package notifyservice

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/blogmhq/blogm/internal/blogservice"
	"github.com/blogmhq/blogm/internal/common"
)

func NewPublisher(mb common.MessageProducer, logger Logger, websiteURL string) *Publisher {
	return &Publisher{
		mb:         mb,
		logger:     logger,
		websiteURL: websiteURL,
	}
}

// NotifyBlogPublished publishes a notification event for a freshly created
// blog. It is a fire-and-forget post-persist hook: any failure is logged and
// swallowed so the blog creation that triggered it still succeeds.
func (p *Publisher) NotifyBlogPublished(ctx context.Context, blog *blogservice.Blog) {
	description := blog.Description
	if description == "" {
		description = "Check out this new blog post!"
	}

	authorName := blog.AuthorName
	if authorName == "" {
		authorName = "BlogM Author"
	}

	msg := NotificationMessage{
		Type:            MessageTypeNewBlogPost,
		BlogID:          blog.ID,
		BlogTitle:       blog.Title,
		BlogDescription: description,
		AuthorName:      authorName,
		BlogURL:         fmt.Sprintf("%s/api/v2/blogs/%s", p.websiteURL, blog.ID),
		Timestamp:       time.Now().UTC().Format(time.RFC3339),
	}

	body, err := json.Marshal(msg)
	if err != nil {
		p.logger.Error("could not marshal blog notification", slog.String("blog_id", blog.ID), slog.String("error", err.Error()))
		return
	}

	if err := p.mb.Publish(ctx, common.BlogNotificationQueue, body); err != nil {
		p.logger.Error("could not publish blog notification", slog.String("blog_id", blog.ID), slog.String("error", err.Error()))
		return
	}

	p.logger.Info("blog notification published", slog.String("blog_id", blog.ID), slog.String("title", blog.Title))
}
