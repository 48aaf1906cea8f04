package subscriberservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/blogmhq/blogm/internal/common"
)

func NewSubscriberService(db *sql.DB, mailer Mailer, logger *slog.Logger, websiteURL, siteName string) *SubscriberService {
	return &SubscriberService{
		m:          newSubscriberModel(db),
		mailer:     mailer,
		logger:     logger,
		websiteURL: websiteURL,
		siteName:   siteName,
	}
}

// UnsubscribeLink builds the per-recipient opt-out URL embedded in every
// outgoing email.
func (s *SubscriberService) UnsubscribeLink(email string) string {
	return fmt.Sprintf("%s/api/v2/subscribers/unsubscribe?email=%s", s.websiteURL, url.QueryEscape(email))
}

type welcomeEmailData struct {
	Email           string
	SiteName        string
	UnsubscribeLink string
	Resubscribed    bool
}

// Subscribe moves the email into the subscribed state. A brand-new email
// creates a row and reports created=true; a previously unsubscribed email
// reuses its row and reports created=false; an already subscribed email is
// rejected with ErrAlreadySubscribed and no mail is sent.
//
// The welcome email is sent after the state transition and is not rolled back
// when sending fails; the send failure surfaces as a dependency error instead.
func (s *SubscriberService) Subscribe(ctx context.Context, email string) (*Subscriber, bool, error) {
	v := common.NewValidator()
	validateEmail(v, email)
	if !v.Valid() {
		return nil, false, v.ValidationError()
	}

	existing, err := s.m.getByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	if existing != nil {
		if existing.IsSubscribed {
			return nil, false, ErrAlreadySubscribed
		}

		if err := s.m.setSubscribed(ctx, existing.ID, true); err != nil {
			return nil, false, err
		}
		existing.IsSubscribed = true

		data := welcomeEmailData{
			Email:           email,
			SiteName:        s.siteName,
			UnsubscribeLink: s.UnsubscribeLink(email),
			Resubscribed:    true,
		}
		if err := s.mailer.Send(email, data, "subscription_welcome.html"); err != nil {
			return nil, false, fmt.Errorf("could not send welcome email: %w", err)
		}

		s.logger.Info("subscriber resubscribed", slog.String("email", email))

		return existing, false, nil
	}

	sub := Subscriber{Email: email}
	if err := s.m.insert(ctx, &sub); err != nil {
		return nil, false, err
	}

	data := welcomeEmailData{
		Email:           email,
		SiteName:        s.siteName,
		UnsubscribeLink: s.UnsubscribeLink(email),
	}
	if err := s.mailer.Send(email, data, "subscription_welcome.html"); err != nil {
		return nil, false, fmt.Errorf("could not send welcome email: %w", err)
	}

	s.logger.Info("new subscriber added", slog.String("email", email))

	return &sub, true, nil
}

type unsubscribeEmailData struct {
	Email    string
	SiteName string
}

// Unsubscribe clears the flag and sends a confirmation. An unknown email is
// ErrNotFound; an email already unsubscribed is ErrAlreadyUnsubscribed.
func (s *SubscriberService) Unsubscribe(ctx context.Context, email string) (*Subscriber, error) {
	v := common.NewValidator()
	validateEmail(v, email)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	sub, err := s.m.getByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if !sub.IsSubscribed {
		return nil, ErrAlreadyUnsubscribed
	}

	if err := s.m.setSubscribed(ctx, sub.ID, false); err != nil {
		return nil, err
	}
	sub.IsSubscribed = false

	data := unsubscribeEmailData{Email: email, SiteName: s.siteName}
	if err := s.mailer.Send(email, data, "unsubscribe_confirmation.html"); err != nil {
		return nil, fmt.Errorf("could not send unsubscribe confirmation: %w", err)
	}

	s.logger.Info("subscriber unsubscribed", slog.String("email", email))

	return sub, nil
}

// GetActiveSubscribers returns every subscriber with the flag set; the
// notification worker fans out over this set.
func (s *SubscriberService) GetActiveSubscribers(ctx context.Context) ([]Subscriber, error) {
	return s.m.getActive(ctx)
}

// List returns a page of subscribers, newest first, with pagination metadata.
func (s *SubscriberService) List(ctx context.Context, page, limit int) ([]Subscriber, *Pagination, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	subscribers, total, err := s.m.list(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, nil, err
	}

	totalPages := (total + limit - 1) / limit

	return subscribers, &Pagination{
		CurrentPage:      page,
		TotalPages:       totalPages,
		TotalSubscribers: total,
		Limit:            limit,
	}, nil
}

func validateEmail(v *common.Validator, email string) {
	v.Check(email != "", "email", "must be provided")
	v.Check(common.EmailRX.MatchString(email), "email", "must be a valid email address")
}
