package subscriberservice

import (
	"database/sql"
	"log/slog"
	"time"
)

type Subscriber struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	IsSubscribed bool      `json:"isSubscribed"`
	CreatedAt    time.Time `json:"subscribedAt"`
	UpdatedAt    time.Time `json:"-"`
}

// Pagination describes the page window returned by List.
type Pagination struct {
	CurrentPage      int `json:"currentPage"`
	TotalPages       int `json:"totalPages"`
	TotalSubscribers int `json:"totalSubscribers"`
	Limit            int `json:"limit"`
}

// Mailer sends one templated email. Satisfied by mailservice.Mail.
type Mailer interface {
	Send(recipient string, data any, templateFile string) error
}

type SubscriberService struct {
	m          *SubscriberModel
	mailer     Mailer
	logger     *slog.Logger
	websiteURL string
	siteName   string
}

type SubscriberModel struct {
	db *sql.DB
}
