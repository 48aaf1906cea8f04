package subscriberservice

import (
	"context"
	"database/sql"
	"errors"
)

var (
	ErrNotFound            = errors.New("subscriber not found")
	ErrAlreadySubscribed   = errors.New("email is already subscribed")
	ErrAlreadyUnsubscribed = errors.New("email is already unsubscribed")
)

func newSubscriberModel(db *sql.DB) *SubscriberModel {
	return &SubscriberModel{db: db}
}

func (m *SubscriberModel) getByEmail(ctx context.Context, email string) (*Subscriber, error) {
	query := `
		SELECT id, email, is_subscribed, created_at, updated_at
		FROM subscribers
		WHERE email = $1`

	var s Subscriber
	err := m.db.QueryRowContext(ctx, query, email).Scan(&s.ID, &s.Email, &s.IsSubscribed, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrNotFound
		default:
			return nil, err
		}
	}

	return &s, nil
}

func (m *SubscriberModel) insert(ctx context.Context, s *Subscriber) error {
	query := `
		INSERT INTO subscribers (email, is_subscribed)
		VALUES ($1, true)
		RETURNING id, is_subscribed, created_at, updated_at`

	return m.db.QueryRowContext(ctx, query, s.Email).Scan(&s.ID, &s.IsSubscribed, &s.CreatedAt, &s.UpdatedAt)
}

// setSubscribed flips the flag in place. Rows are never deleted: resubscribing
// reuses the existing row.
func (m *SubscriberModel) setSubscribed(ctx context.Context, id string, subscribed bool) error {
	query := `
		UPDATE subscribers
		SET is_subscribed = $1, updated_at = now()
		WHERE id = $2`

	res, err := m.db.ExecContext(ctx, query, subscribed, id)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

func (m *SubscriberModel) getActive(ctx context.Context) ([]Subscriber, error) {
	query := `
		SELECT id, email, is_subscribed, created_at, updated_at
		FROM subscribers
		WHERE is_subscribed = true`

	rows, err := m.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subscribers := []Subscriber{}
	for rows.Next() {
		var s Subscriber
		err := rows.Scan(&s.ID, &s.Email, &s.IsSubscribed, &s.CreatedAt, &s.UpdatedAt)
		if err != nil {
			return nil, err
		}
		subscribers = append(subscribers, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return subscribers, nil
}

func (m *SubscriberModel) list(ctx context.Context, limit, offset int) ([]Subscriber, int, error) {
	query := `
		SELECT count(*) OVER(), id, email, is_subscribed, created_at, updated_at
		FROM subscribers
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := m.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	total := 0
	subscribers := []Subscriber{}
	for rows.Next() {
		var s Subscriber
		err := rows.Scan(&total, &s.ID, &s.Email, &s.IsSubscribed, &s.CreatedAt, &s.UpdatedAt)
		if err != nil {
			return nil, 0, err
		}
		subscribers = append(subscribers, s)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if total == 0 {
		countQuery := `SELECT count(*) FROM subscribers`
		if err := m.db.QueryRowContext(ctx, countQuery).Scan(&total); err != nil {
			return nil, 0, err
		}
	}

	return subscribers, total, nil
}
