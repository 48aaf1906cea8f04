package userservice

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

var (
	ErrDuplicateEmail = errors.New("duplicate email")
	ErrNotFound       = errors.New("user not found")
)

func newUserModel(db *sql.DB) *DBModel {
	return &DBModel{db: db}
}

// UniqueViolation is a helper function to check if the error is a unique constraint error.
func UniqueViolation(err error, name string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code == "23505" && pqErr.Constraint == name {
			return true
		}
	}

	return false
}

func (m *DBModel) insertUser(ctx context.Context, u *User) error {
	query := `
		INSERT INTO users (name, email, password, gender, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	args := []any{
		u.Name,
		u.Email,
		u.Password.hash,
		u.Gender,
		u.Role,
	}

	err := m.db.QueryRowContext(ctx, query, args...).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		switch {
		case UniqueViolation(err, "users_email_key"):
			return ErrDuplicateEmail
		default:
			return err
		}
	}

	return nil
}

func (m *DBModel) getUserByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT id, name, email, password, role, created_at, updated_at
		FROM users
		WHERE email = $1`

	var u User

	err := m.db.QueryRowContext(ctx, query, email).Scan(&u.ID, &u.Name, &u.Email, &u.Password.hash, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrNotFound
		default:
			return nil, err
		}
	}

	return &u, nil
}

func (m *DBModel) getUserByGoogleID(ctx context.Context, googleID string) (*User, error) {
	query := `
		SELECT id, name, email, role, provider, google_id, profile_picture, created_at, updated_at
		FROM users
		WHERE google_id = $1`

	var u User

	err := m.db.QueryRowContext(ctx, query, googleID).Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.Provider, &u.GoogleID, &u.ProfilePicture, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrNotFound
		default:
			return nil, err
		}
	}

	return &u, nil
}

// linkGoogleAccount attaches the provider identity to an existing account that
// signed up with the same email address.
func (m *DBModel) linkGoogleAccount(ctx context.Context, userID, googleID, profilePicture string) error {
	query := `
		UPDATE users
		SET google_id = $1, profile_picture = $2, provider = 'google', updated_at = now()
		WHERE id = $3`

	res, err := m.db.ExecContext(ctx, query, googleID, profilePicture, userID)
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

func (m *DBModel) insertOAuthUser(ctx context.Context, u *User) error {
	query := `
		INSERT INTO users (name, email, gender, role, provider, google_id, profile_picture)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`

	args := []any{
		u.Name,
		u.Email,
		u.Gender,
		u.Role,
		u.Provider,
		u.GoogleID,
		u.ProfilePicture,
	}

	err := m.db.QueryRowContext(ctx, query, args...).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		switch {
		case UniqueViolation(err, "users_email_key"):
			return ErrDuplicateEmail
		default:
			return err
		}
	}

	return nil
}
