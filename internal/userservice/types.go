package userservice

import (
	"database/sql"
	"time"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"

	// AccessTokenTime is the fixed lifetime of an issued access token.
	AccessTokenTime time.Duration = 5 * time.Hour
)

var (
	AnonymousUser = Claims{}
)

type UserService struct {
	m      *DBModel
	tokens *TokenManager
	store  TokenStore
}

type DBModel struct {
	db *sql.DB
}

type User struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Password       Password  `json:"-"`
	Gender         string    `json:"gender,omitempty"`
	Role           Role      `json:"role"`
	Provider       string    `json:"provider,omitempty"`
	GoogleID       string    `json:"-"`
	ProfilePicture string    `json:"profile_picture,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type Password struct {
	Plain string `json:"-"`
	hash  []byte `json:"-"`
}

// Claims is the authenticated principal carried by a signed token. It is the
// only identity the request pipeline needs; handlers never reload the user row.
type Claims struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
	Expiry time.Time
}

// OAuthProfile is the provider profile shape validated at the boundary before
// any account linking happens.
type OAuthProfile struct {
	Provider    string `json:"provider"`
	ExternalID  string `json:"external_id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
}

func (c *Claims) IsAnonymous() bool {
	return c == &AnonymousUser
}

func (c *Claims) HasRole(role Role) bool {
	return c.Role == role
}
