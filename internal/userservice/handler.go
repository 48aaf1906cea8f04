package userservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/blogmhq/blogm/internal/common"
)

var (
	ErrAuthenticationFailure = fmt.Errorf("invalid email or password")
	ErrTokenRevoked          = errors.New("token has been revoked")
)

func NewUserService(db *sql.DB, tokens *TokenManager, store TokenStore) *UserService {
	return &UserService{
		m:      newUserModel(db),
		tokens: tokens,
		store:  store,
	}
}

// CreateUser registers a new account with a bcrypt-hashed password and the
// default user role.
func (s *UserService) CreateUser(ctx context.Context, name, email, password, gender string) (*User, error) {
	v := common.NewValidator()
	validateName(v, name)
	validateEmail(v, email)
	validatePassword(v, password)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	u := User{
		Name:   name,
		Email:  email,
		Gender: gender,
		Role:   RoleUser,
	}

	err := u.Password.set(password)
	if err != nil {
		return nil, err
	}

	err = s.m.insertUser(ctx, &u)
	if err != nil {
		return nil, err
	}

	return &u, nil
}

// LoginUser verifies the credentials and returns a signed access token.
// An unknown email yields ErrNotFound, a wrong password
// ErrAuthenticationFailure; callers map the two to different status codes.
func (s *UserService) LoginUser(ctx context.Context, email, password string) (string, error) {
	v := common.NewValidator()
	validateEmail(v, email)
	v.Check(password != "", "password", "must be provided")
	if !v.Valid() {
		return "", v.ValidationError()
	}

	user, err := s.m.getUserByEmail(ctx, email)
	if err != nil {
		return "", err
	}

	ok, err := user.Password.compare(password)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrAuthenticationFailure
	}

	return s.tokens.IssueToken(user.ID, user.Email, user.Role)
}

// LogoutUser blacklists the token for the remainder of its lifetime. A store
// failure propagates: a logout that cannot revoke leaves the token usable, so
// it must not report success.
func (s *UserService) LogoutUser(ctx context.Context, token string) error {
	claims, err := s.tokens.ParseToken(token)
	if err != nil {
		return err
	}

	return s.store.Revoke(ctx, token, time.Until(claims.Expiry))
}

// AuthenticateToken verifies the signature and expiry of the token and rejects
// it if it has been revoked since issuance.
func (s *UserService) AuthenticateToken(ctx context.Context, token string) (*Claims, error) {
	claims, err := s.tokens.ParseToken(token)
	if err != nil {
		return nil, err
	}

	revoked, err := s.store.IsRevoked(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("could not check token revocation: %w", err)
	}
	if revoked {
		return nil, ErrTokenRevoked
	}

	return claims, nil
}

// UpsertOAuthUser resolves a provider profile to a local account: by provider
// id first, then by email (linking the provider identity), otherwise a fresh
// account is created. Returns the account and a signed access token.
func (s *UserService) UpsertOAuthUser(ctx context.Context, profile *OAuthProfile) (*User, string, error) {
	v := common.NewValidator()
	validateOAuthProfile(v, profile)
	if !v.Valid() {
		return nil, "", v.ValidationError()
	}

	user, err := s.m.getUserByGoogleID(ctx, profile.ExternalID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, "", err
	}

	if user == nil {
		existing, err := s.m.getUserByEmail(ctx, profile.Email)
		switch {
		case err == nil:
			if err := s.m.linkGoogleAccount(ctx, existing.ID, profile.ExternalID, profile.AvatarURL); err != nil {
				return nil, "", err
			}
			existing.GoogleID = profile.ExternalID
			existing.ProfilePicture = profile.AvatarURL
			existing.Provider = "google"
			user = existing
		case errors.Is(err, ErrNotFound):
			u := User{
				Name:           profile.DisplayName,
				Email:          profile.Email,
				Gender:         "other",
				Role:           RoleUser,
				Provider:       "google",
				GoogleID:       profile.ExternalID,
				ProfilePicture: profile.AvatarURL,
			}
			if err := s.m.insertOAuthUser(ctx, &u); err != nil {
				return nil, "", err
			}
			user = &u
		default:
			return nil, "", err
		}
	}

	token, err := s.tokens.IssueToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}
