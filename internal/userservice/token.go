package userservice

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// TokenManager issues and verifies HMAC-signed access tokens carrying the user
// id, email and role. Tokens stay valid for AccessTokenTime; early invalidation
// goes through the TokenStore instead.
type TokenManager struct {
	secret []byte
	exp    time.Duration
}

func NewTokenManager(secret string, exp time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), exp: exp}
}

func (tm *TokenManager) IssueToken(userID, email string, role Role) (string, error) {
	now := time.Now()

	claims := jwt.MapClaims{
		"id":    userID,
		"email": email,
		"role":  string(role),
		"iat":   now.Unix(),
		"exp":   now.Add(tm.exp).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(tm.secret)
}

func (tm *TokenManager) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	id, _ := mapClaims["id"].(string)
	email, _ := mapClaims["email"].(string)
	role, _ := mapClaims["role"].(string)
	if id == "" || email == "" || role == "" {
		return nil, ErrInvalidToken
	}

	exp, err := mapClaims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, ErrInvalidToken
	}

	return &Claims{
		UserID: id,
		Email:  email,
		Role:   Role(role),
		Expiry: exp.Time,
	}, nil
}
