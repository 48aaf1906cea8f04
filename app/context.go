package main

import (
	"context"
	"net/http"

	"github.com/blogmhq/blogm/internal/userservice"
)

type contextKey string

const (
	claimsContextKey = contextKey("claims")
	tokenContextKey  = contextKey("token")
)

func (app *application) createUserContext(r *http.Request, claims *userservice.Claims, token string) *http.Request {
	ctx := context.WithValue(r.Context(), claimsContextKey, claims)
	ctx = context.WithValue(ctx, tokenContextKey, token)
	return r.WithContext(ctx)
}

func (app *application) getUserContext(r *http.Request) *userservice.Claims {
	claims, ok := r.Context().Value(claimsContextKey).(*userservice.Claims)
	if !ok {
		return &userservice.AnonymousUser
	}
	return claims
}

// getTokenContext returns the raw bearer token the current request
// authenticated with, or "" for anonymous requests.
func (app *application) getTokenContext(r *http.Request) string {
	token, ok := r.Context().Value(tokenContextKey).(string)
	if !ok {
		return ""
	}
	return token
}
