package main

import (
	"errors"
	"net/http"

	"github.com/blogmhq/blogm/internal/common"
	"github.com/blogmhq/blogm/internal/userservice"
)

type registerUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Gender   string `json:"gender"`
}

func (app *application) registerUserHandler(w http.ResponseWriter, r *http.Request) {
	var input registerUserRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	user, err := app.userService.CreateUser(r.Context(), input.Name, input.Email, input.Password, input.Gender)
	if err != nil {
		switch {
		case errors.Is(err, userservice.ErrDuplicateEmail):
			app.conflictErrorResponse(w, r, "User already exists")
		case errors.As(err, &common.ValidationError{}):
			validationErr := err.(common.ValidationError)
			app.failedValidationErrorResponse(w, r, validationErr.Errors)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusCreated, envelope{Success: true, Message: "User created successfully", Data: user}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

type loginUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (app *application) loginUserHandler(w http.ResponseWriter, r *http.Request) {
	var input loginUserRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	token, err := app.userService.LoginUser(r.Context(), input.Email, input.Password)
	if err != nil {
		switch {
		case errors.Is(err, userservice.ErrNotFound):
			app.notFoundErrorResponse(w, r, "User not found")
		case errors.Is(err, userservice.ErrAuthenticationFailure):
			app.invalidCredentialsErrorResponse(w, r)
		case errors.As(err, &common.ValidationError{}):
			validationErr := err.(common.ValidationError)
			app.failedValidationErrorResponse(w, r, validationErr.Errors)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{Success: true, Message: "Login successful", Data: map[string]string{"token": token}}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

// logoutUserHandler revokes the presented token for the remainder of its
// lifetime. A revocation store failure surfaces as a server error so the
// client never believes a still-valid token is dead.
func (app *application) logoutUserHandler(w http.ResponseWriter, r *http.Request) {
	token := app.getTokenContext(r)

	err := app.userService.LogoutUser(r.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, userservice.ErrInvalidToken):
			app.invalidAuthenticationTokenResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{Success: true, Message: "Logout successful", Data: nil}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

type googleOAuthRequest struct {
	ExternalID  string `json:"external_id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
}

// googleOAuthHandler upserts a user from a verified Google profile and issues
// a session token. Verifying the profile against Google is the caller's job.
func (app *application) googleOAuthHandler(w http.ResponseWriter, r *http.Request) {
	var input googleOAuthRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	profile := &userservice.OAuthProfile{
		Provider:    "google",
		ExternalID:  input.ExternalID,
		Email:       input.Email,
		DisplayName: input.DisplayName,
		AvatarURL:   input.AvatarURL,
	}

	user, token, err := app.userService.UpsertOAuthUser(r.Context(), profile)
	if err != nil {
		switch {
		case errors.As(err, &common.ValidationError{}):
			validationErr := err.(common.ValidationError)
			app.failedValidationErrorResponse(w, r, validationErr.Errors)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{Success: true, Message: "Login successful", Data: map[string]any{"user": user, "token": token}}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}
