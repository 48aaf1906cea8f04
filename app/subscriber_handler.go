package main

import (
	"errors"
	"net/http"

	"github.com/blogmhq/blogm/internal/common"
	"github.com/blogmhq/blogm/internal/subscriberservice"
)

type subscribeRequest struct {
	Email string `json:"email"`
}

// subscribeHandler distinguishes a first-time subscription (201) from a
// resubscription of a previously unsubscribed address (200). An address that
// is already actively subscribed conflicts.
func (app *application) subscribeHandler(w http.ResponseWriter, r *http.Request) {
	var input subscribeRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	subscriber, created, err := app.subscriberService.Subscribe(r.Context(), input.Email)
	if err != nil {
		switch {
		case errors.Is(err, subscriberservice.ErrAlreadySubscribed):
			app.conflictErrorResponse(w, r, "This email is already subscribed to our newsletter")
		case errors.As(err, &common.ValidationError{}):
			validationErr := err.(common.ValidationError)
			app.failedValidationErrorResponse(w, r, validationErr.Errors)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	if created {
		err = app.writeJSON(w, http.StatusCreated, envelope{Success: true, Message: "Successfully subscribed to the newsletter", Data: subscriber}, nil)
	} else {
		err = app.writeJSON(w, http.StatusOK, envelope{Success: true, Message: "You have resubscribed successfully", Data: subscriber}, nil)
	}
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

// unsubscribeHandler is a GET because it is the target of the unsubscribe
// link embedded in every outgoing email.
func (app *application) unsubscribeHandler(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")

	subscriber, err := app.subscriberService.Unsubscribe(r.Context(), email)
	if err != nil {
		switch {
		case errors.Is(err, subscriberservice.ErrNotFound):
			app.notFoundErrorResponse(w, r, "Email not found in our subscription list")
		case errors.Is(err, subscriberservice.ErrAlreadyUnsubscribed):
			app.writeErrorResponse(w, r, http.StatusBadRequest, "This email is already unsubscribed", nil)
		case errors.As(err, &common.ValidationError{}):
			validationErr := err.(common.ValidationError)
			app.failedValidationErrorResponse(w, r, validationErr.Errors)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{Success: true, Message: "Successfully unsubscribed from the newsletter", Data: subscriber}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) listSubscribersHandler(w http.ResponseWriter, r *http.Request) {
	page, limit, err := app.readPageLimitParams(r)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	subscribers, pagination, err := app.subscriberService.List(r.Context(), page, limit)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{Success: true, Message: "Subscribers retrieved successfully", Data: map[string]any{"subscribers": subscribers, "pagination": pagination}}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}
