package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/moodjournal/internal/client/client"
	"github.com/dmitrijs2005/moodjournal/internal/client/models"
	"github.com/dmitrijs2005/moodjournal/internal/client/session"
)

// Message turns an error from this package into the text shown to the user.
func Message(err error) string {
	var (
		apiErr *client.APIError
		valErr *models.ValidationError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &valErr):
		return valErr.Reason
	case errors.Is(err, ErrInvalidCredentials):
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			return apiErr.Message
		}
		return ErrInvalidCredentials.Error()
	case errors.Is(err, ErrNotLoggedIn):
		return "please log in first"
	case errors.Is(err, client.ErrUnauthorized):
		return session.SessionExpiredMessage
	case errors.As(err, &apiErr):
		return apiErr.Message
	case errors.Is(err, context.Canceled):
		return "request cancelled"
	case errors.Is(err, client.ErrUnavailable), errors.Is(err, context.DeadlineExceeded):
		return "server unavailable, please try again"
	case errors.Is(err, session.ErrPersist):
		return "could not save to this device"
	default:
		return "something went wrong, please try again"
	}
}

// report records a failure as the session's dismissable error. Validation
// errors belong next to their field and a rejected token already carries
// its own message, so neither is recorded.
func report(store *session.Store, err error) {
	if err == nil || errors.Is(err, models.ErrValidation) || errors.Is(err, client.ErrUnauthorized) || errors.Is(err, context.Canceled) {
		return
	}
	store.SetError(Message(err))
}
