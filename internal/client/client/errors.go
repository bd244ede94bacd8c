package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("access denied")
	ErrNotFound     = errors.New("not found")
	ErrBadRequest   = errors.New("bad request")
	ErrUnavailable  = errors.New("server unavailable")

	// ErrInvalidResponse is a 2xx response the client cannot use.
	ErrInvalidResponse = errors.New("invalid server response")
)

// APIError is a non-2xx response. Kind, Message and Details are the server's
// {error, message, details} payload as sent.
type APIError struct {
	Status  int
	Kind    string
	Message string
	Details json.RawMessage
}

func (e *APIError) Error() string {
	if e.Kind != "" && e.Kind != e.Message {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return e.Message
}

// Unwrap maps the status to one of the package sentinels.
func (e *APIError) Unwrap() error {
	switch {
	case e.Status == http.StatusUnauthorized:
		return ErrUnauthorized
	case e.Status == http.StatusForbidden:
		return ErrForbidden
	case e.Status == http.StatusNotFound:
		return ErrNotFound
	case e.Status == http.StatusTooManyRequests, e.Status >= 500:
		return ErrUnavailable
	default:
		return ErrBadRequest
	}
}

type errorPayload struct {
	Error   string          `json:"error"`
	Message string          `json:"message"`
	Details json.RawMessage `json:"details,omitempty"`
}

func newAPIError(status int, body []byte) *APIError {
	e := &APIError{Status: status}
	var p errorPayload
	if json.Unmarshal(body, &p) == nil {
		e.Kind = p.Error
		e.Message = p.Message
		e.Details = p.Details
	}
	if e.Message == "" {
		e.Message = e.Kind
	}
	if e.Message == "" {
		e.Message = fallbackMessage(status)
	}
	return e
}

func fallbackMessage(status int) string {
	if text := http.StatusText(status); text != "" {
		return fmt.Sprintf("request failed: %s", text)
	}
	return fmt.Sprintf("request failed with status %d", status)
}
