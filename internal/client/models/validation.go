package models

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// ErrValidation is matched by every ValidationError.
var ErrValidation = errors.New("validation error")

// ValidationError names the offending field so a form can show the message
// next to it.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

const (
	MinPasswordLength = 8
	MaxPasswordLength = 50
	MaxNameLength     = 50
	MaxEmojiLength    = 10
	MaxTextNoteLength = 500
	MaxLocalIDLength  = 100

	// Entry dates outside [now-MaxEntryAge, now+MaxEntryLead] are rejected
	// by the backend, so the client refuses them up front.
	MaxEntryAge  = 365 * 24 * time.Hour
	MaxEntryLead = 7 * 24 * time.Hour
)

// passwordSymbols is the symbol class the backend accepts.
const passwordSymbols = `!@#$%^&*(),.?":{}|<>`

// ValidateEmail checks that email is a bare, well-formed address.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return &ValidationError{Field: "email", Reason: "email is required"}
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email, "@") {
		return &ValidationError{Field: "email", Reason: "invalid email address"}
	}
	return nil
}

// ValidatePassword enforces the signup strength rules: length bounds and one
// each of uppercase, lowercase, digit and symbol.
func ValidatePassword(password string) error {
	n := utf8.RuneCountInString(password)
	if n < MinPasswordLength {
		return &ValidationError{Field: "password", Reason: fmt.Sprintf("password must be at least %d characters", MinPasswordLength)}
	}
	if n > MaxPasswordLength {
		return &ValidationError{Field: "password", Reason: fmt.Sprintf("password must be at most %d characters", MaxPasswordLength)}
	}

	var upper, lower, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSymbols, r):
			symbol = true
		}
	}

	switch {
	case !upper:
		return &ValidationError{Field: "password", Reason: "password must contain at least one uppercase letter"}
	case !lower:
		return &ValidationError{Field: "password", Reason: "password must contain at least one lowercase letter"}
	case !digit:
		return &ValidationError{Field: "password", Reason: "password must contain at least one number"}
	case !symbol:
		return &ValidationError{Field: "password", Reason: "password must contain at least one special character"}
	}
	return nil
}

// Validate checks the emoji length and that the emotion is enumerated.
func (m Mood) Validate() error {
	if m.Emotion == "" {
		return &ValidationError{Field: "mood", Reason: "please select a mood"}
	}
	if !m.Emotion.Valid() {
		return &ValidationError{Field: "mood.emotion", Reason: fmt.Sprintf("unknown emotion %q", m.Emotion)}
	}
	if m.Emoji == "" {
		return &ValidationError{Field: "mood.emoji", Reason: "emoji is required"}
	}
	if utf8.RuneCountInString(m.Emoji) > MaxEmojiLength {
		return &ValidationError{Field: "mood.emoji", Reason: fmt.Sprintf("emoji must be at most %d characters", MaxEmojiLength)}
	}
	return nil
}

func validateTextNote(note string) error {
	if utf8.RuneCountInString(note) > MaxTextNoteLength {
		return &ValidationError{Field: "text_note", Reason: fmt.Sprintf("note must be at most %d characters", MaxTextNoteLength)}
	}
	return nil
}

func validateEntryDate(date, now time.Time) error {
	if date.IsZero() {
		return &ValidationError{Field: "entry_date", Reason: "entry date is required"}
	}
	if date.After(now.Add(MaxEntryLead)) {
		return &ValidationError{Field: "entry_date", Reason: "entry date cannot be more than 7 days from now"}
	}
	if date.Before(now.Add(-MaxEntryAge)) {
		return &ValidationError{Field: "entry_date", Reason: "entry date cannot be more than 1 year in the past"}
	}
	return nil
}
