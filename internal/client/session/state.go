// Package session is the client's single source of truth for who is logged
// in and which entries are cached.
//
// State transitions are pure functions (see transitions.go). Store wraps a
// State behind a mutex, persists the durable subset through a Persister and
// only then publishes the new state to readers.
package session

import (
	"github.com/dmitrijs2005/moodjournal/internal/client/models"
)

// Credentials holds the bearer token. It is kept apart from the rest of the
// state so every read and clear of the token goes through one small type.
type Credentials struct {
	token string
}

func NewCredentials(token string) Credentials { return Credentials{token: token} }

func (c Credentials) Token() string { return c.token }

func (c Credentials) Present() bool { return c.token != "" }

func (c Credentials) Set(token string) Credentials { return Credentials{token: token} }

func (c Credentials) Clear() Credentials { return Credentials{} }

// State is the full session. Loading and Err are transient and never persisted.
type State struct {
	Credentials   Credentials
	User          *models.User
	Authenticated bool
	Entries       []models.MoodEntry

	Loading bool
	Err     string
}

// LoggedOut is the initial and post-logout state.
func LoggedOut() State {
	return State{Entries: []models.MoodEntry{}}
}

// Clone returns a deep copy.
func (s State) Clone() State {
	out := s
	if s.User != nil {
		u := *s.User
		out.User = &u
	}
	out.Entries = cloneEntries(s.Entries)
	return out
}

// Snapshot returns the persisted subset of s.
func (s State) Snapshot() Snapshot {
	snap := Snapshot{
		Authenticated: s.Authenticated,
		Entries:       cloneEntries(s.Entries),
	}
	if s.Credentials.Present() {
		t := s.Credentials.Token()
		snap.Token = &t
	}
	if s.User != nil {
		u := *s.User
		snap.User = &u
	}
	return snap
}

// Snapshot is the durable blob: {token, user, authenticated, entries}.
type Snapshot struct {
	Token         *string            `json:"token"`
	User          *models.User       `json:"user"`
	Authenticated bool               `json:"authenticated"`
	Entries       []models.MoodEntry `json:"entries"`
}

// State rebuilds a session from a snapshot. The authenticated flag is
// derived again rather than trusted; a half-present session restores as
// logged out.
func (s Snapshot) State() State {
	if s.Token == nil || *s.Token == "" || s.User == nil {
		return LoggedOut()
	}
	u := *s.User
	return State{
		Credentials:   NewCredentials(*s.Token),
		User:          &u,
		Authenticated: true,
		Entries:       sortedCopy(s.Entries),
	}
}

func cloneEntries(entries []models.MoodEntry) []models.MoodEntry {
	out := make([]models.MoodEntry, len(entries))
	for i, e := range entries {
		out[i] = e.Clone()
	}
	return out
}
