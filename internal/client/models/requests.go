package models

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Credentials is the login form.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate only checks presence; strength rules apply at signup.
func (c Credentials) Validate() error {
	if err := ValidateEmail(c.Email); err != nil {
		return err
	}
	if c.Password == "" {
		return &ValidationError{Field: "password", Reason: "password is required"}
	}
	return nil
}

// SignupRequest is the registration form.
type SignupRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

func (s SignupRequest) Validate() error {
	if err := ValidateEmail(s.Email); err != nil {
		return err
	}
	if err := ValidatePassword(s.Password); err != nil {
		return err
	}
	if len([]rune(s.FirstName)) > MaxNameLength {
		return &ValidationError{Field: "first_name", Reason: "first name is too long"}
	}
	if len([]rune(s.LastName)) > MaxNameLength {
		return &ValidationError{Field: "last_name", Reason: "last name is too long"}
	}
	return nil
}

// AuthResult is what login and signup return. The caller decides whether to
// record it in the session store.
type AuthResult struct {
	Message     string `json:"message"`
	AccessToken string `json:"access_token"`
	User        User   `json:"user"`
	ExpiresIn   int64  `json:"expires_in"`
}

// NewEntry is the create payload.
type NewEntry struct {
	Mood      Mood      `json:"mood"`
	TextNote  string    `json:"text_note,omitempty"`
	EntryDate Timestamp `json:"entry_date"`
	LocalID   string    `json:"local_id,omitempty"`
}

// Validate checks the payload against the backend's rules at time now.
func (n NewEntry) Validate(now time.Time) error {
	if err := n.Mood.Validate(); err != nil {
		return err
	}
	if err := validateTextNote(n.TextNote); err != nil {
		return err
	}
	if err := validateEntryDate(n.EntryDate.Time, now); err != nil {
		return err
	}
	if len(n.LocalID) > MaxLocalIDLength {
		return &ValidationError{Field: "local_id", Reason: "local id is too long"}
	}
	return nil
}

// Draft builds the optimistic, not-yet-synced cache entry for n.
func (n NewEntry) Draft(now time.Time) MoodEntry {
	mood := n.Mood
	return MoodEntry{
		Mood:      &mood,
		TextNote:  n.TextNote,
		EntryDate: n.EntryDate,
		CreatedAt: At(now),
		UpdatedAt: At(now),
		LocalID:   n.LocalID,
		Synced:    false,
	}
}

// EntryPatch is a partial update. Nil fields are left untouched. Only Mood,
// TextNote and EntryDate are sent to the server; the rest are local-cache
// fields the client fills from server responses.
type EntryPatch struct {
	Mood      *Mood      `json:"mood,omitempty"`
	TextNote  *string    `json:"text_note,omitempty"`
	EntryDate *Timestamp `json:"entry_date,omitempty"`

	ID                 *string    `json:"-"`
	AudioFile          *AudioFile `json:"-"`
	ClearAudio         bool       `json:"-"`
	AIInsight          *string    `json:"-"`
	AIProcessed        *bool      `json:"-"`
	AIProcessingFailed *bool      `json:"-"`
	AIErrorMessage     *string    `json:"-"`
	AIProcessedAt      *Timestamp `json:"-"`
	UpdatedAt          *Timestamp `json:"-"`
	Synced             *bool      `json:"-"`
}

// IsRemoteEmpty reports whether the patch carries nothing the server accepts.
func (p EntryPatch) IsRemoteEmpty() bool {
	return p.Mood == nil && p.TextNote == nil && p.EntryDate == nil
}

// Validate checks the remote fields that are set.
func (p EntryPatch) Validate(now time.Time) error {
	if p.Mood != nil {
		if err := p.Mood.Validate(); err != nil {
			return err
		}
	}
	if p.TextNote != nil {
		if err := validateTextNote(*p.TextNote); err != nil {
			return err
		}
	}
	if p.EntryDate != nil {
		if err := validateEntryDate(p.EntryDate.Time, now); err != nil {
			return err
		}
	}
	return nil
}

// Apply merges p into e and returns the result; e itself is not modified.
func (p EntryPatch) Apply(e MoodEntry) MoodEntry {
	out := e.Clone()
	if p.Mood != nil {
		m := *p.Mood
		out.Mood = &m
	}
	if p.TextNote != nil {
		out.TextNote = *p.TextNote
	}
	if p.EntryDate != nil {
		out.EntryDate = *p.EntryDate
	}
	if p.ID != nil {
		out.ID = *p.ID
	}
	if p.AudioFile != nil {
		out.AudioFile = cloneAudio(p.AudioFile)
	}
	if p.ClearAudio {
		out.AudioFile = nil
	}
	if p.AIInsight != nil {
		out.AIInsight = *p.AIInsight
	}
	if p.AIProcessed != nil {
		out.AIProcessed = *p.AIProcessed
	}
	if p.AIProcessingFailed != nil {
		out.AIProcessingFailed = *p.AIProcessingFailed
	}
	if p.AIErrorMessage != nil {
		out.AIErrorMessage = *p.AIErrorMessage
	}
	if p.AIProcessedAt != nil {
		ts := *p.AIProcessedAt
		out.AIProcessedAt = &ts
	}
	if p.UpdatedAt != nil {
		out.UpdatedAt = *p.UpdatedAt
	}
	if p.Synced != nil {
		out.Synced = *p.Synced
	}
	return out
}

func cloneAudio(a *AudioFile) *AudioFile {
	c := MoodEntry{AudioFile: a}.Clone()
	return c.AudioFile
}

// EntryQuery holds the optional list filters. Nil means "server default".
type EntryQuery struct {
	Limit  *int
	Days   *int
	Offset *int
}

const (
	MaxQueryLimit = 100
	MaxQueryDays  = 365
)

// Validate applies the backend's ranges: limit 1..100, days 1..365, offset >= 0.
func (q EntryQuery) Validate() error {
	if q.Limit != nil && (*q.Limit < 1 || *q.Limit > MaxQueryLimit) {
		return &ValidationError{Field: "limit", Reason: "limit must be between 1 and 100"}
	}
	if q.Days != nil && (*q.Days < 1 || *q.Days > MaxQueryDays) {
		return &ValidationError{Field: "days", Reason: "days must be between 1 and 365"}
	}
	if q.Offset != nil && *q.Offset < 0 {
		return &ValidationError{Field: "offset", Reason: "offset must not be negative"}
	}
	return nil
}

// Values encodes the set filters as query parameters.
func (q EntryQuery) Values() url.Values {
	v := url.Values{}
	if q.Limit != nil {
		v.Set("limit", strconv.Itoa(*q.Limit))
	}
	if q.Days != nil {
		v.Set("days", strconv.Itoa(*q.Days))
	}
	if q.Offset != nil {
		v.Set("offset", strconv.Itoa(*q.Offset))
	}
	return v
}

// Pagination is the list metadata returned next to entries.
type Pagination struct {
	Total    int `json:"total"`
	Limit    int `json:"limit"`
	Offset   int `json:"offset"`
	Returned int `json:"returned"`
}

// EntryFilters echoes the filters the server applied.
type EntryFilters struct {
	Days int `json:"days"`
}

// EntryList is the GET /api/entries response.
type EntryList struct {
	Entries    []MoodEntry  `json:"entries"`
	Pagination Pagination   `json:"pagination"`
	Filters    EntryFilters `json:"filters"`
}

// IntPtr is a small helper for building EntryQuery values.
func IntPtr(v int) *int { return &v }

// StringPtr is a small helper for building EntryPatch values.
func StringPtr(s string) *string { return &s }

// normalizeExt lower-cases a file extension without its dot.
func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
