package session

import (
	"errors"
	"slices"

	"github.com/dmitrijs2005/moodjournal/internal/client/models"
)

var (
	ErrMissingUser  = errors.New("session: user is required")
	ErrMissingToken = errors.New("session: token is required")
)

// SessionExpiredMessage is the error shown after a forced logout.
const SessionExpiredMessage = "session expired, please log in again"

// byEntryDateDesc orders newest entry_date first.
func byEntryDateDesc(a, b models.MoodEntry) int {
	return b.EntryDate.Compare(a.EntryDate.Time)
}

func sortedCopy(entries []models.MoodEntry) []models.MoodEntry {
	out := cloneEntries(entries)
	slices.SortStableFunc(out, byEntryDateDesc)
	return out
}

// SetUser records an authenticated session and clears any prior error.
// Entries cached for a different user are dropped.
func SetUser(s State, user *models.User, token string) (State, error) {
	if user == nil {
		return s, ErrMissingUser
	}
	if token == "" {
		return s, ErrMissingToken
	}
	u := *user
	next := s.Clone()
	if s.User != nil && s.User.ID != u.ID {
		next.Entries = []models.MoodEntry{}
	}
	next.User = &u
	next.Credentials = next.Credentials.Set(token)
	next.Authenticated = true
	next.Err = ""
	return next, nil
}

// Logout clears user, token, entries and error. Loading is left as is.
func Logout(s State) State {
	next := LoggedOut()
	next.Loading = s.Loading
	return next
}

// ForceLogout is Logout after an authentication failure: the user is told why.
func ForceLogout(s State) State {
	next := Logout(s)
	next.Err = SessionExpiredMessage
	return next
}

// AddEntry puts e at the head of the cache and re-sorts. Among equal
// entry dates the new entry comes first.
func AddEntry(s State, e models.MoodEntry) State {
	next := s.Clone()
	entries := make([]models.MoodEntry, 0, len(s.Entries)+1)
	entries = append(entries, e.Clone())
	entries = append(entries, next.Entries...)
	slices.SortStableFunc(entries, byEntryDateDesc)
	next.Entries = entries
	return next
}

// UpdateEntry merges patch into the entry with id and re-sorts. The second
// result is false, and s is returned unchanged, when no such entry exists.
func UpdateEntry(s State, id string, patch models.EntryPatch) (State, bool) {
	i := indexByID(s.Entries, id)
	if i < 0 {
		return s, false
	}
	next := s.Clone()
	next.Entries[i] = patch.Apply(next.Entries[i])
	slices.SortStableFunc(next.Entries, byEntryDateDesc)
	return next, true
}

// SetEntries replaces the cache with a sorted copy of entries.
func SetEntries(s State, entries []models.MoodEntry) State {
	next := s.Clone()
	next.Entries = sortedCopy(entries)
	return next
}

// DeleteEntry removes the entry with id. False when absent.
func DeleteEntry(s State, id string) (State, bool) {
	i := indexByID(s.Entries, id)
	if i < 0 {
		return s, false
	}
	next := s.Clone()
	next.Entries = slices.Delete(next.Entries, i, i+1)
	return next, true
}

// ConfirmEntry swaps the optimistic draft carrying localID for the entry the
// server acknowledged. If a refresh already brought the server entry in, the
// draft is simply dropped. With no draft the entry is added.
func ConfirmEntry(s State, localID string, confirmed models.MoodEntry) State {
	confirmed = confirmed.Clone()
	confirmed.Synced = true
	if confirmed.LocalID == "" {
		confirmed.LocalID = localID
	}

	next := s.Clone()
	if localID != "" {
		if i := indexDraft(next.Entries, localID); i >= 0 {
			next.Entries = slices.Delete(next.Entries, i, i+1)
		}
	}
	if i := indexByID(next.Entries, confirmed.ID); i >= 0 {
		next.Entries[i] = confirmed
		slices.SortStableFunc(next.Entries, byEntryDateDesc)
		return next
	}
	return AddEntry(next, confirmed)
}

// DiscardDraft removes the unsynced draft carrying localID. False when absent.
func DiscardDraft(s State, localID string) (State, bool) {
	i := indexDraft(s.Entries, localID)
	if i < 0 {
		return s, false
	}
	next := s.Clone()
	next.Entries = slices.Delete(next.Entries, i, i+1)
	return next, true
}

// MergeRefresh is SetEntries that keeps drafts the server has not seen yet.
// Server entries owned by someone other than the session user are dropped.
func MergeRefresh(s State, entries []models.MoodEntry) State {
	merged := make([]models.MoodEntry, 0, len(entries))
	for _, e := range entries {
		if owner := e.OwnerID(); owner != "" && s.User != nil && owner != s.User.ID {
			continue
		}
		merged = append(merged, e.Clone())
	}
	for _, e := range s.Entries {
		if e.ID != "" || e.Synced || e.LocalID == "" {
			continue
		}
		if slices.ContainsFunc(entries, func(x models.MoodEntry) bool { return x.LocalID == e.LocalID }) {
			continue
		}
		merged = append(merged, e.Clone())
	}
	return SetEntries(s, merged)
}

func SetLoading(s State, loading bool) State {
	s.Loading = loading
	return s
}

func SetError(s State, msg string) State {
	s.Err = msg
	return s
}

func ClearError(s State) State {
	return SetError(s, "")
}

func indexByID(entries []models.MoodEntry, id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(entries, func(e models.MoodEntry) bool { return e.ID == id })
}

func indexDraft(entries []models.MoodEntry, localID string) int {
	if localID == "" {
		return -1
	}
	return slices.IndexFunc(entries, func(e models.MoodEntry) bool {
		return e.LocalID == localID && !e.Synced
	})
}
