package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/moodjournal/internal/client/models"
	"github.com/dmitrijs2005/moodjournal/internal/logging"
)

// ErrPersist wraps every failure to load or save the session blob.
var ErrPersist = errors.New("session: persistence failed")

// Store serializes all session transitions. A mutation is persisted first and
// becomes visible to readers only after the save succeeded; Logout and
// ForceLogout are the exception and always apply in memory.
//
// The mutex is held across the save. Saves are a single small upsert into
// the local database.
type Store struct {
	mu        sync.Mutex
	state     State
	persister Persister
	logger    logging.Logger
	now       func() time.Time

	issuedSeq  uint64
	appliedSeq uint64
}

type Option func(*Store)

// WithClock overrides time.Now, used when checking restored token expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore returns a logged-out store. Call Restore before the first request.
func NewStore(persister Persister, logger logging.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = logging.Nop{}
	}
	s := &Store{
		state:     LoggedOut(),
		persister: persister,
		logger:    logger.With("component", "session"),
		now:       time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Restore loads the persisted blob. On a load error, a missing blob or an
// already expired token the store is left logged out; a load error is also
// returned so the caller can report it.
func (s *Store) Restore(ctx context.Context) error {
	snap, err := s.persister.Load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = LoggedOut()
	if err != nil {
		s.logger.Warn(ctx, "failed to restore session", "error", err)
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	if snap == nil {
		s.logger.Debug(ctx, "no stored session")
		return nil
	}

	st := snap.State()
	if st.Authenticated {
		if exp, ok := TokenExpiry(st.Credentials.Token()); ok && !exp.After(s.now()) {
			s.logger.Info(ctx, "stored session has expired", "expired_at", exp)
			st = ForceLogout(st)
			if err := s.save(context.WithoutCancel(ctx), st); err != nil {
				s.logger.Warn(ctx, "failed to clear expired session", "error", err)
			}
		}
	}
	s.state = st
	s.logger.Debug(ctx, "session restored", "authenticated", st.Authenticated, "entries", len(st.Entries))
	return nil
}

func (s *Store) save(ctx context.Context, next State) error {
	if s.persister == nil {
		return nil
	}
	if err := s.persister.Save(ctx, next.Snapshot()); err != nil {
		s.logger.Error(ctx, "failed to persist session", "error", err)
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}

// commit persists and publishes fn's result. fn reports false when nothing
// changed, in which case nothing is saved.
func (s *Store) commit(ctx context.Context, fn func(State) (State, bool)) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, changed := fn(s.state)
	if !changed {
		return false, nil
	}
	if err := s.save(ctx, next); err != nil {
		return false, err
	}
	s.state = next
	return true, nil
}

// SetUser records a successful login or signup.
func (s *Store) SetUser(ctx context.Context, user *models.User, token string) error {
	var invalid error
	_, err := s.commit(ctx, func(st State) (State, bool) {
		next, err := SetUser(st, user, token)
		if err != nil {
			invalid = err
			return st, false
		}
		return next, true
	})
	if invalid != nil {
		return invalid
	}
	return err
}

func (s *Store) logout(ctx context.Context, transition func(State) State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logoutLocked(ctx, transition)
}

func (s *Store) logoutLocked(ctx context.Context, transition func(State) State) error {
	next := transition(s.state)
	s.state = next
	s.appliedSeq = s.issuedSeq
	return s.save(context.WithoutCancel(ctx), next)
}

// Logout clears the session. Safe to call when already logged out. The
// in-memory state is cleared even if saving fails.
func (s *Store) Logout(ctx context.Context) error {
	return s.logout(ctx, Logout)
}

// ForceLogout is called when the server rejected token. It is a no-op when
// the session has since moved on to another token, so a late 401 from a
// request sent before a new login cannot end the newer session.
func (s *Store) ForceLogout(ctx context.Context, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token == "" || s.state.Credentials.Token() != token {
		s.logger.Debug(ctx, "ignoring 401 for a token that is no longer current")
		return
	}
	s.logger.Warn(ctx, "server rejected the session token, logging out")
	_ = s.logoutLocked(ctx, ForceLogout)
}

func (s *Store) AddEntry(ctx context.Context, e models.MoodEntry) error {
	_, err := s.commit(ctx, func(st State) (State, bool) {
		return AddEntry(st, e), true
	})
	return err
}

// UpdateEntry reports false without error when id is not cached.
func (s *Store) UpdateEntry(ctx context.Context, id string, patch models.EntryPatch) (bool, error) {
	return s.commit(ctx, func(st State) (State, bool) {
		return UpdateEntry(st, id, patch)
	})
}

func (s *Store) SetEntries(ctx context.Context, entries []models.MoodEntry) error {
	_, err := s.commit(ctx, func(st State) (State, bool) {
		return SetEntries(st, entries), true
	})
	return err
}

// DeleteEntry reports false without error when id is not cached.
func (s *Store) DeleteEntry(ctx context.Context, id string) (bool, error) {
	return s.commit(ctx, func(st State) (State, bool) {
		return DeleteEntry(st, id)
	})
}

func (s *Store) ConfirmEntry(ctx context.Context, localID string, confirmed models.MoodEntry) error {
	_, err := s.commit(ctx, func(st State) (State, bool) {
		return ConfirmEntry(st, localID, confirmed), true
	})
	return err
}

func (s *Store) DiscardDraft(ctx context.Context, localID string) (bool, error) {
	return s.commit(ctx, func(st State) (State, bool) {
		return DiscardDraft(st, localID)
	})
}

// BeginRefresh issues the sequence number a full refresh must present to
// ApplyRefresh.
func (s *Store) BeginRefresh() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issuedSeq++
	return s.issuedSeq
}

// ApplyRefresh replaces the cache with a refresh result unless a later
// refresh has already been applied, or the session ended after seq was
// issued. Unsynced drafts survive. Reports whether the result was applied.
func (s *Store) ApplyRefresh(ctx context.Context, seq uint64, entries []models.MoodEntry) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq <= s.appliedSeq || !s.state.Authenticated {
		s.logger.Debug(ctx, "discarding stale refresh", "seq", seq, "applied", s.appliedSeq)
		return false, nil
	}
	next := MergeRefresh(s.state, entries)
	if err := s.save(ctx, next); err != nil {
		return false, err
	}
	s.state = next
	s.appliedSeq = seq
	return true, nil
}

func (s *Store) SetLoading(loading bool) {
	s.mu.Lock()
	s.state = SetLoading(s.state, loading)
	s.mu.Unlock()
}

func (s *Store) SetError(msg string) {
	s.mu.Lock()
	s.state = SetError(s.state, msg)
	s.mu.Unlock()
}

func (s *Store) ClearError() {
	s.mu.Lock()
	s.state = ClearError(s.state)
	s.mu.Unlock()
}

// SavedAt reports when the session was last written to durable storage.
func (s *Store) SavedAt(ctx context.Context) (time.Time, error) {
	if s.persister == nil {
		return time.Time{}, nil
	}
	t, err := s.persister.SavedAt(ctx)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return t, nil
}

// Token returns the current bearer token, "" when logged out.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Credentials.Token()
}

func (s *Store) User() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.User == nil {
		return nil
	}
	u := *s.state.User
	return &u
}

func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Authenticated
}

// Entries returns a copy of the cache, newest entry_date first.
func (s *Store) Entries() []models.MoodEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneEntries(s.state.Entries)
}

func (s *Store) Entry(id string) (models.MoodEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexByID(s.state.Entries, id)
	if i < 0 {
		return models.MoodEntry{}, false
	}
	return s.state.Entries[i].Clone(), true
}

func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Loading
}

func (s *Store) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Err
}

// State returns a deep copy of the whole session.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}
