package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/moodjournal/internal/client/client"
	"github.com/dmitrijs2005/moodjournal/internal/client/models"
	"github.com/dmitrijs2005/moodjournal/internal/client/session"
	"github.com/dmitrijs2005/moodjournal/internal/logging"
)

// EntryService keeps the cached entry list in step with the server.
//
// Response handlers check the originating context before touching the
// store: a request whose caller went away is not applied.
type EntryService interface {
	Create(ctx context.Context, in models.NewEntry) (*models.MoodEntry, error)
	Refresh(ctx context.Context, q models.EntryQuery) (*models.EntryList, error)
	Get(ctx context.Context, id string) (*models.MoodEntry, error)
	Update(ctx context.Context, id string, patch models.EntryPatch) (*models.MoodEntry, error)
	Delete(ctx context.Context, id string) error
	AttachAudio(ctx context.Context, up models.AudioUpload) (*models.AudioFile, error)
	RemoveAudio(ctx context.Context, entryID string) error
}

// ErrNotLoggedIn is returned before any request when there is no session.
var ErrNotLoggedIn = fmt.Errorf("not logged in: %w", client.ErrUnauthorized)

type entryService struct {
	client client.Client
	store  *session.Store
	logger logging.Logger
	now    func() time.Time
	newID  func() string
}

func NewEntryService(c client.Client, store *session.Store, logger logging.Logger) EntryService {
	if logger == nil {
		logger = logging.Nop{}
	}
	return &entryService{
		client: c,
		store:  store,
		logger: logger.With("service", "entries"),
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

func (s *entryService) requireSession() error {
	if !s.store.IsAuthenticated() {
		return ErrNotLoggedIn
	}
	return nil
}

// Create adds an optimistic draft to the cache, sends the entry and swaps
// the draft for the server's copy. A failed request removes the draft. If
// the caller's context is gone by the time the server answers, the draft is
// left for the next refresh to reconcile by local id.
func (s *entryService) Create(ctx context.Context, in models.NewEntry) (*models.MoodEntry, error) {
	if err := s.requireSession(); err != nil {
		return nil, err
	}
	if in.LocalID == "" {
		in.LocalID = s.newID()
	}
	now := s.now()
	if err := in.Validate(now); err != nil {
		return nil, err
	}

	if err := s.store.AddEntry(ctx, in.Draft(now)); err != nil {
		return nil, err
	}

	created, err := s.client.CreateEntry(ctx, in)
	if err != nil {
		if _, derr := s.store.DiscardDraft(context.WithoutCancel(ctx), in.LocalID); derr != nil {
			s.logger.Warn(ctx, "failed to discard draft", "local_id", in.LocalID, "error", derr)
		}
		report(s.store, err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.store.ConfirmEntry(ctx, in.LocalID, *created); err != nil {
		return nil, err
	}
	s.logger.Debug(ctx, "entry created", "id", created.ID, "local_id", in.LocalID)
	return created, nil
}

// Refresh reloads the cache from the server. When several refreshes overlap
// only the most recently started one that completes wins.
func (s *entryService) Refresh(ctx context.Context, q models.EntryQuery) (*models.EntryList, error) {
	if err := s.requireSession(); err != nil {
		return nil, err
	}
	seq := s.store.BeginRefresh()
	s.store.SetLoading(true)
	defer s.store.SetLoading(false)

	list, err := s.client.GetEntries(ctx, q)
	if err != nil {
		report(s.store, err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	applied, err := s.store.ApplyRefresh(ctx, seq, list.Entries)
	if err != nil {
		return nil, err
	}
	if applied {
		s.store.ClearError()
	}
	s.logger.Debug(ctx, "entries refreshed", "seq", seq, "count", len(list.Entries), "applied", applied)
	return list, nil
}

// Get fetches one entry and refreshes its cached copy. An entry the server
// no longer has is dropped from the cache.
func (s *entryService) Get(ctx context.Context, id string) (*models.MoodEntry, error) {
	e, err := s.client.GetEntry(ctx, id)
	if err != nil {
		s.forgetIfGone(ctx, id, err)
		report(s.store, err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := s.store.UpdateEntry(ctx, id, serverPatch(*e)); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *entryService) Update(ctx context.Context, id string, patch models.EntryPatch) (*models.MoodEntry, error) {
	updated, err := s.client.UpdateEntry(ctx, id, patch)
	if err != nil {
		s.forgetIfGone(ctx, id, err)
		report(s.store, err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := s.store.UpdateEntry(ctx, id, serverPatch(*updated)); err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the entry remotely and from the cache. An entry the server
// already lacks counts as deleted.
func (s *entryService) Delete(ctx context.Context, id string) error {
	err := s.client.DeleteEntry(ctx, id)
	switch {
	case errors.Is(err, client.ErrNotFound):
		s.logger.Info(ctx, "entry already gone on server", "id", id)
	case err != nil:
		report(s.store, err)
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err = s.store.DeleteEntry(ctx, id)
	return err
}

func (s *entryService) AttachAudio(ctx context.Context, up models.AudioUpload) (*models.AudioFile, error) {
	af, err := s.client.UploadAudio(ctx, up)
	if err != nil {
		report(s.store, err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := s.store.UpdateEntry(ctx, up.EntryID, models.EntryPatch{AudioFile: af}); err != nil {
		return nil, err
	}
	return af, nil
}

func (s *entryService) RemoveAudio(ctx context.Context, entryID string) error {
	e, ok := s.store.Entry(entryID)
	if !ok || e.AudioFile == nil {
		return &models.ValidationError{Field: "audio", Reason: "entry has no voice note"}
	}
	err := s.client.DeleteAudio(ctx, e.AudioFile.Filename)
	if err != nil && !errors.Is(err, client.ErrNotFound) {
		report(s.store, err)
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err = s.store.UpdateEntry(ctx, entryID, models.EntryPatch{ClearAudio: true})
	return err
}

func (s *entryService) forgetIfGone(ctx context.Context, id string, err error) {
	if !errors.Is(err, client.ErrNotFound) || ctx.Err() != nil {
		return
	}
	if _, derr := s.store.DeleteEntry(ctx, id); derr != nil {
		s.logger.Warn(ctx, "failed to drop missing entry", "id", id, "error", derr)
	}
}

// serverPatch carries every server-owned field of e into a cache patch.
func serverPatch(e models.MoodEntry) models.EntryPatch {
	synced := true
	p := models.EntryPatch{
		TextNote:           &e.TextNote,
		EntryDate:          &e.EntryDate,
		AIInsight:          &e.AIInsight,
		AIProcessed:        &e.AIProcessed,
		AIProcessingFailed: &e.AIProcessingFailed,
		AIErrorMessage:     &e.AIErrorMessage,
		AIProcessedAt:      e.AIProcessedAt,
		UpdatedAt:          &e.UpdatedAt,
		Synced:             &synced,
	}
	if e.Mood != nil {
		p.Mood = e.Mood
	}
	if e.AudioFile != nil {
		p.AudioFile = e.AudioFile
	} else {
		p.ClearAudio = true
	}
	return p
}
