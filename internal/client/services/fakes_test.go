package services

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/moodjournal/internal/client/client"
	"github.com/dmitrijs2005/moodjournal/internal/client/models"
	"github.com/dmitrijs2005/moodjournal/internal/client/session"
	"github.com/dmitrijs2005/moodjournal/internal/logging"
)

var testNow = time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)

// fakeClient implements client.Client for service tests. Each call records
// its name and, like HTTPClient, runs onUnauthorized on ErrUnauthorized.
type fakeClient struct {
	mu    sync.Mutex
	calls []string

	onUnauthorized client.UnauthorizedHandler
	tokens         func() string

	LoginRes   *models.AuthResult
	LoginErr   error
	SignupRes  *models.AuthResult
	SignupErr  error
	MeRes      *models.User
	MeErr      error
	LogoutErr  error
	ListRes    *models.EntryList
	ListErr    error
	ListHook   func(ctx context.Context)
	CreateRes  *models.MoodEntry
	CreateErr  error
	CreateHook func(ctx context.Context, e models.NewEntry)
	LastCreate models.NewEntry
	GetRes     *models.MoodEntry
	GetErr     error
	UpdateRes  *models.MoodEntry
	UpdateErr  error
	DeleteErr  error
	UploadRes  *models.AudioFile
	UploadErr  error
	DelAudio   string
	DelAudErr  error
	InsightRes *models.Insight
	InsightErr error
	WeeklyRes  *models.WeeklySummary
	WeeklyErr  error
	StatsRes   *models.MoodStats
	StatsErr   error
}

var _ client.Client = (*fakeClient)(nil)

func (f *fakeClient) record(ctx context.Context, name string, err error) error {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
	if errors.Is(err, client.ErrUnauthorized) && f.onUnauthorized != nil {
		var token string
		if f.tokens != nil {
			token = f.tokens()
		}
		f.onUnauthorized(ctx, token)
	}
	return err
}

func (f *fakeClient) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeClient) Login(ctx context.Context, creds models.Credentials) (*models.AuthResult, error) {
	return f.LoginRes, f.record(ctx, "login", f.LoginErr)
}
func (f *fakeClient) Signup(ctx context.Context, req models.SignupRequest) (*models.AuthResult, error) {
	return f.SignupRes, f.record(ctx, "signup", f.SignupErr)
}
func (f *fakeClient) CurrentUser(ctx context.Context) (*models.User, error) {
	return f.MeRes, f.record(ctx, "me", f.MeErr)
}
func (f *fakeClient) Logout(ctx context.Context) error {
	return f.record(ctx, "logout", f.LogoutErr)
}
func (f *fakeClient) GetEntries(ctx context.Context, q models.EntryQuery) (*models.EntryList, error) {
	if f.ListHook != nil {
		f.ListHook(ctx)
	}
	return f.ListRes, f.record(ctx, "list", f.ListErr)
}
func (f *fakeClient) CreateEntry(ctx context.Context, e models.NewEntry) (*models.MoodEntry, error) {
	f.LastCreate = e
	if f.CreateHook != nil {
		f.CreateHook(ctx, e)
	}
	return f.CreateRes, f.record(ctx, "create", f.CreateErr)
}
func (f *fakeClient) GetEntry(ctx context.Context, id string) (*models.MoodEntry, error) {
	return f.GetRes, f.record(ctx, "get", f.GetErr)
}
func (f *fakeClient) UpdateEntry(ctx context.Context, id string, patch models.EntryPatch) (*models.MoodEntry, error) {
	return f.UpdateRes, f.record(ctx, "update", f.UpdateErr)
}
func (f *fakeClient) DeleteEntry(ctx context.Context, id string) error {
	return f.record(ctx, "delete", f.DeleteErr)
}
func (f *fakeClient) UploadAudio(ctx context.Context, up models.AudioUpload) (*models.AudioFile, error) {
	return f.UploadRes, f.record(ctx, "upload", f.UploadErr)
}
func (f *fakeClient) DeleteAudio(ctx context.Context, filename string) error {
	f.DelAudio = filename
	return f.record(ctx, "delete_audio", f.DelAudErr)
}
func (f *fakeClient) GetInsight(ctx context.Context, entryID string) (*models.Insight, error) {
	return f.InsightRes, f.record(ctx, "insight", f.InsightErr)
}
func (f *fakeClient) RegenerateInsight(ctx context.Context, entryID string) (*models.Insight, error) {
	return f.InsightRes, f.record(ctx, "regenerate", f.InsightErr)
}
func (f *fakeClient) GetWeeklySummary(ctx context.Context) (*models.WeeklySummary, error) {
	return f.WeeklyRes, f.record(ctx, "weekly", f.WeeklyErr)
}
func (f *fakeClient) GetMoodStats(ctx context.Context) (*models.MoodStats, error) {
	return f.StatsRes, f.record(ctx, "stats", f.StatsErr)
}

func apiErr(status int, msg string) error {
	return &client.APIError{Status: status, Message: msg}
}

var unauthorized = apiErr(http.StatusUnauthorized, "Token has expired")

func newStore(t *testing.T) (*session.Store, *session.MemoryPersister) {
	t.Helper()
	p := session.NewMemoryPersister()
	return session.NewStore(p, logging.Nop{}), p
}

func loggedInStore(t *testing.T) *session.Store {
	t.Helper()
	s, _ := newStore(t)
	require.NoError(t, s.SetUser(context.Background(), &models.User{ID: "u1", Email: "ann@example.com"}, "tok"))
	return s
}

func wire(fc *fakeClient, s *session.Store) {
	fc.onUnauthorized = s.ForceLogout
	fc.tokens = s.Token
}

func entry(id string, at time.Time, emotion models.Emotion) models.MoodEntry {
	return models.MoodEntry{
		ID:        id,
		UserID:    "u1",
		Mood:      &models.Mood{Emoji: emotion.Emoji(), Emotion: emotion},
		EntryDate: models.At(at),
		Synced:    true,
	}
}

func ids(entries []models.MoodEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ID)
	}
	return out
}
