package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/moodjournal/internal/client/models"
	"github.com/dmitrijs2005/moodjournal/internal/client/session"
	"github.com/dmitrijs2005/moodjournal/internal/logging"
	"github.com/stretchr/testify/require"
)

// Saturday afternoon.
var testNow = time.Date(2026, 10, 17, 15, 0, 0, 0, time.UTC)

type fakeAuth struct {
	loginEmail, loginPass string
	loginUser             *models.User
	loginErr              error

	signupReq  models.SignupRequest
	signupUser *models.User
	signupErr  error
	signupHits int

	logoutHits int
	logoutErr  error

	meUser *models.User
	meErr  error

	resumeUser *models.User
	resumeErr  error
}

func (f *fakeAuth) Login(_ context.Context, email, password string) (*models.User, error) {
	f.loginEmail, f.loginPass = email, password
	return f.loginUser, f.loginErr
}

func (f *fakeAuth) Signup(_ context.Context, req models.SignupRequest) (*models.User, error) {
	f.signupHits++
	f.signupReq = req
	return f.signupUser, f.signupErr
}

func (f *fakeAuth) Logout(context.Context) error {
	f.logoutHits++
	return f.logoutErr
}

func (f *fakeAuth) Me(context.Context) (*models.User, error) { return f.meUser, f.meErr }

func (f *fakeAuth) Resume(context.Context) (*models.User, error) {
	return f.resumeUser, f.resumeErr
}

type fakeEntries struct {
	created  []models.NewEntry
	createFn func(models.NewEntry) (*models.MoodEntry, error)

	queries   []models.EntryQuery
	refreshFn func(models.EntryQuery) (*models.EntryList, error)

	gets  []string
	getFn func(string) (*models.MoodEntry, error)

	updates  []models.EntryPatch
	updateFn func(string, models.EntryPatch) (*models.MoodEntry, error)

	deleted   []string
	deleteErr error

	uploads  []models.AudioUpload
	uploadFn func(models.AudioUpload) (*models.AudioFile, error)

	removedAudio []string
	removeErr    error
}

func (f *fakeEntries) Create(_ context.Context, in models.NewEntry) (*models.MoodEntry, error) {
	f.created = append(f.created, in)
	if f.createFn == nil {
		return nil, nil
	}
	return f.createFn(in)
}

func (f *fakeEntries) Refresh(_ context.Context, q models.EntryQuery) (*models.EntryList, error) {
	f.queries = append(f.queries, q)
	if f.refreshFn == nil {
		return &models.EntryList{}, nil
	}
	return f.refreshFn(q)
}

func (f *fakeEntries) Get(_ context.Context, id string) (*models.MoodEntry, error) {
	f.gets = append(f.gets, id)
	if f.getFn == nil {
		return nil, nil
	}
	return f.getFn(id)
}

func (f *fakeEntries) Update(_ context.Context, id string, patch models.EntryPatch) (*models.MoodEntry, error) {
	f.updates = append(f.updates, patch)
	if f.updateFn == nil {
		return nil, nil
	}
	return f.updateFn(id, patch)
}

func (f *fakeEntries) Delete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return f.deleteErr
}

func (f *fakeEntries) AttachAudio(_ context.Context, up models.AudioUpload) (*models.AudioFile, error) {
	f.uploads = append(f.uploads, up)
	if f.uploadFn == nil {
		return nil, nil
	}
	return f.uploadFn(up)
}

func (f *fakeEntries) RemoveAudio(_ context.Context, entryID string) error {
	f.removedAudio = append(f.removedAudio, entryID)
	return f.removeErr
}

type fakeInsights struct {
	insight   *models.Insight
	weekly    *models.WeeklySummary
	stats     *models.MoodStats
	err       error
	asked     []string
	regenHits int
}

func (f *fakeInsights) ForEntry(_ context.Context, entryID string) (*models.Insight, error) {
	f.asked = append(f.asked, entryID)
	return f.insight, f.err
}

func (f *fakeInsights) Regenerate(_ context.Context, entryID string) (*models.Insight, error) {
	f.asked = append(f.asked, entryID)
	f.regenHits++
	return f.insight, f.err
}

func (f *fakeInsights) Weekly(context.Context) (*models.WeeklySummary, error) {
	return f.weekly, f.err
}

func (f *fakeInsights) Stats(context.Context) (*models.MoodStats, error) {
	return f.stats, f.err
}

// newTestApp builds an App over an in-memory store, fake services and a
// captured output buffer.
func newTestApp(t *testing.T) (*App, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	return &App{
		logger:         logging.Nop{},
		store:          session.NewStore(session.NewMemoryPersister(), nil),
		authService:    &fakeAuth{},
		entryService:   &fakeEntries{},
		insightService: &fakeInsights{},
		reader:         bufio.NewReader(strings.NewReader("")),
		out:            out,
		loc:            time.UTC,
		now:            func() time.Time { return testNow },
	}, out
}

func logIn(t *testing.T, a *App) {
	t.Helper()
	user := &models.User{ID: "u1", Email: "ada@example.com", FirstName: "Ada", LastName: "Lovelace"}
	require.NoError(t, a.store.SetUser(context.Background(), user, "token-1"))
}

func entry(id string, emotion models.Emotion, at time.Time, note string) models.MoodEntry {
	return models.MoodEntry{
		ID:        id,
		UserID:    "u1",
		Mood:      &models.Mood{Emoji: emotion.Emoji(), Emotion: emotion},
		TextNote:  note,
		EntryDate: models.At(at),
		Synced:    true,
	}
}

func seed(t *testing.T, a *App, entries ...models.MoodEntry) {
	t.Helper()
	require.NoError(t, a.store.SetEntries(context.Background(), entries))
}

// stubAnswers replaces the single-line prompt with scripted answers and
// records the prompts shown. Running out of answers yields io.EOF.
func stubAnswers(t *testing.T, answers ...string) *[]string {
	t.Helper()
	var prompts []string
	orig := getSimpleText
	getSimpleText = func(_ *bufio.Reader, prompt string, _ io.Writer) (string, error) {
		prompts = append(prompts, prompt)
		if len(answers) == 0 {
			return "", io.EOF
		}
		next := answers[0]
		answers = answers[1:]
		return next, nil
	}
	t.Cleanup(func() { getSimpleText = orig })
	return &prompts
}

func stubMultiline(t *testing.T, text string) {
	t.Helper()
	orig := getMultiline
	getMultiline = func(*bufio.Reader, string, io.Writer) (string, error) { return text, nil }
	t.Cleanup(func() { getMultiline = orig })
}

// stubPasswords returns the given passwords in order; the returned slices
// are fresh copies so wiping them does not touch the test's values.
func stubPasswords(t *testing.T, passwords ...string) {
	t.Helper()
	orig := getPassword
	getPassword = func(string, io.Writer) ([]byte, error) {
		if len(passwords) == 0 {
			return nil, io.EOF
		}
		next := passwords[0]
		passwords = passwords[1:]
		return []byte(next), nil
	}
	t.Cleanup(func() { getPassword = orig })
}
