package client

import (
	"context"

	"github.com/dmitrijs2005/moodjournal/internal/client/models"
)

// Client is the typed gateway to the mood journal backend. Implementations
// never touch the session store directly except through the injected
// TokenSource and UnauthorizedHandler.
type Client interface {
	Login(ctx context.Context, creds models.Credentials) (*models.AuthResult, error)
	Signup(ctx context.Context, req models.SignupRequest) (*models.AuthResult, error)
	CurrentUser(ctx context.Context) (*models.User, error)
	Logout(ctx context.Context) error

	GetEntries(ctx context.Context, q models.EntryQuery) (*models.EntryList, error)
	CreateEntry(ctx context.Context, e models.NewEntry) (*models.MoodEntry, error)
	GetEntry(ctx context.Context, id string) (*models.MoodEntry, error)
	UpdateEntry(ctx context.Context, id string, patch models.EntryPatch) (*models.MoodEntry, error)
	DeleteEntry(ctx context.Context, id string) error

	UploadAudio(ctx context.Context, up models.AudioUpload) (*models.AudioFile, error)
	DeleteAudio(ctx context.Context, filename string) error

	GetInsight(ctx context.Context, entryID string) (*models.Insight, error)
	RegenerateInsight(ctx context.Context, entryID string) (*models.Insight, error)
	GetWeeklySummary(ctx context.Context) (*models.WeeklySummary, error)
	GetMoodStats(ctx context.Context) (*models.MoodStats, error)
}

// TokenSource yields the bearer token for each request, "" for none.
type TokenSource interface {
	Token() string
}

// UnauthorizedHandler runs on every 401 before the error reaches the caller.
// token is the credential the rejected request carried.
type UnauthorizedHandler func(ctx context.Context, token string)
