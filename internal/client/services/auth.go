// Package services orchestrates the API client and the session store: every
// operation here talks to the server and then records the outcome locally.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/moodjournal/internal/client/client"
	"github.com/dmitrijs2005/moodjournal/internal/client/models"
	"github.com/dmitrijs2005/moodjournal/internal/client/session"
	"github.com/dmitrijs2005/moodjournal/internal/logging"
)

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Login / Signup: authenticate against the server and record the session.
//   - Logout: tell the server (best effort) and always clear the local session.
//   - Me: fetch the current profile and refresh the cached user.
//   - Resume: restore the persisted session and check it with the server.
//
// All methods must honor context cancellation/timeouts.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*models.User, error)
	Signup(ctx context.Context, req models.SignupRequest) (*models.User, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*models.User, error)
	Resume(ctx context.Context) (*models.User, error)
}

// ErrInvalidCredentials marks a login the server rejected. It still matches
// client.ErrUnauthorized.
var ErrInvalidCredentials = errors.New("invalid email or password")

type authService struct {
	client client.Client
	store  *session.Store
	logger logging.Logger
}

func NewAuthService(c client.Client, store *session.Store, logger logging.Logger) AuthService {
	if logger == nil {
		logger = logging.Nop{}
	}
	return &authService{client: c, store: store, logger: logger.With("service", "auth")}
}

func (a *authService) record(ctx context.Context, res *models.AuthResult, err error) (*models.User, error) {
	if err != nil {
		report(a.store, err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := a.store.SetUser(ctx, &res.User, res.AccessToken); err != nil {
		return nil, fmt.Errorf("record session: %w", err)
	}
	a.logger.Info(ctx, "logged in", "user_id", res.User.ID)
	u := res.User
	return &u, nil
}

// Login authenticates with email and password. The store is left untouched
// on failure.
func (a *authService) Login(ctx context.Context, email, password string) (*models.User, error) {
	a.store.SetLoading(true)
	defer a.store.SetLoading(false)

	res, err := a.client.Login(ctx, models.Credentials{Email: email, Password: password})
	if errors.Is(err, client.ErrUnauthorized) {
		err = fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
	}
	return a.record(ctx, res, err)
}

func (a *authService) Signup(ctx context.Context, req models.SignupRequest) (*models.User, error) {
	a.store.SetLoading(true)
	defer a.store.SetLoading(false)

	res, err := a.client.Signup(ctx, req)
	return a.record(ctx, res, err)
}

// Logout clears the local session even when the server call fails.
func (a *authService) Logout(ctx context.Context) error {
	if a.store.Token() != "" {
		if err := a.client.Logout(ctx); err != nil {
			a.logger.Warn(ctx, "server logout failed", "error", err)
		}
	}
	if err := a.store.Logout(ctx); err != nil {
		return err
	}
	a.logger.Info(ctx, "logged out")
	return nil
}

func (a *authService) Me(ctx context.Context) (*models.User, error) {
	u, err := a.client.CurrentUser(ctx)
	if err != nil {
		report(a.store, err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if token := a.store.Token(); token != "" {
		if err := a.store.SetUser(ctx, u, token); err != nil {
			return nil, err
		}
	}
	return u, nil
}

// Resume restores the persisted session. A restored session is confirmed with
// the server; when the server is unreachable the cached user is kept so the
// client still works with its cache. Returns nil when nobody is logged in.
func (a *authService) Resume(ctx context.Context) (*models.User, error) {
	if err := a.store.Restore(ctx); err != nil {
		a.logger.Warn(ctx, "starting logged out", "error", err)
	}
	if !a.store.IsAuthenticated() {
		return nil, nil
	}

	token := a.store.Token()
	u, err := a.client.CurrentUser(ctx)
	switch {
	case err == nil:
		if err := a.store.SetUser(ctx, u, token); err != nil {
			return nil, err
		}
		return u, nil
	case errors.Is(err, client.ErrUnauthorized):
		a.store.ForceLogout(ctx, token)
		return nil, nil
	case errors.Is(err, client.ErrUnavailable):
		a.logger.Warn(ctx, "server unreachable, using cached session", "error", err)
		return a.store.User(), nil
	default:
		return a.store.User(), err
	}
}
