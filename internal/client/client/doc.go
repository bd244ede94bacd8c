// Package client contains the client-side gateway to the mood journal backend.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface): auth
//     (Login, Signup, CurrentUser, Logout), entry CRUD, audio upload and
//     deletion, and read-only AI artifacts (insights, weekly summary, stats).
//  2. A concrete REST implementation (see HTTPClient) that reads the bearer
//     token from a TokenSource on every request, validates obviously bad
//     input before sending it, traces requests through otelhttp and can pace
//     them with a token-bucket limiter.
//  3. Local persistence bootstrap utilities (InitDatabase, RunMigrations),
//     wiring an SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Non-2xx responses are returned as *APIError carrying the server payload
// unmodified; it matches one of the sentinels with errors.Is:
// ErrUnauthorized, ErrForbidden, ErrNotFound, ErrBadRequest, ErrUnavailable.
// Network failures and timeouts wrap ErrUnavailable. Nothing is retried.
//
// A 401 on a request that carried a token invokes the UnauthorizedHandler
// before the error is returned, so the session is already cleared when the
// caller sees the failure.
//
// # Concurrency & Contexts
//
// HTTPClient is safe for concurrent use. All operations accept
// context.Context and honor cancellation; each request is additionally bound
// by the client timeout.
package client
