// Package cli provides the interactive mood journal command-line client.
//
// It wires configuration, the local session database, the REST client and
// the services into a REPL. On start the persisted session is restored and
// checked with the server; when the server cannot be reached the cached
// entries stay available for reading.
//
// Key features:
//   - Signup / Login / Logout / Me
//   - Add, edit and delete mood entries with optimistic local updates
//   - History grouped by day ("Today", "Yesterday", weekday), with an emotion filter
//   - Voice notes, per-entry AI insights, weekly summary and mood statistics
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
