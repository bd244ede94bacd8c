// Package common contains small constants and helpers shared across the
// mood journal client packages.
package common

const (
	// AuthorizationHeader carries the bearer credential on outbound requests.
	AuthorizationHeader = "Authorization"

	// BearerPrefix precedes the token inside AuthorizationHeader.
	BearerPrefix = "Bearer "

	// SessionBlobKey names the persisted session blob in local storage.
	SessionBlobKey = "mood-journal-store"
)
