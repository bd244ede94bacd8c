// Package metadata is the key/value table of the client's local database.
// The session store keeps its persisted blob here.
package metadata

import (
	"context"
	"time"
)

type Repository interface {
	// Get returns (nil, nil) when key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// UpdatedAt returns the zero time when key is absent.
	UpdatedAt(ctx context.Context, key string) (time.Time, error)
}
