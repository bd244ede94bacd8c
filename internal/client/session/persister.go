package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/moodjournal/internal/client/models"
	"github.com/dmitrijs2005/moodjournal/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/moodjournal/internal/common"
)

// Persister stores the durable session blob.
type Persister interface {
	// Load returns (nil, nil) when nothing has been saved yet.
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
	// SavedAt is the time of the last successful Save, zero if none.
	SavedAt(ctx context.Context) (time.Time, error)
}

// SQLitePersister keeps the blob as JSON under one key of the metadata table.
type SQLitePersister struct {
	repo metadata.Repository
	key  string
}

func NewSQLitePersister(repo metadata.Repository) *SQLitePersister {
	return &SQLitePersister{repo: repo, key: common.SessionBlobKey}
}

func (p *SQLitePersister) Load(ctx context.Context) (*Snapshot, error) {
	b, err := p.repo.Get(ctx, p.key)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, nil
	}
	return decodeSnapshot(b)
}

func (p *SQLitePersister) Save(ctx context.Context, snap Snapshot) error {
	b, err := encodeSnapshot(snap)
	if err != nil {
		return err
	}
	return p.repo.Set(ctx, p.key, b)
}

func (p *SQLitePersister) SavedAt(ctx context.Context) (time.Time, error) {
	return p.repo.UpdatedAt(ctx, p.key)
}

// MemoryPersister keeps the encoded blob in memory. It goes through the same
// JSON encoding as SQLitePersister so a reload behaves like a restart.
type MemoryPersister struct {
	mu      sync.Mutex
	blob    []byte
	savedAt time.Time
}

func NewMemoryPersister() *MemoryPersister { return &MemoryPersister{} }

func (p *MemoryPersister) Load(ctx context.Context) (*Snapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.blob == nil {
		return nil, nil
	}
	return decodeSnapshot(p.blob)
}

func (p *MemoryPersister) Save(ctx context.Context, snap Snapshot) error {
	b, err := encodeSnapshot(snap)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.blob = b
	p.savedAt = time.Now()
	p.mu.Unlock()
	return nil
}

func (p *MemoryPersister) SavedAt(ctx context.Context) (time.Time, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.savedAt, nil
}

// Blob returns the raw encoded snapshot, nil if never saved.
func (p *MemoryPersister) Blob() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]byte(nil), p.blob...)
}

func encodeSnapshot(snap Snapshot) ([]byte, error) {
	if snap.Entries == nil {
		snap.Entries = []models.MoodEntry{}
	}
	b, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session: %w", err)
	}
	return b, nil
}

func decodeSnapshot(b []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	if snap.Entries == nil {
		snap.Entries = []models.MoodEntry{}
	}
	return &snap, nil
}
