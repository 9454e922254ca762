// Package remote defines the boundary to the authoritative note store: a
// persist interface and a subscribe-style feed that delivers the full current
// snapshot of a user's remote notes on every change (not a diff stream).
package remote

import (
	"context"
	"errors"
	"time"
)

// NoteSnapshot is one remote note as delivered by the feed.
type NoteSnapshot struct {
	RemoteId    string    `json:"remote_id"`
	Title       string    `json:"title,omitempty"`
	Content     string    `json:"content"`
	RichContent string    `json:"rich_content,omitempty"`
	IsTask      bool      `json:"is_task"`
	CategoryIds []string  `json:"category_ids,omitempty"`
	OwnerId     string    `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	IsCompleted bool      `json:"is_completed"`
}

// Snapshot is the full remote state of one user's notes.
type Snapshot struct {
	OwnerId string         `json:"owner_id"`
	Notes   []NoteSnapshot `json:"notes"`
}

// Store is the authoritative note store. Persist returns the remote id the
// store assigned; the note stays pending locally until that ack arrives.
type Store interface {
	Persist(ctx context.Context, note NoteSnapshot) (remoteId string, err error)
	Update(ctx context.Context, note NoteSnapshot) error
	Delete(ctx context.Context, remoteId string) error
}

// SnapshotHandler processes one full remote snapshot.
type SnapshotHandler func(ctx context.Context, snapshot Snapshot) error

// Feed delivers remote snapshots as they change.
type Feed interface {
	Subscribe(ctx context.Context, ownerId string, handler SnapshotHandler) error
	Close()
}

// UnavailableStore is the fallback when no remote transport could be set up.
// Every persist fails, so locally-created notes simply stay pending.
type UnavailableStore struct{}

var errStoreUnavailable = errors.New("remote: note store is unavailable")

func (UnavailableStore) Persist(ctx context.Context, note NoteSnapshot) (string, error) {
	return "", errStoreUnavailable
}

func (UnavailableStore) Update(ctx context.Context, note NoteSnapshot) error {
	return errStoreUnavailable
}

func (UnavailableStore) Delete(ctx context.Context, remoteId string) error {
	return errStoreUnavailable
}
