package contract

import (
	"context"

	"ai-notesync/internal/entity"

	"github.com/google/uuid"
)

// PendingNoteRepository journals locally-created notes until the remote store
// acknowledges them, so a crash between create and ack loses nothing.
type PendingNoteRepository interface {
	Save(ctx context.Context, note *entity.Note) error
	Delete(ctx context.Context, id uuid.UUID) error
	LoadAll(ctx context.Context) ([]*entity.Note, error)
	Close() error
}
