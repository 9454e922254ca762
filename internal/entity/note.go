package entity

import (
	"time"

	"github.com/google/uuid"
)

// Note is the working-set entity. RemoteId is assigned exactly once, when the
// remote store acknowledges the persist; until then the note is pending.
type Note struct {
	Id          uuid.UUID
	RemoteId    string
	Title       string
	Content     string
	RichContent string
	IsTask      bool
	CategoryIds []string
	UserId      string
	CreatedAt   time.Time
	IsCompleted bool
}

// IsPending reports whether the note has not yet been persisted remotely.
func (n *Note) IsPending() bool {
	return n.RemoteId == ""
}
