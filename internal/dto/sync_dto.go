package dto

import (
	"github.com/google/uuid"
)

// Index operations carried on the in-process message bus.
const (
	IndexOpUpsert = "UPSERT"
	IndexOpDelete = "DELETE"
)

// PublishIndexNoteMessage is the payload published whenever a note mutation
// requires the vector index to be brought up to date.
type PublishIndexNoteMessage struct {
	NoteId   uuid.UUID `json:"note_id"`
	RemoteId string    `json:"remote_id,omitempty"`
	Op       string    `json:"op"`
}
