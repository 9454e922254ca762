package events

import "time"

// Event type codes emitted by the sync core.
const (
	TypeNoteListChanged = "NOTE_LIST_CHANGED"
	TypeNoteSynced      = "NOTE_SYNCED"
	TypeReindexDone     = "REINDEX_DONE"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "NOTE_LIST_CHANGED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the generic Event implementation used across the core.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// NoteListChanged builds the event published after every reconciliation pass.
func NoteListChanged(count int) BaseEvent {
	return BaseEvent{
		Type: TypeNoteListChanged,
		Data: map[string]interface{}{
			"count": count,
		},
		OccurredAt: time.Now(),
	}
}
