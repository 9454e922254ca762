package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateNoteRequest struct {
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	RichContent string   `json:"rich_content,omitempty"`
	IsTask      bool     `json:"is_task"`
	CategoryIds []string `json:"category_ids,omitempty"`
}

type CreateNoteResponse struct {
	Id uuid.UUID `json:"id"`
}

type UpdateNoteRequest struct {
	Id          uuid.UUID
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	RichContent string   `json:"rich_content,omitempty"`
	IsTask      bool     `json:"is_task"`
	IsCompleted bool     `json:"is_completed"`
	CategoryIds []string `json:"category_ids,omitempty"`
}

type UpdateNoteResponse struct {
	Id uuid.UUID `json:"id"`
}

type SemanticSearchResponse struct {
	RemoteId  string    `json:"remote_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Distance  float64   `json:"distance"` // store ranking, lower = more similar
	CreatedAt time.Time `json:"created_at"`
}
