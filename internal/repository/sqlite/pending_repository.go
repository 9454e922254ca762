package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"ai-notesync/internal/entity"
	"ai-notesync/internal/repository/contract"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS pending_notes (
	id           TEXT PRIMARY KEY,
	title        TEXT NOT NULL DEFAULT '',
	content      TEXT NOT NULL,
	rich_content TEXT NOT NULL DEFAULT '',
	is_task      INTEGER NOT NULL DEFAULT 0,
	category_ids TEXT NOT NULL DEFAULT '[]',
	user_id      TEXT NOT NULL,
	created_at   TEXT NOT NULL,
	is_completed INTEGER NOT NULL DEFAULT 0
);
`

// PendingNoteRepository persists pending notes in a local SQLite journal.
type PendingNoteRepository struct {
	db *sql.DB
}

// NewPendingNoteRepository opens or creates the journal at the given path.
func NewPendingNoteRepository(path string) (contract.PendingNoteRepository, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode=WAL&_pragma=synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping journal: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate journal: %w", err)
	}

	return &PendingNoteRepository{db: db}, nil
}

func (r *PendingNoteRepository) Save(ctx context.Context, note *entity.Note) error {
	categories, err := json.Marshal(note.CategoryIds)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO pending_notes (id, title, content, rich_content, is_task, category_ids, user_id, created_at, is_completed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			content = excluded.content,
			rich_content = excluded.rich_content,
			is_task = excluded.is_task,
			category_ids = excluded.category_ids,
			is_completed = excluded.is_completed`,
		note.Id.String(),
		note.Title,
		note.Content,
		note.RichContent,
		boolToInt(note.IsTask),
		string(categories),
		note.UserId,
		note.CreatedAt.UTC().Format(time.RFC3339Nano),
		boolToInt(note.IsCompleted),
	)
	return err
}

func (r *PendingNoteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM pending_notes WHERE id = ?`, id.String())
	return err
}

func (r *PendingNoteRepository) LoadAll(ctx context.Context) ([]*entity.Note, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, content, rich_content, is_task, category_ids, user_id, created_at, is_completed
		FROM pending_notes ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []*entity.Note
	for rows.Next() {
		var (
			idStr, title, content, richContent, categoriesRaw, userId, createdAtStr string
			isTask, isCompleted                                                    int
		)
		if err := rows.Scan(&idStr, &title, &content, &richContent, &isTask, &categoriesRaw, &userId, &createdAtStr, &isCompleted); err != nil {
			return nil, err
		}

		id, err := uuid.Parse(idStr)
		if err != nil {
			return nil, fmt.Errorf("corrupt journal entry id %q: %w", idStr, err)
		}
		createdAt, err := time.Parse(time.RFC3339Nano, createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("corrupt journal entry timestamp %q: %w", createdAtStr, err)
		}

		var categories []string
		if err := json.Unmarshal([]byte(categoriesRaw), &categories); err != nil {
			return nil, fmt.Errorf("corrupt journal entry categories: %w", err)
		}

		notes = append(notes, &entity.Note{
			Id:          id,
			Title:       title,
			Content:     content,
			RichContent: richContent,
			IsTask:      isTask != 0,
			CategoryIds: categories,
			UserId:      userId,
			CreatedAt:   createdAt,
			IsCompleted: isCompleted != 0,
		})
	}
	return notes, rows.Err()
}

func (r *PendingNoteRepository) Close() error {
	return r.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
