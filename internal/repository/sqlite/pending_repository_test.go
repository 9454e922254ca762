package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"ai-notesync/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *PendingNoteRepository {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pending.db")
	repo, err := NewPendingNoteRepository(path)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo.(*PendingNoteRepository)
}

func TestSaveAndLoadRoundtrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	note := &entity.Note{
		Id:          uuid.New(),
		Title:       "groceries",
		Content:     "buy milk",
		RichContent: `{"blocks":[]}`,
		IsTask:      true,
		CategoryIds: []string{"errands", "home"},
		UserId:      "A",
		CreatedAt:   time.Date(2026, 8, 30, 10, 30, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Save(ctx, note))

	loaded, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)

	got := loaded[0]
	assert.Equal(t, note.Id, got.Id)
	assert.Equal(t, note.Title, got.Title)
	assert.Equal(t, note.Content, got.Content)
	assert.Equal(t, note.RichContent, got.RichContent)
	assert.True(t, got.IsTask)
	assert.Equal(t, note.CategoryIds, got.CategoryIds)
	assert.Equal(t, "A", got.UserId)
	assert.True(t, note.CreatedAt.Equal(got.CreatedAt))
	assert.True(t, got.IsPending())
}

func TestSaveUpsertsById(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	note := &entity.Note{Id: uuid.New(), Content: "v1", UserId: "A", CreatedAt: time.Now()}
	require.NoError(t, repo.Save(ctx, note))

	note.Content = "v2"
	require.NoError(t, repo.Save(ctx, note))

	loaded, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "v2", loaded[0].Content)
}

func TestDeleteJournalEntry(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	note := &entity.Note{Id: uuid.New(), Content: "gone soon", UserId: "A", CreatedAt: time.Now()}
	require.NoError(t, repo.Save(ctx, note))
	require.NoError(t, repo.Delete(ctx, note.Id))

	loaded, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestLoadAllOrdersNewestFirst(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	older := &entity.Note{Id: uuid.New(), Content: "older", UserId: "A", CreatedAt: base}
	newer := &entity.Note{Id: uuid.New(), Content: "newer", UserId: "A", CreatedAt: base.Add(time.Hour)}
	require.NoError(t, repo.Save(ctx, older))
	require.NoError(t, repo.Save(ctx, newer))

	loaded, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "newer", loaded[0].Content)
	assert.Equal(t, "older", loaded[1].Content)
}
