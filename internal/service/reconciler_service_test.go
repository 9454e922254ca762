package service

import (
	"context"
	"testing"
	"time"

	"ai-notesync/internal/entity"
	"ai-notesync/pkg/remote"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func remoteNote(remoteId string, createdAt time.Time) remote.NoteSnapshot {
	return remote.NoteSnapshot{
		RemoteId:  remoteId,
		Content:   "content of " + remoteId,
		OwnerId:   "A",
		CreatedAt: createdAt,
	}
}

func localNote(content string, createdAt time.Time) *entity.Note {
	return &entity.Note{
		Id:        uuid.New(),
		Content:   content,
		UserId:    "A",
		CreatedAt: createdAt,
	}
}

func workingSetRemoteIds(notes []*entity.Note) []string {
	out := make([]string, len(notes))
	for i, n := range notes {
		out[i] = n.RemoteId
	}
	return out
}

func TestApplySnapshotSortsDescending(t *testing.T) {
	r := NewReconcilerService(nil)
	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	r.ApplySnapshot(context.Background(), remote.Snapshot{
		OwnerId: "A",
		Notes: []remote.NoteSnapshot{
			remoteNote("r1", base.Add(1*time.Hour)),
			remoteNote("r2", base.Add(3*time.Hour)),
			remoteNote("r3", base.Add(2*time.Hour)),
		},
	})

	ws := r.WorkingSet()
	require.Len(t, ws, 3)
	assert.Equal(t, []string{"r2", "r3", "r1"}, workingSetRemoteIds(ws))
	for i := 1; i < len(ws); i++ {
		assert.True(t, ws[i-1].CreatedAt.After(ws[i].CreatedAt))
	}
}

func TestApplySnapshotIdempotent(t *testing.T) {
	r := NewReconcilerService(nil)
	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	snapshot := remote.Snapshot{
		OwnerId: "A",
		Notes: []remote.NoteSnapshot{
			remoteNote("r1", base.Add(1*time.Minute)),
			remoteNote("r2", base.Add(2*time.Minute)),
		},
	}

	r.ApplySnapshot(context.Background(), snapshot)
	first := r.WorkingSet()
	r.ApplySnapshot(context.Background(), snapshot)
	second := r.WorkingSet()

	require.Equal(t, len(first), len(second))
	for i := range first {
		// Same notes, same order, same stable local ids
		assert.Equal(t, first[i].Id, second[i].Id)
		assert.Equal(t, first[i].RemoteId, second[i].RemoteId)
	}
}

func TestPendingNoteStaysAtFront(t *testing.T) {
	r := NewReconcilerService(nil)
	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	r.ApplySnapshot(context.Background(), remote.Snapshot{
		OwnerId: "A",
		Notes:   []remote.NoteSnapshot{remoteNote("r1", base)},
	})

	pending := localNote("just created", base.Add(1*time.Hour))
	r.AddLocal(context.Background(), pending)

	ws := r.WorkingSet()
	require.Len(t, ws, 2)
	assert.Equal(t, pending.Id, ws[0].Id)

	// A snapshot that does not yet include it keeps it at the front
	r.ApplySnapshot(context.Background(), remote.Snapshot{
		OwnerId: "A",
		Notes:   []remote.NoteSnapshot{remoteNote("r1", base)},
	})
	ws = r.WorkingSet()
	require.Len(t, ws, 2)
	assert.Equal(t, pending.Id, ws[0].Id)
	assert.True(t, ws[0].IsPending())
}

func TestSyncedNoteDeduplicatesOnEcho(t *testing.T) {
	r := NewReconcilerService(nil)
	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	pending := localNote("synced later", base.Add(1*time.Hour))
	r.AddLocal(context.Background(), pending)
	r.MarkSynced(context.Background(), pending.Id, "r-new")

	// Remote snapshot now echoes the note back
	r.ApplySnapshot(context.Background(), remote.Snapshot{
		OwnerId: "A",
		Notes: []remote.NoteSnapshot{
			remoteNote("r1", base),
			remoteNote("r-new", base.Add(1*time.Hour)),
		},
	})

	ws := r.WorkingSet()
	require.Len(t, ws, 2)

	count := 0
	for _, n := range ws {
		if n.RemoteId == "r-new" {
			count++
			// The echoed note keeps the local id assigned at creation
			assert.Equal(t, pending.Id, n.Id)
		}
	}
	assert.Equal(t, 1, count)
}

func TestMarkSyncedOnlyOnce(t *testing.T) {
	r := NewReconcilerService(nil)
	pending := localNote("note", time.Now())
	r.AddLocal(context.Background(), pending)

	r.MarkSynced(context.Background(), pending.Id, "r-first")
	r.MarkSynced(context.Background(), pending.Id, "r-second")

	n := r.FindById(pending.Id)
	require.NotNil(t, n)
	assert.Equal(t, "r-first", n.RemoteId)
}

func TestSeedPendingSkipsSyncedNotes(t *testing.T) {
	r := NewReconcilerService(nil)
	synced := localNote("already synced", time.Now())
	synced.RemoteId = "r9"

	r.SeedPending(context.Background(), []*entity.Note{
		synced,
		localNote("still pending", time.Now()),
	})

	ws := r.WorkingSet()
	require.Len(t, ws, 1)
	assert.True(t, ws[0].IsPending())
}

func TestChangeNotificationFires(t *testing.T) {
	var counts []int
	r := NewReconcilerService(func(ctx context.Context, count int) {
		counts = append(counts, count)
	})

	r.AddLocal(context.Background(), localNote("one", time.Now()))
	r.ApplySnapshot(context.Background(), remote.Snapshot{OwnerId: "A"})

	require.Len(t, counts, 2)
	assert.Equal(t, 1, counts[0])
}

func TestRemoveLocal(t *testing.T) {
	r := NewReconcilerService(nil)
	note := localNote("to delete", time.Now())
	r.AddLocal(context.Background(), note)
	r.RemoveLocal(context.Background(), note.Id)

	assert.Empty(t, r.WorkingSet())
	assert.Nil(t, r.FindById(note.Id))
}
