package service

import (
	"context"
	"sort"
	"sync"

	"ai-notesync/internal/entity"
	"ai-notesync/pkg/remote"

	"github.com/google/uuid"
)

// INoteReconciler owns the working set: the single ordered list of notes the
// rest of the system observes. All mutation goes through its entry points; the
// only ordering guarantee exposed is descending CreatedAt after each merge.
type INoteReconciler interface {
	// ApplySnapshot merges a full remote snapshot with the locally-pending
	// notes and atomically replaces the working set. Pure, no I/O.
	ApplySnapshot(ctx context.Context, snapshot remote.Snapshot)

	// AddLocal registers a locally-created note (pending until MarkSynced).
	AddLocal(ctx context.Context, note *entity.Note)

	// MarkSynced records the remote id the store assigned. From this moment
	// the note is no longer pending and later snapshots deduplicate against it.
	MarkSynced(ctx context.Context, localId uuid.UUID, remoteId string)

	// RemoveLocal drops a note from the working set and the local record.
	RemoveLocal(ctx context.Context, localId uuid.UUID)

	// UpdateLocal replaces the local copy of an already-registered note.
	UpdateLocal(ctx context.Context, note *entity.Note)

	// SeedPending loads journaled pending notes at startup.
	SeedPending(ctx context.Context, notes []*entity.Note)

	// WorkingSet returns a copy of the current ordered note list.
	WorkingSet() []*entity.Note

	// FindById looks a note up in the working set.
	FindById(id uuid.UUID) *entity.Note
}

type reconcilerService struct {
	onChange func(ctx context.Context, count int)

	mu         sync.Mutex
	workingSet []*entity.Note
	// Locally-created notes not yet echoed back by a remote snapshot, keyed by
	// local id. Entries without a RemoteId are the pending set.
	local map[uuid.UUID]*entity.Note
	// Stable local id per remote id, so a note keeps its identity across
	// snapshot merges for the process lifetime.
	remoteIds map[string]uuid.UUID
}

func NewReconcilerService(onChange func(ctx context.Context, count int)) INoteReconciler {
	return &reconcilerService{
		onChange:  onChange,
		local:     make(map[uuid.UUID]*entity.Note),
		remoteIds: make(map[string]uuid.UUID),
	}
}

func (s *reconcilerService) ApplySnapshot(ctx context.Context, snapshot remote.Snapshot) {
	s.mu.Lock()

	merged := make([]*entity.Note, 0, len(snapshot.Notes)+len(s.local))
	seenRemote := make(map[string]bool, len(snapshot.Notes))

	for _, rn := range snapshot.Notes {
		if rn.RemoteId == "" || seenRemote[rn.RemoteId] {
			continue
		}
		seenRemote[rn.RemoteId] = true

		localId, known := s.remoteIds[rn.RemoteId]
		if !known {
			localId = uuid.New()
			s.remoteIds[rn.RemoteId] = localId
		}
		merged = append(merged, snapshotToEntity(localId, rn))
	}

	// Local notes the remote store has echoed back are no longer ours to carry.
	for id, note := range s.local {
		if note.RemoteId != "" && seenRemote[note.RemoteId] {
			delete(s.local, id)
			continue
		}
		merged = append(merged, note)
	}

	sortByCreatedAtDesc(merged)
	s.workingSet = merged
	count := len(merged)
	s.mu.Unlock()

	s.notifyChanged(ctx, count)
}

func (s *reconcilerService) AddLocal(ctx context.Context, note *entity.Note) {
	s.mu.Lock()
	s.local[note.Id] = note
	s.workingSet = insertSorted(s.workingSet, note)
	count := len(s.workingSet)
	s.mu.Unlock()

	s.notifyChanged(ctx, count)
}

func (s *reconcilerService) MarkSynced(ctx context.Context, localId uuid.UUID, remoteId string) {
	s.mu.Lock()
	if note, ok := s.local[localId]; ok && note.RemoteId == "" {
		note.RemoteId = remoteId
		s.remoteIds[remoteId] = localId
	}
	s.mu.Unlock()
}

func (s *reconcilerService) RemoveLocal(ctx context.Context, localId uuid.UUID) {
	s.mu.Lock()
	delete(s.local, localId)
	kept := s.workingSet[:0]
	for _, n := range s.workingSet {
		if n.Id != localId {
			kept = append(kept, n)
		}
	}
	s.workingSet = kept
	count := len(kept)
	s.mu.Unlock()

	s.notifyChanged(ctx, count)
}

func (s *reconcilerService) UpdateLocal(ctx context.Context, note *entity.Note) {
	s.mu.Lock()
	if _, ok := s.local[note.Id]; ok {
		s.local[note.Id] = note
	}
	for i, n := range s.workingSet {
		if n.Id == note.Id {
			s.workingSet[i] = note
			break
		}
	}
	count := len(s.workingSet)
	s.mu.Unlock()

	s.notifyChanged(ctx, count)
}

func (s *reconcilerService) SeedPending(ctx context.Context, notes []*entity.Note) {
	s.mu.Lock()
	for _, note := range notes {
		if note.RemoteId != "" {
			continue
		}
		if _, exists := s.local[note.Id]; exists {
			continue
		}
		s.local[note.Id] = note
		s.workingSet = insertSorted(s.workingSet, note)
	}
	count := len(s.workingSet)
	s.mu.Unlock()

	s.notifyChanged(ctx, count)
}

func (s *reconcilerService) WorkingSet() []*entity.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*entity.Note, len(s.workingSet))
	copy(out, s.workingSet)
	return out
}

func (s *reconcilerService) FindById(id uuid.UUID) *entity.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.workingSet {
		if n.Id == id {
			return n
		}
	}
	return nil
}

func (s *reconcilerService) notifyChanged(ctx context.Context, count int) {
	if s.onChange != nil {
		s.onChange(ctx, count)
	}
}

func snapshotToEntity(localId uuid.UUID, rn remote.NoteSnapshot) *entity.Note {
	return &entity.Note{
		Id:          localId,
		RemoteId:    rn.RemoteId,
		Title:       rn.Title,
		Content:     rn.Content,
		RichContent: rn.RichContent,
		IsTask:      rn.IsTask,
		CategoryIds: rn.CategoryIds,
		UserId:      rn.OwnerId,
		CreatedAt:   rn.CreatedAt,
		IsCompleted: rn.IsCompleted,
	}
}

func sortByCreatedAtDesc(notes []*entity.Note) {
	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].CreatedAt.After(notes[j].CreatedAt)
	})
}

func insertSorted(notes []*entity.Note, note *entity.Note) []*entity.Note {
	notes = append(notes, note)
	sortByCreatedAtDesc(notes)
	return notes
}
