package service

import (
	"context"
	"time"

	"ai-notesync/internal/entity"
	"ai-notesync/internal/pkg/logger"
	"ai-notesync/pkg/embedding"
	"ai-notesync/pkg/vectorindex"
)

// IVectorIndex is the slice of the vector store client the coordinator needs.
type IVectorIndex interface {
	Upsert(ctx context.Context, record vectorindex.IndexRecord) error
	Delete(ctx context.Context, id string) error
	Query(ctx context.Context, embedding []float32, ownerId string, limit int, extraFilter vectorindex.Filter) ([]vectorindex.RankedResult, error)
	HealthCheck(ctx context.Context) bool
}

// IIndexerService keeps the vector index consistent with the note corpus.
// The index is a derived, rebuildable artifact: no failure here may disturb
// note creation, editing, or deletion.
type IIndexerService interface {
	ReindexAll(ctx context.Context, notes []*entity.Note)
	OnNoteCreated(ctx context.Context, note *entity.Note)
	OnNoteUpdated(ctx context.Context, note *entity.Note)
	OnNoteDeleted(ctx context.Context, note *entity.Note)
}

type indexerService struct {
	embeddingProvider embedding.EmbeddingProvider
	index             IVectorIndex
	logger            logger.ILogger
}

func NewIndexerService(
	embeddingProvider embedding.EmbeddingProvider,
	index IVectorIndex,
	log logger.ILogger,
) IIndexerService {
	return &indexerService{
		embeddingProvider: embeddingProvider,
		index:             index,
		logger:            log,
	}
}

// ReindexAll rebuilds index records for every remotely-persisted note. One
// note failing must not abort the rest; failures are logged, never returned.
func (s *indexerService) ReindexAll(ctx context.Context, notes []*entity.Note) {
	if !s.index.HealthCheck(ctx) {
		s.logger.Warn("indexer", "Vector store unhealthy, skipping bulk reindex", map[string]interface{}{
			"notes": len(notes),
		})
		return
	}

	indexed := 0
	failed := 0
	for _, note := range notes {
		if note.IsPending() {
			continue
		}
		if err := s.indexNote(ctx, note); err != nil {
			failed++
			s.logger.Error("indexer", "Failed to index note during reindex", map[string]interface{}{
				"note_id":   note.Id,
				"remote_id": note.RemoteId,
				"error":     err.Error(),
			})
			continue
		}
		indexed++
	}

	s.logger.Info("indexer", "Bulk reindex complete", map[string]interface{}{
		"indexed": indexed,
		"failed":  failed,
	})
}

func (s *indexerService) OnNoteCreated(ctx context.Context, note *entity.Note) {
	s.upsertBestEffort(ctx, note, "create")
}

func (s *indexerService) OnNoteUpdated(ctx context.Context, note *entity.Note) {
	s.upsertBestEffort(ctx, note, "update")
}

func (s *indexerService) OnNoteDeleted(ctx context.Context, note *entity.Note) {
	if note.IsPending() {
		return // never indexed
	}
	if err := s.index.Delete(ctx, note.RemoteId); err != nil {
		s.logger.Warn("indexer", "Failed to remove note from index", map[string]interface{}{
			"remote_id": note.RemoteId,
			"error":     err.Error(),
		})
	}
}

func (s *indexerService) upsertBestEffort(ctx context.Context, note *entity.Note, op string) {
	if note.IsPending() {
		return // index entries only exist for remotely-persisted notes
	}
	if err := s.indexNote(ctx, note); err != nil {
		s.logger.Warn("indexer", "Best-effort index update failed", map[string]interface{}{
			"op":        op,
			"remote_id": note.RemoteId,
			"error":     err.Error(),
		})
	}
}

func (s *indexerService) indexNote(ctx context.Context, note *entity.Note) error {
	res, err := s.embeddingProvider.Generate(ctx, note.Content)
	if err != nil {
		return err
	}

	record := vectorindex.IndexRecord{
		Id:        note.RemoteId,
		Embedding: res.Values,
		Metadata: vectorindex.RecordMetadata{
			OwnerId:    note.UserId,
			Title:      note.Title,
			IsTask:     note.IsTask,
			Categories: note.CategoryIds,
			CreatedAt:  note.CreatedAt.UTC().Format(time.RFC3339),
		},
		DocumentText: note.Content,
	}

	return s.index.Upsert(ctx, record)
}
