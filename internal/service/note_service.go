package service

import (
	"context"
	"encoding/json"
	"time"

	"ai-notesync/internal/dto"
	"ai-notesync/internal/entity"
	"ai-notesync/internal/pkg/logger"
	"ai-notesync/internal/repository/contract"
	"ai-notesync/pkg/embedding"
	"ai-notesync/pkg/remote"

	"github.com/google/uuid"
)

type INoteService interface {
	Create(ctx context.Context, userId string, req *dto.CreateNoteRequest) (*dto.CreateNoteResponse, error)
	Update(ctx context.Context, userId string, req *dto.UpdateNoteRequest) (*dto.UpdateNoteResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	SemanticSearch(ctx context.Context, userId string, search string, limit int) ([]*dto.SemanticSearchResponse, error)
	FlushPending(ctx context.Context)
}

type noteService struct {
	reconciler        INoteReconciler
	pendingRepo       contract.PendingNoteRepository
	remoteStore       remote.Store
	publisherService  IPublisherService
	embeddingProvider embedding.EmbeddingProvider
	index             IVectorIndex
	logger            logger.ILogger
}

func NewNoteService(
	reconciler INoteReconciler,
	pendingRepo contract.PendingNoteRepository,
	remoteStore remote.Store,
	publisherService IPublisherService,
	embeddingProvider embedding.EmbeddingProvider,
	index IVectorIndex,
	log logger.ILogger,
) INoteService {
	return &noteService{
		reconciler:        reconciler,
		pendingRepo:       pendingRepo,
		remoteStore:       remoteStore,
		publisherService:  publisherService,
		embeddingProvider: embeddingProvider,
		index:             index,
		logger:            log,
	}
}

// Create builds a pending note, journals it, exposes it in the working set,
// and persists it to the remote store. The note stays pending strictly until
// the persist ack returns a remote id.
func (s *noteService) Create(ctx context.Context, userId string, req *dto.CreateNoteRequest) (*dto.CreateNoteResponse, error) {
	note := &entity.Note{
		Id:          uuid.New(),
		Title:       req.Title,
		Content:     req.Content,
		RichContent: req.RichContent,
		IsTask:      req.IsTask,
		CategoryIds: req.CategoryIds,
		UserId:      userId,
		CreatedAt:   time.Now(),
	}

	if err := s.pendingRepo.Save(ctx, note); err != nil {
		return nil, err
	}
	s.reconciler.AddLocal(ctx, note)

	remoteId, err := s.remoteStore.Persist(ctx, entityToSnapshot(note))
	if err != nil {
		// The note stays pending; a later sync pass or restart retries it.
		s.logger.Warn("note", "Remote persist failed, note stays pending", map[string]interface{}{
			"note_id": note.Id,
			"error":   err.Error(),
		})
		return &dto.CreateNoteResponse{Id: note.Id}, nil
	}

	s.ackSynced(ctx, note, remoteId)
	return &dto.CreateNoteResponse{Id: note.Id}, nil
}

func (s *noteService) ackSynced(ctx context.Context, note *entity.Note, remoteId string) {
	s.reconciler.MarkSynced(ctx, note.Id, remoteId)
	note.RemoteId = remoteId

	if err := s.pendingRepo.Delete(ctx, note.Id); err != nil {
		s.logger.Warn("note", "Failed to clear journal entry", map[string]interface{}{
			"note_id": note.Id,
			"error":   err.Error(),
		})
	}

	s.publishIndexMessage(ctx, note.Id, remoteId, dto.IndexOpUpsert)
}

func (s *noteService) Update(ctx context.Context, userId string, req *dto.UpdateNoteRequest) (*dto.UpdateNoteResponse, error) {
	note := s.reconciler.FindById(req.Id)
	if note == nil {
		return nil, nil
	}

	updated := *note
	updated.Title = req.Title
	updated.Content = req.Content
	updated.RichContent = req.RichContent
	updated.IsTask = req.IsTask
	updated.IsCompleted = req.IsCompleted
	updated.CategoryIds = req.CategoryIds

	s.reconciler.UpdateLocal(ctx, &updated)

	if updated.IsPending() {
		// Not yet persisted: refresh the journal copy, nothing to push.
		if err := s.pendingRepo.Save(ctx, &updated); err != nil {
			return nil, err
		}
		return &dto.UpdateNoteResponse{Id: updated.Id}, nil
	}

	if err := s.remoteStore.Update(ctx, entityToSnapshot(&updated)); err != nil {
		return nil, err
	}

	s.publishIndexMessage(ctx, updated.Id, updated.RemoteId, dto.IndexOpUpsert)
	return &dto.UpdateNoteResponse{Id: updated.Id}, nil
}

func (s *noteService) Delete(ctx context.Context, id uuid.UUID) error {
	note := s.reconciler.FindById(id)
	if note == nil {
		return nil
	}

	s.reconciler.RemoveLocal(ctx, id)

	if note.IsPending() {
		return s.pendingRepo.Delete(ctx, id)
	}

	if err := s.remoteStore.Delete(ctx, note.RemoteId); err != nil {
		return err
	}

	s.publishIndexMessage(ctx, note.Id, note.RemoteId, dto.IndexOpDelete)
	return nil
}

// FlushPending retries the remote persist for every note still pending in the
// working set, typically after a restart restored them from the journal.
func (s *noteService) FlushPending(ctx context.Context) {
	for _, note := range s.reconciler.WorkingSet() {
		if !note.IsPending() {
			continue
		}
		remoteId, err := s.remoteStore.Persist(ctx, entityToSnapshot(note))
		if err != nil {
			s.logger.Warn("note", "Pending note persist retry failed", map[string]interface{}{
				"note_id": note.Id,
				"error":   err.Error(),
			})
			continue
		}
		s.ackSynced(ctx, note, remoteId)
	}
}

func (s *noteService) SemanticSearch(ctx context.Context, userId string, search string, limit int) ([]*dto.SemanticSearchResponse, error) {
	embeddingRes, err := s.embeddingProvider.Generate(ctx, search)
	if err != nil {
		return nil, err
	}

	results, err := s.index.Query(ctx, embeddingRes.Values, userId, limit, nil)
	if err != nil {
		return nil, err
	}

	response := make([]*dto.SemanticSearchResponse, 0, len(results))
	for _, r := range results {
		resp := &dto.SemanticSearchResponse{
			RemoteId: r.Id,
			Content:  r.Document,
			Distance: r.Distance,
		}
		if title, ok := r.Metadata["title"].(string); ok {
			resp.Title = title
		}
		if createdAt, ok := r.Metadata["created_at"].(string); ok {
			if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
				resp.CreatedAt = t
			}
		}
		response = append(response, resp)
	}

	return response, nil
}

// publishIndexMessage hands index maintenance to the consumer. Failures are
// logged only: the index is derived and must never block note operations.
func (s *noteService) publishIndexMessage(ctx context.Context, noteId uuid.UUID, remoteId string, op string) {
	payload := dto.PublishIndexNoteMessage{
		NoteId:   noteId,
		RemoteId: remoteId,
		Op:       op,
	}
	payloadJson, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("note", "Failed to marshal index message", map[string]interface{}{
			"note_id": noteId,
			"error":   err.Error(),
		})
		return
	}
	if err := s.publisherService.Publish(ctx, payloadJson); err != nil {
		s.logger.Warn("note", "Failed to publish index message", map[string]interface{}{
			"note_id": noteId,
			"op":      op,
			"error":   err.Error(),
		})
	}
}

func entityToSnapshot(note *entity.Note) remote.NoteSnapshot {
	return remote.NoteSnapshot{
		RemoteId:    note.RemoteId,
		Title:       note.Title,
		Content:     note.Content,
		RichContent: note.RichContent,
		IsTask:      note.IsTask,
		CategoryIds: note.CategoryIds,
		OwnerId:     note.UserId,
		CreatedAt:   note.CreatedAt,
		IsCompleted: note.IsCompleted,
	}
}
