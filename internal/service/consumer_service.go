package service

import (
	"context"
	"encoding/json"

	"ai-notesync/internal/dto"
	"ai-notesync/internal/entity"
	"ai-notesync/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the index topic and drives the coordinator hooks.
// The whole pipeline is best-effort: the coordinator swallows index failures,
// so every message is acked after processing.
type consumerService struct {
	pubSub     *gochannel.GoChannel
	topicName  string
	reconciler INoteReconciler
	indexer    IIndexerService
	logger     logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	reconciler INoteReconciler,
	indexer IIndexerService,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:     pubSub,
		topicName:  topicName,
		reconciler: reconciler,
		indexer:    indexer,
		logger:     log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	var payload dto.PublishIndexNoteMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("consumer", "Failed to unmarshal index message", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	switch payload.Op {
	case dto.IndexOpDelete:
		// The note is already gone from the working set; the remote id on the
		// message is all the index needs.
		cs.indexer.OnNoteDeleted(ctx, &entity.Note{
			Id:       payload.NoteId,
			RemoteId: payload.RemoteId,
		})
	case dto.IndexOpUpsert:
		note := cs.reconciler.FindById(payload.NoteId)
		if note == nil {
			cs.logger.Warn("consumer", "Note vanished before indexing", map[string]interface{}{
				"note_id": payload.NoteId,
			})
			return
		}
		cs.indexer.OnNoteUpdated(ctx, note)
	default:
		cs.logger.Warn("consumer", "Unknown index op", map[string]interface{}{
			"op": payload.Op,
		})
	}
}
