package bootstrap

import (
	"context"
	"encoding/json"
	"log"

	"ai-notesync/internal/config"
	"ai-notesync/internal/pkg/logger"
	"ai-notesync/internal/repository/contract"
	"ai-notesync/internal/repository/sqlite"
	"ai-notesync/internal/service"
	"ai-notesync/pkg/embedding"
	"ai-notesync/pkg/events"
	"ai-notesync/pkg/remote"
	"ai-notesync/pkg/vectorindex"

	"github.com/ThreeDotsLabs/watermill"
	wmessage "github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const eventsTopicName = "EVENTS"

type Container struct {
	Logger      logger.ILogger
	Reconciler  service.INoteReconciler
	Indexer     service.IIndexerService
	NoteService service.INoteService

	// Background services (exposed for the CLI to run)
	ConsumerService service.IConsumerService
	Feed            remote.Feed

	PendingRepo contract.PendingNoteRepository
	PubSub      *gochannel.GoChannel
}

// NewContainer wires every service explicitly; no package-level singletons.
// The remote store is injected by the caller since it is an external
// collaborator with deployment-specific transport.
func NewContainer(cfg *config.Config, remoteStore remote.Store) (*Container, error) {
	// 1. Core facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Embedding provider (cached decorator over OpenAI)
	var embeddingProvider embedding.EmbeddingProvider
	embeddingProvider = embedding.NewOpenAIProvider(
		cfg.Embedding.ApiKey,
		cfg.Embedding.BaseURL,
		cfg.Embedding.Model,
	)
	embeddingProvider = embedding.NewCachedProvider(embeddingProvider)

	// 4. Vector store client
	indexClient := vectorindex.NewClient(cfg.Index.BaseURL, cfg.Index.CollectionName)

	// 5. Pending-note journal
	pendingRepo, err := sqlite.NewPendingNoteRepository(cfg.App.PendingDBPath)
	if err != nil {
		return nil, err
	}

	// 6. Services
	indexer := service.NewIndexerService(embeddingProvider, indexClient, sysLogger)

	reconciler := service.NewReconcilerService(func(ctx context.Context, count int) {
		evt := events.NoteListChanged(count)
		data, err := json.Marshal(evt.Payload())
		if err != nil {
			return
		}
		msg := wmessage.NewMessage(watermill.NewUUID(), data)
		msg.Metadata.Set("event_type", evt.EventType())
		if err := pubSub.Publish(eventsTopicName, msg); err != nil {
			log.Printf("[WARN] Failed to publish %s event: %v", evt.EventType(), err)
		}
	})

	// Seed pending notes journaled before the last shutdown
	pending, err := pendingRepo.LoadAll(context.Background())
	if err != nil {
		return nil, err
	}
	if len(pending) > 0 {
		reconciler.SeedPending(context.Background(), pending)
		log.Printf("[INFO] Restored %d pending notes from journal", len(pending))
	}

	publisherService := service.NewPublisherService(cfg.App.IndexTopicName, pubSub)
	noteService := service.NewNoteService(
		reconciler,
		pendingRepo,
		remoteStore,
		publisherService,
		embeddingProvider,
		indexClient,
		sysLogger,
	)
	consumerService := service.NewConsumerService(pubSub, cfg.App.IndexTopicName, reconciler, indexer, sysLogger)

	// 7. Remote feed
	feed, err := remote.NewNatsFeed(cfg.Remote.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to remote note feed: %v", err)
		feed = nil
	}

	c := &Container{
		Logger:          sysLogger,
		Reconciler:      reconciler,
		Indexer:         indexer,
		NoteService:     noteService,
		ConsumerService: consumerService,
		PendingRepo:     pendingRepo,
		PubSub:          pubSub,
	}
	if feed != nil {
		c.Feed = feed
	}
	return c, nil
}

// Close releases the container's long-lived resources.
func (c *Container) Close() {
	if c.Feed != nil {
		c.Feed.Close()
	}
	if c.PendingRepo != nil {
		c.PendingRepo.Close()
	}
	if c.PubSub != nil {
		c.PubSub.Close()
	}
	if c.Logger != nil {
		c.Logger.Sync()
	}
}
