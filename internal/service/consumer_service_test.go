package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"ai-notesync/internal/dto"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTopic = "INDEX_NOTE_TEST"

func publishIndexMessage(t *testing.T, pubSub *gochannel.GoChannel, payload dto.PublishIndexNoteMessage) {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	require.NoError(t, pubSub.Publish(testTopic, message.NewMessage(watermill.NewUUID(), data)))
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestConsumerUpserts(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	reconciler := NewReconcilerService(nil)
	index := &fakeIndex{healthy: true}
	indexer := NewIndexerService(&fakeEmbedder{}, index, &testLogger{})
	consumer := NewConsumerService(pubSub, testTopic, reconciler, indexer, &testLogger{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, consumer.Consume(ctx))

	note := syncedNote("r1", "indexed content")
	reconciler.AddLocal(ctx, note)

	publishIndexMessage(t, pubSub, dto.PublishIndexNoteMessage{
		NoteId:   note.Id,
		RemoteId: note.RemoteId,
		Op:       dto.IndexOpUpsert,
	})

	waitFor(t, func() bool { return len(index.upserts) == 1 })
	assert.Equal(t, "r1", index.upserts[0].Id)
}

func TestConsumerDeletesWithoutWorkingSetEntry(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	reconciler := NewReconcilerService(nil)
	index := &fakeIndex{healthy: true}
	indexer := NewIndexerService(&fakeEmbedder{}, index, &testLogger{})
	consumer := NewConsumerService(pubSub, testTopic, reconciler, indexer, &testLogger{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, consumer.Consume(ctx))

	publishIndexMessage(t, pubSub, dto.PublishIndexNoteMessage{
		NoteId:   uuid.New(),
		RemoteId: "r-gone",
		Op:       dto.IndexOpDelete,
	})

	waitFor(t, func() bool { return len(index.deletes) == 1 })
	assert.Equal(t, "r-gone", index.deletes[0])
}

func TestConsumerIgnoresMalformedPayload(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	reconciler := NewReconcilerService(nil)
	index := &fakeIndex{healthy: true}
	indexer := NewIndexerService(&fakeEmbedder{}, index, &testLogger{})
	log := &testLogger{}
	consumer := NewConsumerService(pubSub, testTopic, reconciler, indexer, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, consumer.Consume(ctx))

	require.NoError(t, pubSub.Publish(testTopic, message.NewMessage(watermill.NewUUID(), []byte("not json"))))

	waitFor(t, func() bool { return len(log.errors) == 1 })
	assert.Empty(t, index.upserts)
}
