package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

const (
	subjectPersist = "notes.persist"
	subjectUpdate  = "notes.update"
	subjectDelete  = "notes.delete"
)

// NatsStore talks to the authoritative note store over NATS request/reply.
type NatsStore struct {
	nc      *nats.Conn
	timeout time.Duration
}

func NewNatsStore(url string) (*NatsStore, error) {
	nc, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NatsStore{nc: nc, timeout: 10 * time.Second}, nil
}

type persistReply struct {
	RemoteId string `json:"remote_id"`
	Error    string `json:"error,omitempty"`
}

func (s *NatsStore) Persist(ctx context.Context, note NoteSnapshot) (string, error) {
	data, err := json.Marshal(note)
	if err != nil {
		return "", err
	}

	msg, err := s.request(ctx, subjectPersist, data)
	if err != nil {
		return "", err
	}

	var reply persistReply
	if err := json.Unmarshal(msg.Data, &reply); err != nil {
		return "", fmt.Errorf("malformed persist reply: %w", err)
	}
	if reply.Error != "" {
		return "", fmt.Errorf("remote store rejected persist: %s", reply.Error)
	}
	if reply.RemoteId == "" {
		return "", fmt.Errorf("remote store returned no id")
	}
	return reply.RemoteId, nil
}

func (s *NatsStore) Update(ctx context.Context, note NoteSnapshot) error {
	data, err := json.Marshal(note)
	if err != nil {
		return err
	}
	_, err = s.request(ctx, subjectUpdate, data)
	return err
}

func (s *NatsStore) Delete(ctx context.Context, remoteId string) error {
	data, err := json.Marshal(map[string]string{"remote_id": remoteId})
	if err != nil {
		return err
	}
	_, err = s.request(ctx, subjectDelete, data)
	return err
}

func (s *NatsStore) request(ctx context.Context, subject string, data []byte) (*nats.Msg, error) {
	reqCtx := ctx
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	msg, err := s.nc.RequestWithContext(reqCtx, subject, data)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", subject, err)
	}
	return msg, nil
}

func (s *NatsStore) Close() {
	if s.nc != nil {
		s.nc.Close()
	}
}
