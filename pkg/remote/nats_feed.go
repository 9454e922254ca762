package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"
)

// NatsFeed subscribes to the note snapshot subject on the NATS bus. The remote
// store publishes the full snapshot of a user's notes on every change to
// notes.snapshot.<ownerId>.
type NatsFeed struct {
	nc  *nats.Conn
	sub *nats.Subscription
}

// NewNatsFeed connects to the NATS bus with the reconnect policy shared by the
// rest of the system.
func NewNatsFeed(url string) (*NatsFeed, error) {
	nc, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NatsFeed{nc: nc}, nil
}

// Subscribe registers a handler for one owner's snapshot stream.
func (f *NatsFeed) Subscribe(ctx context.Context, ownerId string, handler SnapshotHandler) error {
	subject := fmt.Sprintf("notes.snapshot.%s", ownerId)

	sub, err := f.nc.Subscribe(subject, func(msg *nats.Msg) {
		var snapshot Snapshot
		if err := json.Unmarshal(msg.Data, &snapshot); err != nil {
			log.Printf("[ERROR] Failed to unmarshal snapshot on %s: %v", subject, err)
			return
		}
		if err := handler(ctx, snapshot); err != nil {
			log.Printf("[ERROR] Snapshot handler failed for %s: %v", subject, err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", subject, err)
	}

	f.sub = sub
	log.Printf("Subscribed to remote note feed on %s", subject)
	return nil
}

// Close drains the subscription and closes the connection.
func (f *NatsFeed) Close() {
	if f.sub != nil {
		f.sub.Unsubscribe()
	}
	if f.nc != nil {
		f.nc.Close()
	}
}
