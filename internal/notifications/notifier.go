// Package notifications fans application events out to connected clients:
// Redis pub/sub carries them between processes, a WebSocket hub delivers
// them to the UI so it can re-render when the view model changes.
package notifications

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

const feedChannel = "focusgram:events"

// Event types pushed to clients.
const (
	EventPostCreated  = "post_created"
	EventPostUpdated  = "post_updated"
	EventUserUpdated  = "user_updated"
	EventIdentity     = "identity_changed"
	EventFeedReloaded = "feed_reloaded"
)

// Event tells clients which part of the view model went stale.
type Event struct {
	Type string `json:"type"`
	ID   string `json:"id,omitempty"`
}

// Notifier publishes events into Redis channels. A nil Redis client makes
// every publish a no-op.
type Notifier struct {
	rdb *redis.Client
}

func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// Publish sends an event to the shared event channel.
func (n *Notifier) Publish(ctx context.Context, event Event) error {
	if n.rdb == nil {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return n.rdb.Publish(ctx, feedChannel, payload).Err()
}

// StartSubscriber subscribes to the event channel and calls onEvent for each
// incoming event until ctx is done.
func (n *Notifier) StartSubscriber(ctx context.Context, onEvent func(Event)) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.Subscribe(ctx, feedChannel)
	ch := sub.Channel()

	go func() {
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var event Event
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					continue
				}
				onEvent(event)
			}
		}
	}()

	return nil
}
