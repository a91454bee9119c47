package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishSubscribeRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	n := NewNotifier(rdb)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan Event, 1)
	require.NoError(t, n.StartSubscriber(ctx, func(e Event) {
		received <- e
	}))

	// subscription needs a moment to register before the publish
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, n.Publish(ctx, Event{Type: EventPostCreated, ID: "p1"}))

	select {
	case e := <-received:
		assert.Equal(t, EventPostCreated, e.Type)
		assert.Equal(t, "p1", e.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}
}

func TestPublishWithoutRedisIsNoOp(t *testing.T) {
	n := NewNotifier(nil)
	assert.NoError(t, n.Publish(context.Background(), Event{Type: EventFeedReloaded}))
	assert.NoError(t, n.StartSubscriber(context.Background(), func(Event) {}))
}
