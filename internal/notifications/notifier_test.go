package notifications

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_NilClientIsNoop(t *testing.T) {
	n := NewNotifier(nil)
	assert.NoError(t, n.PublishUser(context.Background(), 1, "payload"))
	assert.NoError(t, n.PublishBroadcast(context.Background(), "payload"))
	assert.NoError(t, n.PublishServerMessage(context.Background(), 1, "payload"))
	assert.NoError(t, n.PublishConversationMessage(context.Background(), 1, "payload"))
}

func TestChannelNames(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "notifications:user:1", UserChannel(1))
	assert.Equal(t, "notifications:user:100", UserChannel(100))
	assert.Equal(t, "chat:conv:5", ConversationChannel(5))
	assert.Equal(t, "chat:server:8", ServerChannel(8))
}

func TestNotifier_PatternSubscriberReceivesUserAndBroadcast(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	n := NewNotifier(rdb)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	channels := make(chan string, 4)
	require.NoError(t, n.StartPatternSubscriber(ctx, func(channel, _ string) {
		channels <- channel
	}))

	require.NoError(t, n.PublishUser(context.Background(), 42, "liked your idea"))
	require.NoError(t, n.PublishBroadcast(context.Background(), "maintenance at noon"))

	got := map[string]bool{}
	for i := 0; i < 2; i++ {
		select {
		case ch := <-channels:
			got[ch] = true
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for published message")
		}
	}
	assert.True(t, got["notifications:user:42"])
	assert.True(t, got["notifications:broadcast"])
}

func TestNotifier_ChatSubscriberStopsOnCancel(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	n := NewNotifier(rdb)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var received int32
	payloads := make(chan string, 2)
	require.NoError(t, n.StartChatSubscriber(ctx, func(_ string, payload string) {
		atomic.AddInt32(&received, 1)
		payloads <- payload
	}))

	require.NoError(t, n.PublishServerMessage(context.Background(), 1, "before-cancel"))
	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&received) >= 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	time.Sleep(20 * time.Millisecond)

	// Drain the pre-cancel message to avoid false positives.
	select {
	case <-payloads:
	default:
	}

	require.NoError(t, n.PublishServerMessage(context.Background(), 1, "after-cancel"))
	assert.Never(t, func() bool {
		select {
		case payload := <-payloads:
			return payload == "after-cancel"
		default:
			return false
		}
	}, 200*time.Millisecond, 10*time.Millisecond)
}

func TestNotifier_TypingIndicatorPayload(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	n := NewNotifier(rdb)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	payloads := make(chan string, 1)
	require.NoError(t, n.StartChatSubscriber(ctx, func(channel, payload string) {
		if channel == "typing:conv:3" {
			payloads <- payload
		}
	}))

	require.NoError(t, n.PublishTypingIndicator(context.Background(), 3, 9, "trader_joe", true))

	select {
	case payload := <-payloads:
		assert.Contains(t, payload, `"is_typing":true`)
		assert.Contains(t, payload, `"trader_joe"`)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for typing indicator")
	}
}
