package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch <-chan []byte) []byte {
	t.Helper()

	select {
	case payload, ok := <-ch:
		require.True(t, ok, "channel closed before a payload arrived")
		return payload
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for payload")
		return nil
	}
}

func TestPublishReachesSubscribers(t *testing.T) {
	bus := NewBus()
	ctx := context.Background()

	ch1, cleanup1 := bus.Subscribe(ctx, "table:avisos")
	defer cleanup1()
	ch2, cleanup2 := bus.Subscribe(ctx, "table:avisos")
	defer cleanup2()

	bus.Publish("table:avisos", []byte("hello"))

	assert.Equal(t, []byte("hello"), receive(t, ch1))
	assert.Equal(t, []byte("hello"), receive(t, ch2))
}

func TestPublishIsTopicScoped(t *testing.T) {
	bus := NewBus()

	ch, cleanup := bus.Subscribe(context.Background(), "table:avisos")
	defer cleanup()

	bus.Publish("table:reservas", []byte("elsewhere"))
	bus.Publish("table:avisos", []byte("here"))

	assert.Equal(t, []byte("here"), receive(t, ch))
	assert.Empty(t, ch)
}

func TestPublishWithoutSubscribersIsNoop(t *testing.T) {
	bus := NewBus()
	assert.NotPanics(t, func() {
		bus.Publish("table:avisos", []byte("nobody"))
	})
}

func TestCleanupClosesChannelAndUnregisters(t *testing.T) {
	bus := NewBus()

	ch, cleanup := bus.Subscribe(context.Background(), "t")
	require.Equal(t, 1, bus.Subscribers("t"))

	cleanup()
	cleanup() // idempotent

	_, ok := <-ch
	assert.False(t, ok, "channel should be closed")
	assert.Equal(t, 0, bus.Subscribers("t"))

	// Publishing after cleanup must not panic on the closed channel.
	assert.NotPanics(t, func() {
		bus.Publish("t", []byte("late"))
	})
}

func TestContextCancelUnsubscribes(t *testing.T) {
	bus := NewBus()

	ctx, cancel := context.WithCancel(context.Background())
	ch, _ := bus.Subscribe(ctx, "t")
	require.Equal(t, 1, bus.Subscribers("t"))

	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok, "channel should be closed after cancel")
	case <-time.After(time.Second):
		t.Fatal("channel not closed after context cancel")
	}
	assert.Equal(t, 0, bus.Subscribers("t"))
}

func TestSlowSubscriberDoesNotBlockPublisher(t *testing.T) {
	bus := NewBus()

	ch, cleanup := bus.Subscribe(context.Background(), "t")
	defer cleanup()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < subscriberBuffer*2; i++ {
			bus.Publish("t", []byte("x"))
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publisher blocked on a full subscriber buffer")
	}
	assert.Len(t, ch, subscriberBuffer, "overflow payloads are dropped")
}
