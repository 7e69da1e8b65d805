// Package events provides the in-process pub/sub bus carrying record-change
// notifications from the store to websocket clients and notifiers. The state
// of the system lives in one process, so delivery is over channels rather
// than an external broker.
package events

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

const subscriberBuffer = 64

type subscriber struct {
	ch   chan []byte
	done chan struct{}
}

// Bus fans out published payloads to all subscribers of a topic. Slow
// subscribers are skipped rather than blocking the publisher.
type Bus struct {
	mu     sync.RWMutex
	topics map[string]map[uuid.UUID]*subscriber
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{topics: make(map[string]map[uuid.UUID]*subscriber)}
}

// Publish delivers payload to every subscriber of topic.
func (b *Bus) Publish(topic string, payload []byte) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.topics[topic] {
		select {
		case sub.ch <- payload:
		default:
			// Subscriber buffer full; drop rather than block.
		}
	}
}

// Subscribe registers for a topic. The returned channel is closed when the
// context is done or cleanup is called; cleanup is safe to call more than
// once.
func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan []byte, func()) {
	sub := &subscriber{
		ch:   make(chan []byte, subscriberBuffer),
		done: make(chan struct{}),
	}
	id := uuid.New()

	b.mu.Lock()
	if b.topics[topic] == nil {
		b.topics[topic] = make(map[uuid.UUID]*subscriber)
	}
	b.topics[topic][id] = sub
	b.mu.Unlock()

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.topics[topic], id)
			if len(b.topics[topic]) == 0 {
				delete(b.topics, topic)
			}
			b.mu.Unlock()
			close(sub.done)
			close(sub.ch)
		})
	}

	go func() {
		select {
		case <-ctx.Done():
			cleanup()
		case <-sub.done:
		}
	}()

	return sub.ch, cleanup
}

// Subscribers returns the current subscriber count for a topic.
func (b *Bus) Subscribers(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.topics[topic])
}
