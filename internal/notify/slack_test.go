package notify

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evemind/evemind/internal/events"
	"github.com/evemind/evemind/internal/store"
)

type fakePoster struct {
	mu       sync.Mutex
	channels []string
	count    int
}

func (f *fakePoster) PostMessageContext(_ context.Context, channelID string, _ ...slack.MsgOption) (string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.channels = append(f.channels, channelID)
	f.count++
	return channelID, "ts", nil
}

func (f *fakePoster) posted() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.count
}

func publishAviso(t *testing.T, bus *events.Bus, ev store.Event) {
	t.Helper()

	payload, err := json.Marshal(ev)
	require.NoError(t, err)
	bus.Publish(store.TableTopic("avisos"), payload)
}

func startNotifier(t *testing.T, poster *fakePoster) *events.Bus {
	t.Helper()

	bus := events.NewBus()
	notifier := NewSlackNotifier(poster, "#sindico", bus)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go notifier.Run(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for bus.Subscribers(store.TableTopic("avisos")) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("notifier did not subscribe")
		}
		time.Sleep(5 * time.Millisecond)
	}
	return bus
}

func TestHighPriorityAvisoIsPosted(t *testing.T) {
	poster := &fakePoster{}
	bus := startNotifier(t, poster)

	publishAviso(t, bus, store.Event{
		Acao:       store.ActionCreate,
		Tabela:     "avisos",
		RegistroID: 2,
		Registro:   store.Record{"titulo": "Falta de água", "prioridade": "alta"},
	})

	deadline := time.Now().Add(2 * time.Second)
	for poster.posted() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("no slack message was posted")
		}
		time.Sleep(5 * time.Millisecond)
	}

	poster.mu.Lock()
	defer poster.mu.Unlock()
	assert.Equal(t, []string{"#sindico"}, poster.channels)
}

func TestIgnoredEvents(t *testing.T) {
	tests := []struct {
		name string
		ev   store.Event
	}{
		{
			name: "low priority",
			ev: store.Event{
				Acao:     store.ActionCreate,
				Tabela:   "avisos",
				Registro: store.Record{"titulo": "Info", "prioridade": "baixa"},
			},
		},
		{
			name: "update of a high-priority aviso",
			ev: store.Event{
				Acao:     store.ActionUpdate,
				Tabela:   "avisos",
				Registro: store.Record{"titulo": "Obra", "prioridade": "alta"},
			},
		},
		{
			name: "delete carries no record",
			ev: store.Event{
				Acao:   store.ActionDelete,
				Tabela: "avisos",
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			poster := &fakePoster{}
			bus := startNotifier(t, poster)

			publishAviso(t, bus, tc.ev)

			// Give the notifier a moment; nothing should arrive.
			time.Sleep(50 * time.Millisecond)
			assert.Equal(t, 0, poster.posted())
		})
	}
}
