// Package ws streams record-change events to websocket clients, one
// connection per collection (or the firehose for all of them).
package ws

import (
	"net/http"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/evemind/evemind/internal/events"
	"github.com/evemind/evemind/internal/store"
)

// Hub manages WebSocket connections backed by the in-process event bus.
type Hub struct {
	bus    *events.Bus
	tables map[string]bool
}

// NewHub creates a hub serving the given collection names.
func NewHub(bus *events.Bus, tables []string) *Hub {
	known := make(map[string]bool, len(tables))
	for _, t := range tables {
		known[t] = true
	}
	return &Hub{bus: bus, tables: known}
}

// ServeTable streams change events for one collection. Subscribes to the
// bus topic "table:<name>" and forwards payloads until the client or the
// request context goes away.
func (h *Hub) ServeTable(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")
	if !h.tables[table] {
		http.Error(w, "unknown table", http.StatusBadRequest)
		return
	}
	h.serve(w, r, store.TableTopic(table))
}

// ServeAll streams every change event regardless of collection.
func (h *Hub) ServeAll(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, store.FirehoseTopic)
}

func (h *Hub) serve(w http.ResponseWriter, r *http.Request, topic string) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket accept")
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()
	messages, cleanup := h.bus.Subscribe(ctx, topic)
	defer cleanup()

	for {
		select {
		case <-ctx.Done():
			_ = conn.Close(websocket.StatusNormalClosure, "connection closed")
			return
		case msg, ok := <-messages:
			if !ok {
				_ = conn.Close(websocket.StatusNormalClosure, "channel closed")
				return
			}
			if writeErr := conn.Write(ctx, websocket.MessageText, msg); writeErr != nil {
				log.Debug().Err(writeErr).Msg("websocket write")
				return
			}
		}
	}
}
