// Package notify posts Slack alerts for high-priority notices. It listens on
// the event bus rather than hooking the API layer, so every write path
// (entity routes, database admin routes) triggers the same notification.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/slack-go/slack"

	"github.com/evemind/evemind/internal/events"
	"github.com/evemind/evemind/internal/store"
)

// MessagePoster is the slice of the Slack client the notifier needs.
type MessagePoster interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

// SlackNotifier watches aviso creations and posts the high-priority ones to
// a Slack channel.
type SlackNotifier struct {
	client  MessagePoster
	channel string
	bus     *events.Bus
}

// NewSlackNotifier creates a notifier posting to the given channel.
func NewSlackNotifier(client MessagePoster, channel string, bus *events.Bus) *SlackNotifier {
	return &SlackNotifier{client: client, channel: channel, bus: bus}
}

// Run consumes aviso events until the context is done. Meant to be launched
// as a goroutine from the composition root.
func (n *SlackNotifier) Run(ctx context.Context) {
	messages, cleanup := n.bus.Subscribe(ctx, store.TableTopic("avisos"))
	defer cleanup()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			n.handle(ctx, msg)
		}
	}
}

func (n *SlackNotifier) handle(ctx context.Context, payload []byte) {
	var ev store.Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		log.Warn().Err(err).Msg("notify: bad event payload")
		return
	}

	if ev.Acao != store.ActionCreate || ev.Registro == nil {
		return
	}
	if prioridade, _ := ev.Registro["prioridade"].(string); prioridade != "alta" {
		return
	}

	titulo, _ := ev.Registro["titulo"].(string)
	text := fmt.Sprintf(":rotating_light: Novo aviso de prioridade alta: *%s* (#%d)", titulo, ev.RegistroID)

	if _, _, err := n.client.PostMessageContext(ctx, n.channel, slack.MsgOptionText(text, false)); err != nil {
		log.Warn().Err(err).Int("aviso", ev.RegistroID).Msg("notify: slack post failed")
		return
	}
	log.Info().Int("aviso", ev.RegistroID).Msg("notify: slack alert sent")
}
