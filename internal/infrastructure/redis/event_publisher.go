package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/tenant-stock-api/internal/application/inventory"
)

var _ inventory.Notifier = (*EventPublisher)(nil)

// EventPublisher publica los eventos del ciclo de vida en el canal <prefix>:<type>.
// Fire-and-forget: sin suscriptores el mensaje se pierde.
type EventPublisher struct {
	client *redis.Client
	prefix string
}

// NewEventPublisher construye el publicador.
func NewEventPublisher(client *redis.Client, prefix string) *EventPublisher {
	return &EventPublisher{client: client, prefix: prefix}
}

// Channel nombre del canal para un tipo de evento.
func (p *EventPublisher) Channel(eventType string) string {
	return p.prefix + ":" + eventType
}

func (p *EventPublisher) Publish(ctx context.Context, ev inventory.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := p.client.Publish(ctx, p.Channel(ev.Type), payload).Err(); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}
