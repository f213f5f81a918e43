package inventory

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Tipos de evento publicados tras el commit.
const (
	EventItemSold      = "item.sold"
	EventStockReceived = "stock.received"
)

// Event notificación de un cambio de ciclo de vida.
type Event struct {
	Type       string           `json:"type"`
	BusinessID string           `json:"business_id"`
	ItemID     string           `json:"item_id"`
	Identifier string           `json:"identifier"`
	ActorID    string           `json:"actor_id"`
	LocationID string           `json:"location_id,omitempty"`
	SaleID     string           `json:"sale_id,omitempty"`
	Price      *decimal.Decimal `json:"price,omitempty"`
	At         time.Time        `json:"at"`
}

// Notifier subsistema de notificaciones. Los fallos no afectan la operación.
type Notifier interface {
	Publish(ctx context.Context, ev Event) error
}

// NopNotifier descarta los eventos.
type NopNotifier struct{}

func (NopNotifier) Publish(context.Context, Event) error { return nil }

// LogNotifier escribe los eventos en el log (modo memoria sin Redis).
type LogNotifier struct {
	log zerolog.Logger
}

// NewLogNotifier construye el notificador.
func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Publish(_ context.Context, ev Event) error {
	n.log.Info().
		Str("event", ev.Type).
		Str("business_id", ev.BusinessID).
		Str("identifier", ev.Identifier).
		Str("sale_id", ev.SaleID).
		Msg("evento de inventario")
	return nil
}
