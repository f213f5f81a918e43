package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale registro histórico de una venta: un ítem, un agente, un precio, una ubicación.
// Se crea exactamente una vez por evento de venta.
type Sale struct {
	ID            string
	BusinessID    string
	ItemID        string
	AgentID       string
	LocationID    string
	Price         decimal.Decimal
	CommissionPct *decimal.Decimal // 0..100; nil = usar el porcentaje configurado
	SoldAt        time.Time
	CreatedAt     time.Time
}
