package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Motivos de movimientos de billetera.
const (
	LedgerReasonCommission = "COMMISSION"
	LedgerReasonAdjustment = "ADJUSTMENT"
)

// WalletLedgerEntry movimiento con signo en la billetera de un agente.
// (Reason, Reference) es único: la referencia es la clave de deduplicación.
type WalletLedgerEntry struct {
	ID            string
	BusinessID    string
	AgentID       string
	Amount        decimal.Decimal
	Reason        string
	Reference     string
	Note          string
	EffectiveDate time.Time
	CreatedAt     time.Time
}
