// Package wallet publica comisiones de venta en el libro de billeteras, una sola vez por venta.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/tenant-stock-api/internal/domain"
	"github.com/jhoicas/tenant-stock-api/internal/domain/entity"
	"github.com/jhoicas/tenant-stock-api/internal/domain/repository"
)

var hundred = decimal.NewFromInt(100)

// CommissionConfig regla por defecto. Pct nil = regla plana (FlatAmount por ítem).
type CommissionConfig struct {
	Pct        *decimal.Decimal
	FlatAmount decimal.Decimal
}

// CommissionPoster post_commission(sale) -> WalletLedgerEntry | NoOp.
type CommissionPoster struct {
	ledger repository.WalletLedgerRepository
	cfg    CommissionConfig
	now    func() time.Time
}

// NewCommissionPoster construye el publicador.
func NewCommissionPoster(ledger repository.WalletLedgerRepository, cfg CommissionConfig) *CommissionPoster {
	return &CommissionPoster{ledger: ledger, cfg: cfg, now: time.Now}
}

// Reference clave de deduplicación derivada de la venta.
func Reference(saleID string) string {
	return "SALE:" + saleID
}

// Amount comisión de la venta: price * pct / 100 (pct de la venta o el configurado),
// o el monto plano si no hay porcentaje. Redondeado a centavos.
func (p *CommissionPoster) Amount(sale *entity.Sale) (decimal.Decimal, error) {
	pct := sale.CommissionPct
	if pct == nil {
		pct = p.cfg.Pct
	}
	if pct == nil {
		return p.cfg.FlatAmount.Round(2), nil
	}
	if pct.IsNegative() || pct.GreaterThan(hundred) {
		return decimal.Zero, fmt.Errorf("%w: porcentaje de comisión fuera de rango: %s", domain.ErrInvalidInput, pct)
	}
	return sale.Price.Mul(*pct).Div(hundred).Round(2), nil
}

// Post crea el movimiento COMMISSION de la venta. Devuelve (nil, nil) si no corresponde
// (monto <= 0) o si ya existe un movimiento con la misma referencia.
func (p *CommissionPoster) Post(ctx context.Context, sale *entity.Sale) (*entity.WalletLedgerEntry, error) {
	if sale == nil || sale.ID == "" || sale.AgentID == "" {
		return nil, domain.ErrInvalidInput
	}
	amount, err := p.Amount(sale)
	if err != nil {
		return nil, err
	}
	if !amount.IsPositive() {
		return nil, nil
	}

	ref := Reference(sale.ID)
	existing, err := p.ledger.GetByReference(ctx, entity.LedgerReasonCommission, ref)
	if err != nil {
		return nil, fmt.Errorf("get ledger entry: %w", err)
	}
	if existing != nil {
		return nil, nil
	}

	now := p.now()
	entry := &entity.WalletLedgerEntry{
		ID:            uuid.New().String(),
		BusinessID:    sale.BusinessID,
		AgentID:       sale.AgentID,
		Amount:        amount,
		Reason:        entity.LedgerReasonCommission,
		Reference:     ref,
		Note:          "Comisión venta " + sale.ItemID,
		EffectiveDate: sale.SoldAt,
		CreatedAt:     now,
	}
	if err := p.ledger.Create(ctx, entry); err != nil {
		// Otro observador ganó la carrera entre la consulta y el insert.
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, nil
		}
		return nil, fmt.Errorf("create ledger entry: %w", err)
	}
	return entry, nil
}
