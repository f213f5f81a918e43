package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/tenant-stock-api/internal/domain"
	"github.com/jhoicas/tenant-stock-api/internal/domain/entity"
	"github.com/jhoicas/tenant-stock-api/internal/domain/repository"
)

var _ repository.WalletLedgerRepository = (*WalletLedgerRepo)(nil)

// WalletLedgerRepo libro de billeteras; (reason, reference) es único.
type WalletLedgerRepo struct {
	q Querier
}

// NewWalletLedgerRepository construye el adaptador.
func NewWalletLedgerRepository(q Querier) *WalletLedgerRepo {
	return &WalletLedgerRepo{q: q}
}

// GetByReference movimiento con la clave de deduplicación o nil.
func (r *WalletLedgerRepo) GetByReference(ctx context.Context, reason, reference string) (*entity.WalletLedgerEntry, error) {
	query := `
		SELECT id, business_id, agent_id, amount, reason, reference, note, effective_date, created_at
		FROM wallet_ledger_entries WHERE reason = $1 AND reference = $2`
	var e entity.WalletLedgerEntry
	err := r.q.QueryRow(ctx, query, reason, reference).Scan(
		&e.ID, &e.BusinessID, &e.AgentID, &e.Amount, &e.Reason, &e.Reference, &e.Note, &e.EffectiveDate, &e.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get ledger entry: %w", err)
	}
	return &e, nil
}

// Create inserta el movimiento; clave repetida -> domain.ErrDuplicate.
func (r *WalletLedgerRepo) Create(ctx context.Context, e *entity.WalletLedgerEntry) error {
	query := `
		INSERT INTO wallet_ledger_entries (id, business_id, agent_id, amount, reason, reference, note, effective_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		e.ID, e.BusinessID, e.AgentID, e.Amount, e.Reason, e.Reference, e.Note, e.EffectiveDate, e.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}
