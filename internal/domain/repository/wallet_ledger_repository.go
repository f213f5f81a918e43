package repository

import (
	"context"

	"github.com/jhoicas/tenant-stock-api/internal/domain/entity"
)

// WalletLedgerRepository puerto del subsistema de billeteras.
type WalletLedgerRepository interface {
	GetByReference(ctx context.Context, reason, reference string) (*entity.WalletLedgerEntry, error)
	// Create devuelve domain.ErrDuplicate si (reason, reference) ya existe.
	Create(ctx context.Context, entry *entity.WalletLedgerEntry) error
}
