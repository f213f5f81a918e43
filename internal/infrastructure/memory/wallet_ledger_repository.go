package memory

import (
	"context"

	"github.com/jhoicas/tenant-stock-api/internal/domain"
	"github.com/jhoicas/tenant-stock-api/internal/domain/entity"
	"github.com/jhoicas/tenant-stock-api/internal/domain/repository"
)

var _ repository.WalletLedgerRepository = (*WalletLedgerRepo)(nil)

// WalletLedgerRepo libro de billeteras con unicidad (reason, reference).
type WalletLedgerRepo struct{ s *Store }

// NewWalletLedgerRepository construye el adaptador.
func NewWalletLedgerRepository(s *Store) *WalletLedgerRepo { return &WalletLedgerRepo{s: s} }

func (r *WalletLedgerRepo) GetByReference(_ context.Context, reason, reference string) (*entity.WalletLedgerEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, e := range r.s.ledger {
		if e.Reason == reason && e.Reference == reference {
			c := *e
			return &c, nil
		}
	}
	return nil, nil
}

func (r *WalletLedgerRepo) Create(_ context.Context, entry *entity.WalletLedgerEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.ledger {
		if e.Reason == entry.Reason && e.Reference == entry.Reference {
			return domain.ErrDuplicate
		}
	}
	c := *entry
	r.s.ledger = append(r.s.ledger, &c)
	return nil
}
