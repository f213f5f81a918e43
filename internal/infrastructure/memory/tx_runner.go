package memory

import (
	"context"

	"github.com/jhoicas/tenant-stock-api/internal/application/inventory"
	"github.com/jhoicas/tenant-stock-api/internal/domain"
	"github.com/jhoicas/tenant-stock-api/internal/domain/entity"
	"github.com/jhoicas/tenant-stock-api/internal/domain/repository"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner unidad de trabajo en memoria: bloqueos por fila tomados en GetForUpdate,
// escrituras acumuladas y aplicadas juntas en el commit. Si fn falla no se aplica nada.
type TxRunner struct {
	s *Store
}

// NewTxRunner construye el runner sobre el store.
func NewTxRunner(s *Store) *TxRunner {
	return &TxRunner{s: s}
}

// Run ejecuta fn con repos atados a la transacción y hace commit o descarta.
func (r *TxRunner) Run(ctx context.Context, fn func(
	items repository.InventoryItemRepository,
	sales repository.SaleRepository,
) error) error {
	tx := &memTx{s: r.s, view: make(map[string]*entity.InventoryItem), held: make(map[string]bool)}
	defer tx.release()

	if err := fn(&txItemRepo{tx: tx}, &txSaleRepo{tx: tx}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return tx.commit()
}

type itemUpdate struct {
	item   *entity.InventoryItem
	fields []string
}

type memTx struct {
	s       *Store
	held    map[string]bool
	view    map[string]*entity.InventoryItem // business|identifier -> versión de la tx
	creates []*entity.InventoryItem
	updates []itemUpdate
	sales   []*entity.Sale
}

func (tx *memTx) lock(ctx context.Context, k string, nowait bool) error {
	if tx.held[k] {
		return nil
	}
	if err := tx.s.locks.acquire(ctx, k, nowait); err != nil {
		return err
	}
	tx.held[k] = true
	return nil
}

func (tx *memTx) release() {
	for k := range tx.held {
		tx.s.locks.release(k)
	}
	tx.held = nil
}

func (tx *memTx) commit() error {
	s := tx.s
	s.mu.Lock()
	defer s.mu.Unlock()

	// Validar todo antes de aplicar para que el commit sea todo o nada.
	seen := make(map[string]bool)
	for _, it := range tx.creates {
		k := key(it.BusinessID, it.Identifier)
		if _, ok := s.itemKeys[k]; ok || seen[k] {
			return domain.ErrDuplicate
		}
		seen[k] = true
	}
	for _, sale := range tx.sales {
		for _, existing := range s.sales {
			if existing.ID == sale.ID || (existing.ItemID == sale.ItemID && existing.SoldAt.Equal(sale.SoldAt)) {
				return domain.ErrDuplicate
			}
		}
	}

	for _, it := range tx.creates {
		if err := s.insertItem(it); err != nil {
			return err
		}
	}
	for _, u := range tx.updates {
		if err := s.updateItem(u.item, u.fields); err != nil {
			return err
		}
	}
	for _, sale := range tx.sales {
		c := *sale
		s.sales = append(s.sales, &c)
	}
	return nil
}

type txItemRepo struct{ tx *memTx }

func (r *txItemRepo) GetByIdentifier(_ context.Context, businessID, identifier string) (*entity.InventoryItem, error) {
	if v, ok := r.tx.view[key(businessID, identifier)]; ok {
		return v.Clone(), nil
	}
	r.tx.s.mu.RLock()
	defer r.tx.s.mu.RUnlock()
	return r.tx.s.itemByKey(businessID, identifier), nil
}

func (r *txItemRepo) GetForUpdate(ctx context.Context, businessID, identifier string, nowait bool) (*entity.InventoryItem, error) {
	if err := r.tx.lock(ctx, key(businessID, identifier), nowait); err != nil {
		return nil, err
	}
	return r.GetByIdentifier(ctx, businessID, identifier)
}

func (r *txItemRepo) Create(_ context.Context, item *entity.InventoryItem) error {
	k := key(item.BusinessID, item.Identifier)
	if _, ok := r.tx.view[k]; ok {
		return domain.ErrDuplicate
	}
	r.tx.s.mu.RLock()
	_, exists := r.tx.s.itemKeys[k]
	r.tx.s.mu.RUnlock()
	if exists {
		return domain.ErrDuplicate
	}
	c := item.Clone()
	r.tx.creates = append(r.tx.creates, c)
	r.tx.view[k] = c
	return nil
}

func (r *txItemRepo) UpdateFields(_ context.Context, item *entity.InventoryItem, fields []string) error {
	k := key(item.BusinessID, item.Identifier)
	if created, ok := r.tx.view[k]; ok && r.tx.isCreated(created) {
		applyFields(created, item, fields)
		return nil
	}
	r.tx.updates = append(r.tx.updates, itemUpdate{item: item.Clone(), fields: append([]string(nil), fields...)})
	r.tx.view[k] = item.Clone()
	return nil
}

func (tx *memTx) isCreated(it *entity.InventoryItem) bool {
	for _, c := range tx.creates {
		if c == it {
			return true
		}
	}
	return false
}

type txSaleRepo struct{ tx *memTx }

func (r *txSaleRepo) Create(_ context.Context, sale *entity.Sale) error {
	for _, pending := range r.tx.sales {
		if pending.ID == sale.ID {
			return domain.ErrDuplicate
		}
	}
	c := *sale
	r.tx.sales = append(r.tx.sales, &c)
	return nil
}

func (r *txSaleRepo) LatestByItem(_ context.Context, itemID string) (*entity.Sale, error) {
	for i := len(r.tx.sales) - 1; i >= 0; i-- {
		if r.tx.sales[i].ItemID == itemID {
			c := *r.tx.sales[i]
			return &c, nil
		}
	}
	r.tx.s.mu.RLock()
	defer r.tx.s.mu.RUnlock()
	return r.tx.s.latestSale(itemID), nil
}
