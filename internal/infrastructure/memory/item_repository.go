package memory

import (
	"context"
	"time"

	"github.com/jhoicas/tenant-stock-api/internal/domain"
	"github.com/jhoicas/tenant-stock-api/internal/domain/entity"
	"github.com/jhoicas/tenant-stock-api/internal/domain/repository"
)

var (
	_ repository.InventoryItemRepository = (*ItemRepo)(nil)
	_ repository.SaleRepository          = (*SaleRepo)(nil)
)

// ItemRepo acceso fuera de transacción: GetForUpdate no bloquea aquí; el bloqueo
// solo existe dentro de TxRunner.Run.
type ItemRepo struct{ s *Store }

// NewInventoryItemRepository construye el adaptador.
func NewInventoryItemRepository(s *Store) *ItemRepo { return &ItemRepo{s: s} }

func (r *ItemRepo) GetByIdentifier(_ context.Context, businessID, identifier string) (*entity.InventoryItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.itemByKey(businessID, identifier), nil
}

func (r *ItemRepo) GetForUpdate(ctx context.Context, businessID, identifier string, _ bool) (*entity.InventoryItem, error) {
	return r.GetByIdentifier(ctx, businessID, identifier)
}

func (r *ItemRepo) Create(_ context.Context, item *entity.InventoryItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.insertItem(item)
}

func (r *ItemRepo) UpdateFields(_ context.Context, item *entity.InventoryItem, fields []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.updateItem(item, fields)
}

func (s *Store) itemByKey(businessID, identifier string) *entity.InventoryItem {
	id, ok := s.itemKeys[key(businessID, identifier)]
	if !ok {
		return nil
	}
	return s.items[id].Clone()
}

func (s *Store) updateItem(item *entity.InventoryItem, fields []string) error {
	stored, ok := s.items[item.ID]
	if !ok || stored.BusinessID != item.BusinessID {
		return domain.ErrNotFound
	}
	applyFields(stored, item, fields)
	stored.UpdatedAt = time.Now()
	return nil
}

// applyFields copia de src a dst solo las columnas nombradas.
func applyFields(dst, src *entity.InventoryItem, fields []string) {
	c := src.Clone()
	for _, f := range fields {
		switch f {
		case entity.FieldStatus:
			dst.Status = c.Status
		case entity.FieldSoldAt:
			dst.SoldAt = c.SoldAt
		case entity.FieldSellingPrice:
			dst.SellingPrice = c.SellingPrice
		case entity.FieldLocation:
			dst.LocationID = c.LocationID
		case entity.FieldSoldLocation:
			dst.SoldLocationID = c.SoldLocationID
		case entity.FieldReceivedLocation:
			dst.ReceivedLocationID = c.ReceivedLocationID
		case entity.FieldQuantity:
			dst.Quantity = c.Quantity
		case entity.FieldIsActive:
			dst.IsActive = c.IsActive
		case entity.FieldProduct:
			dst.ProductID = c.ProductID
		case entity.FieldOrderPrice:
			dst.OrderPrice = c.OrderPrice
		case entity.FieldReceivedAt:
			dst.ReceivedAt = c.ReceivedAt
		case entity.FieldAssignedAgent:
			dst.AssignedAgentID = c.AssignedAgentID
		}
	}
}

// SaleRepo ventas fuera de transacción.
type SaleRepo struct{ s *Store }

// NewSaleRepository construye el adaptador.
func NewSaleRepository(s *Store) *SaleRepo { return &SaleRepo{s: s} }

func (r *SaleRepo) Create(_ context.Context, sale *entity.Sale) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.insertSale(sale)
}

func (r *SaleRepo) LatestByItem(_ context.Context, itemID string) (*entity.Sale, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.latestSale(itemID), nil
}

func (s *Store) insertSale(sale *entity.Sale) error {
	for _, existing := range s.sales {
		if existing.ID == sale.ID || (existing.ItemID == sale.ItemID && existing.SoldAt.Equal(sale.SoldAt)) {
			return domain.ErrDuplicate
		}
	}
	c := *sale
	s.sales = append(s.sales, &c)
	return nil
}

func (s *Store) latestSale(itemID string) *entity.Sale {
	for i := len(s.sales) - 1; i >= 0; i-- {
		if s.sales[i].ItemID == itemID {
			c := *s.sales[i]
			return &c
		}
	}
	return nil
}
