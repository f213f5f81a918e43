package repository

import (
	"context"

	"github.com/jhoicas/tenant-stock-api/internal/domain/entity"
)

// SaleRepository puerto del subsistema de ventas.
type SaleRepository interface {
	Create(ctx context.Context, sale *entity.Sale) error
	// LatestByItem última venta registrada del ítem o nil.
	LatestByItem(ctx context.Context, itemID string) (*entity.Sale, error)
}
