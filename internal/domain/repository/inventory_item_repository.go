package repository

import (
	"context"

	"github.com/jhoicas/tenant-stock-api/internal/domain/entity"
)

// InventoryItemRepository puerto de ítems de inventario. Todas las consultas van filtradas
// por negocio; no existe búsqueda global por identificador.
type InventoryItemRepository interface {
	GetByIdentifier(ctx context.Context, businessID, identifier string) (*entity.InventoryItem, error)
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE). Con nowait no espera: si la fila
	// está tomada devuelve domain.ErrTransientLock. Debe usarse dentro de una transacción.
	GetForUpdate(ctx context.Context, businessID, identifier string, nowait bool) (*entity.InventoryItem, error)
	// Create inserta; devuelve domain.ErrDuplicate si (business, identifier) ya existe.
	Create(ctx context.Context, item *entity.InventoryItem) error
	// UpdateFields escribe solo las columnas indicadas.
	UpdateFields(ctx context.Context, item *entity.InventoryItem, fields []string) error
}
