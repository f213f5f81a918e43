package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/tenant-stock-api/internal/domain"
	"github.com/jhoicas/tenant-stock-api/internal/domain/entity"
	"github.com/jhoicas/tenant-stock-api/internal/domain/repository"
	"github.com/jhoicas/tenant-stock-api/internal/domain/schema"
)

var _ repository.InventoryItemRepository = (*InventoryItemRepo)(nil)

// itemColumn mapea una columna de inventory_items al campo de la entidad.
type itemColumn struct {
	name     string
	optional func(schema.ItemColumns) bool // nil = columna obligatoria
	target   func(*entity.InventoryItem) any
	value    func(*entity.InventoryItem) any
}

var itemColumns = []itemColumn{
	{name: "id", target: func(i *entity.InventoryItem) any { return &i.ID }, value: func(i *entity.InventoryItem) any { return i.ID }},
	{name: "business_id", target: func(i *entity.InventoryItem) any { return &i.BusinessID }, value: func(i *entity.InventoryItem) any { return i.BusinessID }},
	{name: "identifier", target: func(i *entity.InventoryItem) any { return &i.Identifier }, value: func(i *entity.InventoryItem) any { return i.Identifier }},
	{name: entity.FieldProduct, target: func(i *entity.InventoryItem) any { return &i.ProductID }, value: func(i *entity.InventoryItem) any { return i.ProductID }},
	{name: entity.FieldLocation, target: func(i *entity.InventoryItem) any { return &i.LocationID }, value: func(i *entity.InventoryItem) any { return i.LocationID }},
	{
		name:     entity.FieldReceivedLocation,
		optional: func(c schema.ItemColumns) bool { return c.ReceivedLocation },
		target:   func(i *entity.InventoryItem) any { return &i.ReceivedLocationID },
		value:    func(i *entity.InventoryItem) any { return i.ReceivedLocationID },
	},
	{
		name:     entity.FieldSoldLocation,
		optional: func(c schema.ItemColumns) bool { return c.SoldLocation },
		target:   func(i *entity.InventoryItem) any { return &i.SoldLocationID },
		value:    func(i *entity.InventoryItem) any { return i.SoldLocationID },
	},
	{name: entity.FieldStatus, target: func(i *entity.InventoryItem) any { return &i.Status }, value: func(i *entity.InventoryItem) any { return i.Status }},
	{name: entity.FieldOrderPrice, target: func(i *entity.InventoryItem) any { return &i.OrderPrice }, value: func(i *entity.InventoryItem) any { return i.OrderPrice }},
	{
		name:     entity.FieldSellingPrice,
		optional: func(c schema.ItemColumns) bool { return c.SellingPrice },
		target:   func(i *entity.InventoryItem) any { return &i.SellingPrice },
		value:    func(i *entity.InventoryItem) any { return i.SellingPrice },
	},
	{
		name:     entity.FieldAssignedAgent,
		optional: func(c schema.ItemColumns) bool { return c.AssignedAgent },
		target:   func(i *entity.InventoryItem) any { return &i.AssignedAgentID },
		value:    func(i *entity.InventoryItem) any { return i.AssignedAgentID },
	},
	{
		name:     entity.FieldQuantity,
		optional: func(c schema.ItemColumns) bool { return c.Quantity },
		target:   func(i *entity.InventoryItem) any { return &i.Quantity },
		value:    func(i *entity.InventoryItem) any { return i.Quantity },
	},
	{name: entity.FieldSoldAt, target: func(i *entity.InventoryItem) any { return &i.SoldAt }, value: func(i *entity.InventoryItem) any { return i.SoldAt }},
	{name: entity.FieldIsActive, target: func(i *entity.InventoryItem) any { return &i.IsActive }, value: func(i *entity.InventoryItem) any { return i.IsActive }},
	{name: entity.FieldReceivedAt, target: func(i *entity.InventoryItem) any { return &i.ReceivedAt }, value: func(i *entity.InventoryItem) any { return i.ReceivedAt }},
	{name: "created_at", target: func(i *entity.InventoryItem) any { return &i.CreatedAt }, value: func(i *entity.InventoryItem) any { return i.CreatedAt }},
	{name: "updated_at", target: func(i *entity.InventoryItem) any { return &i.UpdatedAt }, value: func(i *entity.InventoryItem) any { return i.UpdatedAt }},
}

// InventoryItemRepo implementación de InventoryItemRepository sobre PostgreSQL (usable con pool o tx).
// Solo lee y escribe las columnas opcionales que existen físicamente.
type InventoryItemRepo struct {
	q    Querier
	cols []itemColumn
}

// NewInventoryItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryItemRepository(q Querier, caps schema.ItemColumns) *InventoryItemRepo {
	cols := make([]itemColumn, 0, len(itemColumns))
	for _, c := range itemColumns {
		if c.optional == nil || c.optional(caps) {
			cols = append(cols, c)
		}
	}
	return &InventoryItemRepo{q: q, cols: cols}
}

func (r *InventoryItemRepo) selectList() string {
	names := make([]string, len(r.cols))
	for i, c := range r.cols {
		names[i] = c.name
	}
	return strings.Join(names, ", ")
}

func (r *InventoryItemRepo) scan(row pgx.Row) (*entity.InventoryItem, error) {
	var item entity.InventoryItem
	targets := make([]any, len(r.cols))
	for i, c := range r.cols {
		targets[i] = c.target(&item)
	}
	if err := row.Scan(targets...); err != nil {
		return nil, err
	}
	return &item, nil
}

// GetByIdentifier obtiene un ítem del negocio por identificador canónico.
func (r *InventoryItemRepo) GetByIdentifier(ctx context.Context, businessID, identifier string) (*entity.InventoryItem, error) {
	query := `SELECT ` + r.selectList() + ` FROM inventory_items WHERE business_id = $1 AND identifier = $2`
	item, err := r.scan(r.q.QueryRow(ctx, query, businessID, identifier))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

// GetForUpdate obtiene el ítem y bloquea la fila (SELECT FOR UPDATE [NOWAIT]).
func (r *InventoryItemRepo) GetForUpdate(ctx context.Context, businessID, identifier string, nowait bool) (*entity.InventoryItem, error) {
	query := `SELECT ` + r.selectList() + ` FROM inventory_items WHERE business_id = $1 AND identifier = $2 FOR UPDATE`
	if nowait {
		query += ` NOWAIT`
	}
	item, err := r.scan(r.q.QueryRow(ctx, query, businessID, identifier))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		if isLockNotAvailable(err) {
			return nil, domain.ErrTransientLock
		}
		return nil, fmt.Errorf("get item for update: %w", err)
	}
	return item, nil
}

// Create inserta el ítem. (business_id, identifier) duplicado -> domain.ErrDuplicate.
func (r *InventoryItemRepo) Create(ctx context.Context, item *entity.InventoryItem) error {
	names := make([]string, len(r.cols))
	placeholders := make([]string, len(r.cols))
	args := make([]any, len(r.cols))
	for i, c := range r.cols {
		names[i] = c.name
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = c.value(item)
	}
	query := `INSERT INTO inventory_items (` + strings.Join(names, ", ") + `) VALUES (` + strings.Join(placeholders, ", ") + `)`
	if _, err := r.q.Exec(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

// UpdateFields escribe solo las columnas indicadas (las inexistentes se ignoran) y updated_at.
func (r *InventoryItemRepo) UpdateFields(ctx context.Context, item *entity.InventoryItem, fields []string) error {
	var (
		sets []string
		args []any
	)
	for _, f := range fields {
		c, ok := r.column(f)
		if !ok {
			continue
		}
		args = append(args, c.value(item))
		sets = append(sets, fmt.Sprintf("%s = $%d", c.name, len(args)))
	}
	if len(sets) == 0 {
		return nil
	}
	sets = append(sets, "updated_at = now()")
	args = append(args, item.ID, item.BusinessID)
	query := fmt.Sprintf(`UPDATE inventory_items SET %s WHERE id = $%d AND business_id = $%d`,
		strings.Join(sets, ", "), len(args)-1, len(args))
	tag, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// column solo columnas mutables presentes.
func (r *InventoryItemRepo) column(field string) (itemColumn, bool) {
	switch field {
	case "id", "business_id", "identifier", "created_at", "updated_at":
		return itemColumn{}, false
	}
	for _, c := range r.cols {
		if c.name == field {
			return c, true
		}
	}
	return itemColumn{}, false
}
