package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del ciclo de vida de un ítem. SOLD es terminal.
const (
	ItemStatusInStock = "IN_STOCK"
	ItemStatusSold    = "SOLD"
)

// Columnas mutables de inventory_items (nombres usados en UpdateFields y en los diffs).
const (
	FieldStatus           = "status"
	FieldSoldAt           = "sold_at"
	FieldSellingPrice     = "selling_price"
	FieldLocation         = "location_id"
	FieldSoldLocation     = "sold_location_id"
	FieldQuantity         = "quantity"
	FieldIsActive         = "is_active"
	FieldProduct          = "product_id"
	FieldOrderPrice       = "order_price"
	FieldReceivedAt       = "received_at"
	FieldAssignedAgent    = "assigned_agent_id"
	FieldReceivedLocation = "received_location_id"
)

// InventoryItem unidad física identificada (p. ej. IMEI) dentro de un negocio.
// Invariantes: Status == SOLD ⇔ SoldAt != nil; (BusinessID, Identifier) único;
// BusinessID no cambia tras la creación.
type InventoryItem struct {
	ID                 string
	BusinessID         string
	Identifier         string // canónico, 15 dígitos
	ProductID          string
	LocationID         string  // ubicación actual
	ReceivedLocationID *string // ubicación original de recepción
	SoldLocationID     *string
	Status             string
	OrderPrice         decimal.Decimal
	SellingPrice       *decimal.Decimal // nil hasta la venta
	AssignedAgentID    *string
	Quantity           *int // nil = cantidad no rastreada
	SoldAt             *time.Time
	IsActive           bool
	ReceivedAt         time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// IsSold indica si el ítem está en el estado terminal.
func (i *InventoryItem) IsSold() bool {
	return i.Status == ItemStatusSold
}

// Consistent verifica el invariante status/sold_at.
func (i *InventoryItem) Consistent() bool {
	switch i.Status {
	case ItemStatusSold:
		return i.SoldAt != nil
	case ItemStatusInStock:
		return i.SoldAt == nil
	}
	return false
}

// Clone copia profunda; los punteros no se comparten con el original.
func (i *InventoryItem) Clone() *InventoryItem {
	if i == nil {
		return nil
	}
	c := *i
	c.ReceivedLocationID = cloneString(i.ReceivedLocationID)
	c.SoldLocationID = cloneString(i.SoldLocationID)
	c.AssignedAgentID = cloneString(i.AssignedAgentID)
	if i.SellingPrice != nil {
		p := *i.SellingPrice
		c.SellingPrice = &p
	}
	if i.Quantity != nil {
		q := *i.Quantity
		c.Quantity = &q
	}
	if i.SoldAt != nil {
		t := *i.SoldAt
		c.SoldAt = &t
	}
	return &c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
