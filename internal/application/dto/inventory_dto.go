package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReceiveItemRequest body para POST /api/inventory/items.
type ReceiveItemRequest struct {
	Identifier      string          `json:"identifier"`
	ProductID       string          `json:"product_id"`
	LocationID      string          `json:"location_id,omitempty"`
	OrderPrice      decimal.Decimal `json:"order_price"`
	AssignedAgentID *string         `json:"assigned_agent_id,omitempty"`
}

// SellItemRequest body para POST /api/inventory/sell.
type SellItemRequest struct {
	Identifier    string           `json:"identifier"`
	Price         decimal.Decimal  `json:"price"`
	LocationID    string           `json:"location_id,omitempty"`
	SoldAt        *time.Time       `json:"sold_at,omitempty"`
	CommissionPct *decimal.Decimal `json:"commission_pct,omitempty"`
}

// ItemResponse ítem de inventario.
type ItemResponse struct {
	ID                 string           `json:"id"`
	BusinessID         string           `json:"business_id"`
	Identifier         string           `json:"identifier"`
	ProductID          string           `json:"product_id"`
	LocationID         string           `json:"location_id"`
	ReceivedLocationID *string          `json:"received_location_id,omitempty"`
	SoldLocationID     *string          `json:"sold_location_id,omitempty"`
	Status             string           `json:"status"`
	OrderPrice         decimal.Decimal  `json:"order_price"`
	SellingPrice       *decimal.Decimal `json:"selling_price,omitempty"`
	AssignedAgentID    *string          `json:"assigned_agent_id,omitempty"`
	Quantity           *int             `json:"quantity,omitempty"`
	SoldAt             *time.Time       `json:"sold_at,omitempty"`
	IsActive           bool             `json:"is_active"`
	ReceivedAt         time.Time        `json:"received_at"`
}

// SaleResponse registro de venta.
type SaleResponse struct {
	ID            string           `json:"id"`
	ItemID        string           `json:"item_id"`
	AgentID       string           `json:"agent_id"`
	LocationID    string           `json:"location_id"`
	Price         decimal.Decimal  `json:"price"`
	CommissionPct *decimal.Decimal `json:"commission_pct,omitempty"`
	SoldAt        time.Time        `json:"sold_at"`
}

// CommissionResponse movimiento de billetera creado por la venta.
type CommissionResponse struct {
	ID        string          `json:"id"`
	AgentID   string          `json:"agent_id"`
	Amount    decimal.Decimal `json:"amount"`
	Reference string          `json:"reference"`
}

// ReceiveItemResponse salida de la recepción.
type ReceiveItemResponse struct {
	Item    ItemResponse `json:"item"`
	Created bool         `json:"created"`
	Outcome string       `json:"outcome"`
}

// SellItemResponse salida de la venta; en ITEM_ALREADY_SOLD trae la foto de la venta existente.
type SellItemResponse struct {
	Code       string              `json:"code"`
	Message    string              `json:"message"`
	Item       *ItemResponse       `json:"item,omitempty"`
	Sale       *SaleResponse       `json:"sale,omitempty"`
	Commission *CommissionResponse `json:"commission,omitempty"`
}

// LookupItemResponse ítem con su última venta.
type LookupItemResponse struct {
	Item     ItemResponse  `json:"item"`
	LastSale *SaleResponse `json:"last_sale,omitempty"`
}
