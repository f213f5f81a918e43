package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Location tienda o punto físico de un negocio.
type Location struct {
	ID         string
	BusinessID string
	Name       string
	City       string
	Latitude   *decimal.Decimal
	Longitude  *decimal.Decimal
	IsDefault  bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
