package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product entrada de catálogo (marca/modelo/variante).
// BusinessID nil = producto global, visible para todos los negocios.
type Product struct {
	ID         string
	BusinessID *string
	Code       string
	Brand      string
	Model      string
	Variant    string
	CostPrice  decimal.Decimal // precio de costo por defecto
	SalePrice  decimal.Decimal // precio de venta por defecto
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// VisibleTo indica si el producto puede usarse en el negocio dado.
func (p *Product) VisibleTo(businessID string) bool {
	if p == nil {
		return false
	}
	return p.BusinessID == nil || *p.BusinessID == businessID
}

// DisplayName nombre legible para snapshots y auditoría.
func (p *Product) DisplayName() string {
	if p == nil {
		return ""
	}
	name := p.Brand + " " + p.Model
	if p.Variant != "" {
		name += " " + p.Variant
	}
	return name
}
