package entity

import "time"

// Estados de ciclo de vida de un Business.
const (
	BusinessStatusActive    = "ACTIVE"
	BusinessStatusPending   = "PENDING"
	BusinessStatusSuspended = "SUSPENDED"
)

// Business representa un negocio/tenant. Es la raíz de todo lo que tiene scope:
// ubicaciones, productos, ítems y membresías pertenecen a exactamente uno.
type Business struct {
	ID        string
	Name      string
	Slug      string
	Subdomain string // vacío = sin resolución por host
	Status    string // ACTIVE, PENDING, SUSPENDED
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive indica si el negocio puede operar.
func (b *Business) IsActive() bool {
	return b != nil && b.Status == BusinessStatusActive
}
