package inventory

import (
	"context"

	"github.com/jhoicas/tenant-stock-api/internal/application/audit"
	"github.com/jhoicas/tenant-stock-api/internal/application/membership"
	"github.com/jhoicas/tenant-stock-api/internal/application/scope"
	"github.com/jhoicas/tenant-stock-api/internal/domain/entity"
	"github.com/jhoicas/tenant-stock-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace rollback de todo lo escrito.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		items repository.InventoryItemRepository,
		sales repository.SaleRepository,
	) error) error
}

// ScopeResolver resuelve el scope cuando el llamador no lo trae resuelto.
type ScopeResolver interface {
	Resolve(ctx context.Context, c scope.Caller) (scope.Scope, error)
}

// Authorizer subconjunto de la autoridad de membresías que usa el motor.
type Authorizer interface {
	Authorize(ctx context.Context, p membership.Principal, businessID string) (entity.Role, error)
	ValidateAgentAssignment(ctx context.Context, businessID, agentUserID string) error
}

// AuditRecorder registro de auditoría; nunca falla hacia el llamador.
type AuditRecorder interface {
	Record(ctx context.Context, in audit.Input) *entity.AuditEntry
}

// CommissionPoster publica la comisión de una venta. (nil, nil) = no corresponde.
type CommissionPoster interface {
	Post(ctx context.Context, sale *entity.Sale) (*entity.WalletLedgerEntry, error)
}
