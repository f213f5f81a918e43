package repository

import (
	"context"

	"github.com/jhoicas/tenant-stock-api/internal/domain/entity"
)

// AuditRepository log de auditoría solo inserción.
type AuditRepository interface {
	// Append inserta la entrada. Si chained es true completa PrevHash/Hash de forma
	// serializada por negocio antes de insertar.
	Append(ctx context.Context, entry *entity.AuditEntry, chained bool) error
	ListByBusiness(ctx context.Context, businessID string, limit int) ([]*entity.AuditEntry, error)
}
