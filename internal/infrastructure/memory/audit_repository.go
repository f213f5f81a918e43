package memory

import (
	"context"

	"github.com/jhoicas/tenant-stock-api/internal/domain/entity"
	"github.com/jhoicas/tenant-stock-api/internal/domain/repository"
)

var _ repository.AuditRepository = (*AuditRepo)(nil)

// AuditRepo log de auditoría en memoria (solo inserción).
type AuditRepo struct{ s *Store }

// NewAuditRepository construye el adaptador.
func NewAuditRepository(s *Store) *AuditRepo { return &AuditRepo{s: s} }

// Append encadena con el último hash del negocio bajo el mutex del store.
func (r *AuditRepo) Append(_ context.Context, entry *entity.AuditEntry, chained bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if chained {
		prev := ""
		for i := len(r.s.audit) - 1; i >= 0; i-- {
			if r.s.audit[i].BusinessID == entry.BusinessID {
				prev = r.s.audit[i].Hash
				break
			}
		}
		entry.PrevHash = prev
		entry.Hash = entry.ComputeHash(prev)
	}
	c := *entry
	r.s.audit = append(r.s.audit, &c)
	return nil
}

// ListByBusiness entradas del negocio en orden de inserción; limit <= 0 = todas.
func (r *AuditRepo) ListByBusiness(_ context.Context, businessID string, limit int) ([]*entity.AuditEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.AuditEntry
	for _, e := range r.s.audit {
		if e.BusinessID != businessID {
			continue
		}
		c := *e
		out = append(out, &c)
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}
