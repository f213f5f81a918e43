// Package membership decide el rol de un usuario dentro de un negocio y revalida
// que los objetos ya leídos pertenezcan al negocio del scope.
package membership

import (
	"context"
	"fmt"

	"github.com/jhoicas/tenant-stock-api/internal/domain"
	"github.com/jhoicas/tenant-stock-api/internal/domain/entity"
	"github.com/jhoicas/tenant-stock-api/internal/domain/repository"
)

// Principal identidad del llamador tal como la entrega la capa de autenticación.
type Principal struct {
	UserID       string
	IsSuperAdmin bool
}

// Authority implementa authorize(user, business) -> Role | CrossTenantAccessDenied.
type Authority struct {
	businesses  repository.BusinessRepository
	memberships repository.MembershipRepository
	users       repository.UserRepository
}

// NewAuthority construye la autoridad de membresías.
func NewAuthority(
	businesses repository.BusinessRepository,
	memberships repository.MembershipRepository,
	users repository.UserRepository,
) *Authority {
	return &Authority{businesses: businesses, memberships: memberships, users: users}
}

// Authorize devuelve el rol del llamador en el negocio.
//   - negocio inexistente: ErrCrossTenantAccess (ErrNotFound para super-admin);
//   - negocio no ACTIVE: ErrTenantInactive;
//   - super-admin: RoleAdmin sin consultar membresía;
//   - sin membresía ACTIVE: ErrCrossTenantAccess.
func (a *Authority) Authorize(ctx context.Context, p Principal, businessID string) (entity.Role, error) {
	if p.UserID == "" {
		return "", domain.ErrUnauthorized
	}
	if businessID == "" {
		return "", domain.ErrNoActiveTenant
	}
	biz, err := a.businesses.GetByID(ctx, businessID)
	if err != nil {
		return "", fmt.Errorf("get business: %w", err)
	}
	if biz == nil {
		if p.IsSuperAdmin {
			return "", domain.ErrNotFound
		}
		return "", domain.ErrCrossTenantAccess
	}
	if !biz.IsActive() {
		return "", domain.ErrTenantInactive
	}
	if p.IsSuperAdmin {
		return entity.RoleAdmin, nil
	}
	m, err := a.memberships.Get(ctx, p.UserID, businessID)
	if err != nil {
		return "", fmt.Errorf("get membership: %w", err)
	}
	if !m.IsActive() {
		return "", domain.ErrCrossTenantAccess
	}
	return m.Role, nil
}

// PinnedLocation ubicación fijada del usuario en el negocio ("" si no hay membresía o no está fijado).
func (a *Authority) PinnedLocation(ctx context.Context, userID, businessID string) (string, error) {
	m, err := a.memberships.Get(ctx, userID, businessID)
	if err != nil {
		return "", fmt.Errorf("get membership: %w", err)
	}
	if !m.IsActive() {
		return "", nil
	}
	return m.PinnedLocation(), nil
}

// EnsureOwns revalida que un objeto ya filtrado pertenezca al negocio del scope.
func EnsureOwns(scopeBusinessID, objectBusinessID string) error {
	if scopeBusinessID == "" || objectBusinessID != scopeBusinessID {
		return domain.ErrCrossTenantAccess
	}
	return nil
}

// FullVisibility MANAGER/ADMIN/OWNER ven todo el negocio; AGENT solo lo propio.
func FullVisibility(role entity.Role) bool {
	switch role {
	case entity.RoleOwner, entity.RoleManager, entity.RoleAdmin:
		return true
	}
	return false
}

// ValidateAgentAssignment el titular de un ítem asignado debe ser un AGENT activo del negocio,
// nunca un rol privilegiado ni un super-admin.
func (a *Authority) ValidateAgentAssignment(ctx context.Context, businessID, agentUserID string) error {
	if agentUserID == "" {
		return domain.ErrInvalidInput
	}
	u, err := a.users.GetByID(ctx, agentUserID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	if u == nil {
		return domain.ErrNotFound
	}
	if u.IsSuperAdmin {
		return fmt.Errorf("%w: un super-admin no puede tener ítems asignados", domain.ErrInvalidInput)
	}
	m, err := a.memberships.Get(ctx, agentUserID, businessID)
	if err != nil {
		return fmt.Errorf("get membership: %w", err)
	}
	if !m.IsActive() {
		return domain.ErrCrossTenantAccess
	}
	if m.Role != entity.RoleAgent {
		return fmt.Errorf("%w: el titular debe ser AGENT, es %s", domain.ErrInvalidInput, m.Role)
	}
	return nil
}
