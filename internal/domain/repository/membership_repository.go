package repository

import (
	"context"

	"github.com/jhoicas/tenant-stock-api/internal/domain/entity"
)

// MembershipRepository puerto de membresías usuario-negocio.
type MembershipRepository interface {
	// Get devuelve la membresía (cualquier estado) o nil.
	Get(ctx context.Context, userID, businessID string) (*entity.Membership, error)
	// ListActiveByUser membresías ACTIVE del usuario cuyo negocio también está ACTIVE.
	ListActiveByUser(ctx context.Context, userID string) ([]*entity.Membership, error)
}
