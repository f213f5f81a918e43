package membership_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tenant-stock-api/internal/application/membership"
	"github.com/jhoicas/tenant-stock-api/internal/domain"
	"github.com/jhoicas/tenant-stock-api/internal/domain/entity"
	"github.com/jhoicas/tenant-stock-api/internal/infrastructure/memory"
)

func newAuthority(t *testing.T) *membership.Authority {
	t.Helper()
	s := memory.NewStore()
	s.AddBusiness(&entity.Business{ID: "A", Status: entity.BusinessStatusActive})
	s.AddBusiness(&entity.Business{ID: "B", Status: entity.BusinessStatusActive})
	s.AddBusiness(&entity.Business{ID: "P", Status: entity.BusinessStatusPending})

	s.AddUser(&entity.User{ID: "root", IsSuperAdmin: true})
	s.AddUser(&entity.User{ID: "gerente"})
	s.AddUser(&entity.User{ID: "agente"})
	s.AddUser(&entity.User{ID: "pendiente"})

	s.AddMembership(&entity.Membership{UserID: "gerente", BusinessID: "A", Role: entity.RoleManager, Status: entity.MembershipActive})
	s.AddMembership(&entity.Membership{UserID: "gerente", BusinessID: "P", Role: entity.RoleManager, Status: entity.MembershipActive})
	s.AddMembership(&entity.Membership{UserID: "agente", BusinessID: "A", Role: entity.RoleAgent, Status: entity.MembershipActive})
	s.AddMembership(&entity.Membership{UserID: "pendiente", BusinessID: "A", Role: entity.RoleAgent, Status: entity.MembershipPending})
	s.AddMembership(&entity.Membership{UserID: "root", BusinessID: "A", Role: entity.RoleAgent, Status: entity.MembershipActive})

	return membership.NewAuthority(
		memory.NewBusinessRepository(s), memory.NewMembershipRepository(s), memory.NewUserRepository(s),
	)
}

func TestAuthorize_MiembroActivoDevuelveRol(t *testing.T) {
	a := newAuthority(t)
	role, err := a.Authorize(context.Background(), membership.Principal{UserID: "gerente"}, "A")
	require.NoError(t, err)
	assert.Equal(t, entity.RoleManager, role)
}

func TestAuthorize_SinMembresia_CrossTenant(t *testing.T) {
	a := newAuthority(t)
	_, err := a.Authorize(context.Background(), membership.Principal{UserID: "gerente"}, "B")
	assert.ErrorIs(t, err, domain.ErrCrossTenantAccess)
}

func TestAuthorize_MembresiaPendiente_CrossTenant(t *testing.T) {
	a := newAuthority(t)
	_, err := a.Authorize(context.Background(), membership.Principal{UserID: "pendiente"}, "A")
	assert.ErrorIs(t, err, domain.ErrCrossTenantAccess)
}

func TestAuthorize_NegocioInexistente(t *testing.T) {
	a := newAuthority(t)
	_, err := a.Authorize(context.Background(), membership.Principal{UserID: "gerente"}, "no-existe")
	assert.ErrorIs(t, err, domain.ErrCrossTenantAccess, "no revela si el negocio existe")

	_, err = a.Authorize(context.Background(), membership.Principal{UserID: "root", IsSuperAdmin: true}, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAuthorize_NegocioNoActivo(t *testing.T) {
	a := newAuthority(t)
	_, err := a.Authorize(context.Background(), membership.Principal{UserID: "gerente"}, "P")
	assert.ErrorIs(t, err, domain.ErrTenantInactive)
}

func TestAuthorize_SuperAdminOmiteMembresia(t *testing.T) {
	a := newAuthority(t)
	role, err := a.Authorize(context.Background(), membership.Principal{UserID: "root", IsSuperAdmin: true}, "B")
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, role)
}

func TestAuthorize_SinUsuario(t *testing.T) {
	a := newAuthority(t)
	_, err := a.Authorize(context.Background(), membership.Principal{}, "A")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestEnsureOwns(t *testing.T) {
	assert.NoError(t, membership.EnsureOwns("A", "A"))
	assert.ErrorIs(t, membership.EnsureOwns("A", "B"), domain.ErrCrossTenantAccess)
	assert.ErrorIs(t, membership.EnsureOwns("", ""), domain.ErrCrossTenantAccess)
}

func TestFullVisibility(t *testing.T) {
	assert.True(t, membership.FullVisibility(entity.RoleManager))
	assert.True(t, membership.FullVisibility(entity.RoleAdmin))
	assert.True(t, membership.FullVisibility(entity.RoleOwner))
	assert.False(t, membership.FullVisibility(entity.RoleAgent))
}

func TestValidateAgentAssignment(t *testing.T) {
	a := newAuthority(t)
	ctx := context.Background()

	assert.NoError(t, a.ValidateAgentAssignment(ctx, "A", "agente"))
	assert.ErrorIs(t, a.ValidateAgentAssignment(ctx, "A", "gerente"), domain.ErrInvalidInput, "un MANAGER no puede ser titular")
	assert.ErrorIs(t, a.ValidateAgentAssignment(ctx, "A", "root"), domain.ErrInvalidInput, "un super-admin no puede ser titular")
	assert.ErrorIs(t, a.ValidateAgentAssignment(ctx, "B", "agente"), domain.ErrCrossTenantAccess)
	assert.ErrorIs(t, a.ValidateAgentAssignment(ctx, "A", "pendiente"), domain.ErrCrossTenantAccess)
	assert.ErrorIs(t, a.ValidateAgentAssignment(ctx, "A", "fantasma"), domain.ErrNotFound)
}
