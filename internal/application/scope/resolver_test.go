package scope_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tenant-stock-api/internal/application/membership"
	"github.com/jhoicas/tenant-stock-api/internal/application/scope"
	"github.com/jhoicas/tenant-stock-api/internal/domain"
	"github.com/jhoicas/tenant-stock-api/internal/domain/entity"
	"github.com/jhoicas/tenant-stock-api/internal/domain/repository"
	"github.com/jhoicas/tenant-stock-api/internal/infrastructure/memory"
	"github.com/jhoicas/tenant-stock-api/pkg/logger"
	"github.com/jhoicas/tenant-stock-api/pkg/metrics"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fixture: dos negocios (A activo con subdominio, B activo), uno suspendido (S).
// ──────────────────────────────────────────────────────────────────────────────

type fixture struct {
	store    *memory.Store
	sessions *memory.SessionStore
	resolver *scope.Resolver
}

func strPtr(s string) *string { return &s }

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := memory.NewStore()
	s.AddBusiness(&entity.Business{ID: "A", Name: "Tienda A", Subdomain: "tienda-a", Status: entity.BusinessStatusActive})
	s.AddBusiness(&entity.Business{ID: "B", Name: "Tienda B", Status: entity.BusinessStatusActive})
	s.AddBusiness(&entity.Business{ID: "S", Name: "Suspendida", Status: entity.BusinessStatusSuspended})

	s.AddLocation(&entity.Location{ID: "a-centro", BusinessID: "A", Name: "Centro"})
	s.AddLocation(&entity.Location{ID: "a-norte", BusinessID: "A", Name: "Norte", IsDefault: true})
	s.AddLocation(&entity.Location{ID: "b-unica", BusinessID: "B", Name: "Única"})

	s.AddUser(&entity.User{ID: "root", Email: "root@x", IsSuperAdmin: true, Status: entity.UserStatusActive})
	s.AddUser(&entity.User{ID: "gerente", Email: "g@x", Status: entity.UserStatusActive})
	s.AddUser(&entity.User{ID: "agente", Email: "a@x", Status: entity.UserStatusActive})
	s.AddUser(&entity.User{ID: "multi", Email: "m@x", Status: entity.UserStatusActive})
	s.AddUser(&entity.User{ID: "nadie", Email: "n@x", Status: entity.UserStatusActive})

	s.AddMembership(&entity.Membership{UserID: "gerente", BusinessID: "A", Role: entity.RoleManager, Status: entity.MembershipActive})
	s.AddMembership(&entity.Membership{UserID: "agente", BusinessID: "A", Role: entity.RoleAgent, Status: entity.MembershipActive, LocationID: strPtr("a-centro")})
	s.AddMembership(&entity.Membership{UserID: "multi", BusinessID: "A", Role: entity.RoleManager, Status: entity.MembershipActive})
	s.AddMembership(&entity.Membership{UserID: "multi", BusinessID: "B", Role: entity.RoleOwner, Status: entity.MembershipActive})
	s.AddMembership(&entity.Membership{UserID: "multi", BusinessID: "S", Role: entity.RoleOwner, Status: entity.MembershipActive})

	sessions := memory.NewSessionStore()
	authority := membership.NewAuthority(
		memory.NewBusinessRepository(s), memory.NewMembershipRepository(s), memory.NewUserRepository(s),
	)
	resolver := scope.NewResolver(
		memory.NewBusinessRepository(s), memory.NewMembershipRepository(s), memory.NewLocationRepository(s),
		sessions, authority, metrics.New("test"), logger.Nop().Zerolog(),
	)
	return &fixture{store: s, sessions: sessions, resolver: resolver}
}

func (f *fixture) savedSelection(t *testing.T, sid string) *repository.ScopeSelection {
	t.Helper()
	sel, err := f.sessions.Load(context.Background(), sid)
	require.NoError(t, err)
	return sel
}

// ──────────────────────────────────────────────────────────────────────────────
// Reglas de resolución
// ──────────────────────────────────────────────────────────────────────────────

func TestResolve_SinMembresiasNiSeleccion_NoActiveTenant(t *testing.T) {
	f := newFixture(t)
	_, err := f.resolver.Resolve(context.Background(), scope.Caller{UserID: "nadie", SessionID: "s1"})
	assert.ErrorIs(t, err, domain.ErrNoActiveTenant)
	assert.Nil(t, f.savedSelection(t, "s1"), "sin resolución no se persiste nada")
}

func TestResolve_UnicaMembresia_AutoSelecciona(t *testing.T) {
	f := newFixture(t)
	sc, err := f.resolver.Resolve(context.Background(), scope.Caller{UserID: "gerente", SessionID: "s1"})
	require.NoError(t, err)
	assert.Equal(t, "A", sc.BusinessID)
	assert.Equal(t, entity.RoleManager, sc.Role)
	assert.Equal(t, scope.SourceMembership, sc.Source)
	assert.Equal(t, "a-norte", sc.LocationID, "ubicación default del negocio")

	sel := f.savedSelection(t, "s1")
	require.NotNil(t, sel)
	assert.Equal(t, repository.ScopeSelection{BusinessID: "A", LocationID: "a-norte"}, *sel)
}

func TestResolve_AgenteQuedaFijadoASuUbicacion(t *testing.T) {
	f := newFixture(t)
	sc, err := f.resolver.Resolve(context.Background(), scope.Caller{
		UserID: "agente", SessionID: "s1", RequestedLocationID: "a-norte",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAgent, sc.Role)
	assert.Equal(t, "a-centro", sc.LocationID, "el agente no puede elegir otra ubicación")
}

func TestResolve_VariasMembresias_SinAutoSeleccion(t *testing.T) {
	f := newFixture(t)
	_, err := f.resolver.Resolve(context.Background(), scope.Caller{UserID: "multi", SessionID: "s1"})
	assert.ErrorIs(t, err, domain.ErrNoActiveTenant)
}

func TestResolve_SeleccionDeSesionTienePrioridad(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.sessions.Save(context.Background(), "s1", repository.ScopeSelection{BusinessID: "B"}))

	sc, err := f.resolver.Resolve(context.Background(), scope.Caller{UserID: "multi", SessionID: "s1"})
	require.NoError(t, err)
	assert.Equal(t, "B", sc.BusinessID)
	assert.Equal(t, entity.RoleOwner, sc.Role)
	assert.Equal(t, scope.SourceSession, sc.Source)
	assert.Equal(t, "b-unica", sc.LocationID)
}

func TestResolve_SesionConNegocioSinMembresia_SeDescartaYContinua(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.sessions.Save(context.Background(), "s1", repository.ScopeSelection{BusinessID: "B", LocationID: "b-unica"}))

	sc, err := f.resolver.Resolve(context.Background(), scope.Caller{UserID: "gerente", SessionID: "s1"})
	require.NoError(t, err)
	assert.Equal(t, "A", sc.BusinessID, "cae a la regla de membresía única")
	assert.Equal(t, scope.SourceMembership, sc.Source)
	assert.Equal(t, "a-norte", sc.LocationID, "la ubicación de B no se arrastra a A")
}

func TestResolve_SesionConNegocioSuspendido_SeDescarta(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.sessions.Save(context.Background(), "s1", repository.ScopeSelection{BusinessID: "S"}))

	_, err := f.resolver.Resolve(context.Background(), scope.Caller{UserID: "multi", SessionID: "s1"})
	assert.ErrorIs(t, err, domain.ErrNoActiveTenant)
	assert.Nil(t, f.savedSelection(t, "s1"), "la selección inválida se limpia")
}

func TestResolve_SesionConUbicacionAjena_UsaDefault(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.sessions.Save(context.Background(), "s1", repository.ScopeSelection{BusinessID: "A", LocationID: "b-unica"}))

	sc, err := f.resolver.Resolve(context.Background(), scope.Caller{UserID: "multi", SessionID: "s1"})
	require.NoError(t, err)
	assert.Equal(t, "A", sc.BusinessID)
	assert.Equal(t, "a-norte", sc.LocationID)
}

func TestResolve_UbicacionPedidaValida(t *testing.T) {
	f := newFixture(t)
	sc, err := f.resolver.Resolve(context.Background(), scope.Caller{
		UserID: "gerente", SessionID: "s1", RequestedLocationID: "a-centro",
	})
	require.NoError(t, err)
	assert.Equal(t, "a-centro", sc.LocationID)
}

func TestResolve_OverrideSuperAdmin(t *testing.T) {
	f := newFixture(t)
	sc, err := f.resolver.Resolve(context.Background(), scope.Caller{
		UserID: "root", IsSuperAdmin: true, SessionID: "s1", OverrideBusinessID: "B",
	})
	require.NoError(t, err)
	assert.Equal(t, "B", sc.BusinessID)
	assert.Equal(t, entity.RoleAdmin, sc.Role)
	assert.Equal(t, scope.SourceOverride, sc.Source)
}

func TestResolve_OverrideNoPrivilegiado_SeIgnora(t *testing.T) {
	f := newFixture(t)
	sc, err := f.resolver.Resolve(context.Background(), scope.Caller{
		UserID: "gerente", SessionID: "s1", OverrideBusinessID: "B",
	})
	require.NoError(t, err)
	assert.Equal(t, "A", sc.BusinessID, "el parámetro de impersonación no aplica a usuarios normales")
}

func TestResolve_OverrideNegocioSuspendido_SeIgnora(t *testing.T) {
	f := newFixture(t)
	_, err := f.resolver.Resolve(context.Background(), scope.Caller{
		UserID: "root", IsSuperAdmin: true, OverrideBusinessID: "S",
	})
	assert.ErrorIs(t, err, domain.ErrNoActiveTenant)
}

func TestResolve_PorSubdominio(t *testing.T) {
	f := newFixture(t)
	sc, err := f.resolver.Resolve(context.Background(), scope.Caller{UserID: "multi", Host: "tienda-a.example.com:443"})
	require.NoError(t, err)
	assert.Equal(t, "A", sc.BusinessID)
	assert.Equal(t, scope.SourceSubdomain, sc.Source)
}

func TestResolve_SubdominioSinMembresia_NoOtorgaAcceso(t *testing.T) {
	f := newFixture(t)
	_, err := f.resolver.Resolve(context.Background(), scope.Caller{UserID: "nadie", Host: "tienda-a.example.com"})
	assert.ErrorIs(t, err, domain.ErrNoActiveTenant)
}

// ──────────────────────────────────────────────────────────────────────────────
// Select / Clear
// ──────────────────────────────────────────────────────────────────────────────

func TestSelect_PersisteYLuegoResuelveDesdeSesion(t *testing.T) {
	f := newFixture(t)
	caller := scope.Caller{UserID: "multi", SessionID: "s1"}
	sc, err := f.resolver.Select(context.Background(), caller, "A", "a-centro")
	require.NoError(t, err)
	assert.Equal(t, scope.SourceSelection, sc.Source)

	again, err := f.resolver.Resolve(context.Background(), caller)
	require.NoError(t, err)
	assert.Equal(t, "A", again.BusinessID)
	assert.Equal(t, "a-centro", again.LocationID)
	assert.Equal(t, scope.SourceSession, again.Source)

	require.NoError(t, f.resolver.Clear(context.Background(), caller))
	_, err = f.resolver.Resolve(context.Background(), caller)
	assert.ErrorIs(t, err, domain.ErrNoActiveTenant)
}

func TestSelect_NegocioAjeno_CrossTenant(t *testing.T) {
	f := newFixture(t)
	_, err := f.resolver.Select(context.Background(), scope.Caller{UserID: "gerente", SessionID: "s1"}, "B", "")
	assert.ErrorIs(t, err, domain.ErrCrossTenantAccess)
}

func TestSelect_UbicacionDeOtroNegocio_CrossTenant(t *testing.T) {
	f := newFixture(t)
	_, err := f.resolver.Select(context.Background(), scope.Caller{UserID: "multi", SessionID: "s1"}, "A", "b-unica")
	assert.ErrorIs(t, err, domain.ErrCrossTenantAccess)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tolerancia a fallos del almacén de sesión
// ──────────────────────────────────────────────────────────────────────────────

type brokenSessions struct{}

func (brokenSessions) Load(context.Context, string) (*repository.ScopeSelection, error) {
	return nil, errors.New("redis caído")
}
func (brokenSessions) Save(context.Context, string, repository.ScopeSelection) error {
	return errors.New("redis caído")
}
func (brokenSessions) Clear(context.Context, string) error { return errors.New("redis caído") }

func TestResolve_SesionNoDisponible_ResuelveIgual(t *testing.T) {
	f := newFixture(t)
	authority := membership.NewAuthority(
		memory.NewBusinessRepository(f.store), memory.NewMembershipRepository(f.store), memory.NewUserRepository(f.store),
	)
	m := metrics.New("test")
	r := scope.NewResolver(
		memory.NewBusinessRepository(f.store), memory.NewMembershipRepository(f.store), memory.NewLocationRepository(f.store),
		brokenSessions{}, authority, m, logger.Nop().Zerolog(),
	)
	sc, err := r.Resolve(context.Background(), scope.Caller{UserID: "gerente", SessionID: "s1"})
	require.NoError(t, err)
	assert.Equal(t, "A", sc.BusinessID)
}

func TestSubdomain(t *testing.T) {
	cases := map[string]string{
		"acme.example.com":      "acme",
		"ACME.example.com:8080": "acme",
		"example.com":           "",
		"www.example.com":       "",
		"localhost:8080":        "",
		"acme.localhost":        "",
		"127.0.0.1:3000":        "",
		"":                      "",
	}
	for host, want := range cases {
		assert.Equal(t, want, scope.Subdomain(host), host)
	}
}
