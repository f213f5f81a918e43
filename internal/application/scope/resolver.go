// Package scope resuelve el par (negocio, ubicación) activo de cada operación.
package scope

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jhoicas/tenant-stock-api/internal/application/membership"
	"github.com/jhoicas/tenant-stock-api/internal/domain"
	"github.com/jhoicas/tenant-stock-api/internal/domain/entity"
	"github.com/jhoicas/tenant-stock-api/internal/domain/repository"
	"github.com/jhoicas/tenant-stock-api/pkg/metrics"
)

// Source regla que produjo el negocio.
type Source string

const (
	SourceOverride   Source = "override"
	SourceSession    Source = "session"
	SourceSubdomain  Source = "subdomain"
	SourceMembership Source = "membership"
	SourceSelection  Source = "selection"
)

// Caller contexto explícito del llamador; reemplaza cualquier estado ambiental.
type Caller struct {
	UserID              string
	IsSuperAdmin        bool
	SessionID           string
	OverrideBusinessID  string // impersonación, solo super-admin
	RequestedLocationID string
	Host                string
}

// Principal identidad para la autoridad de membresías.
func (c Caller) Principal() membership.Principal {
	return membership.Principal{UserID: c.UserID, IsSuperAdmin: c.IsSuperAdmin}
}

// Scope resultado de la resolución. LocationID puede quedar vacío si el negocio no tiene ubicaciones.
type Scope struct {
	BusinessID string
	LocationID string
	Role       entity.Role
	Source     Source
}

// Authorizer contrato mínimo de la autoridad de membresías.
type Authorizer interface {
	Authorize(ctx context.Context, p membership.Principal, businessID string) (entity.Role, error)
	PinnedLocation(ctx context.Context, userID, businessID string) (string, error)
}

// Resolver aplica las reglas en orden estricto; la primera que produce un negocio gana.
type Resolver struct {
	businesses  repository.BusinessRepository
	memberships repository.MembershipRepository
	locations   repository.LocationRepository
	sessions    repository.ScopeSessionStore
	authority   Authorizer
	metrics     *metrics.Metrics
	log         zerolog.Logger
}

// NewResolver construye el resolvedor.
func NewResolver(
	businesses repository.BusinessRepository,
	memberships repository.MembershipRepository,
	locations repository.LocationRepository,
	sessions repository.ScopeSessionStore,
	authority Authorizer,
	m *metrics.Metrics,
	log zerolog.Logger,
) *Resolver {
	return &Resolver{
		businesses:  businesses,
		memberships: memberships,
		locations:   locations,
		sessions:    sessions,
		authority:   authority,
		metrics:     m,
		log:         log,
	}
}

// Resolve devuelve el scope activo o domain.ErrNoActiveTenant. Nunca elige un negocio arbitrario.
func (r *Resolver) Resolve(ctx context.Context, c Caller) (Scope, error) {
	if c.UserID == "" {
		return Scope{}, domain.ErrUnauthorized
	}

	var session *repository.ScopeSelection
	if c.SessionID != "" {
		sel, err := r.sessions.Load(ctx, c.SessionID)
		if err != nil {
			// Sin estado de sesión se sigue con las demás reglas.
			r.log.Warn().Err(err).Str("session_id", c.SessionID).Msg("no se pudo leer la selección de sesión")
			r.metrics.SideEffectFailed("session_load")
		} else {
			session = sel
		}
	}

	sc, ok, err := r.fromOverride(ctx, c)
	if err != nil {
		return Scope{}, err
	}
	if !ok {
		sc, ok, err = r.fromSession(ctx, c, session)
		if err != nil {
			return Scope{}, err
		}
	}
	if !ok {
		sc, ok, err = r.fromSubdomain(ctx, c)
		if err != nil {
			return Scope{}, err
		}
	}
	if !ok {
		sc, ok, err = r.fromSingleMembership(ctx, c)
		if err != nil {
			return Scope{}, err
		}
	}
	if !ok {
		return Scope{}, domain.ErrNoActiveTenant
	}

	sessionLocation := ""
	if session != nil && session.BusinessID == sc.BusinessID {
		sessionLocation = session.LocationID
	}
	loc, err := r.resolveLocation(ctx, c, sc, c.RequestedLocationID, sessionLocation)
	if err != nil {
		return Scope{}, err
	}
	sc.LocationID = loc

	r.writeBack(ctx, c.SessionID, sc)
	r.metrics.ScopeResolved(string(sc.Source))
	return sc, nil
}

// Select selección explícita del usuario; a diferencia de Resolve, los errores de
// autorización y de persistencia se devuelven.
func (r *Resolver) Select(ctx context.Context, c Caller, businessID, locationID string) (Scope, error) {
	role, err := r.authority.Authorize(ctx, c.Principal(), businessID)
	if err != nil {
		return Scope{}, err
	}
	sc := Scope{BusinessID: businessID, Role: role, Source: SourceSelection}
	if locationID != "" {
		l, err := r.locations.GetByID(ctx, locationID)
		if err != nil {
			return Scope{}, fmt.Errorf("get location: %w", err)
		}
		if l == nil || l.BusinessID != businessID {
			return Scope{}, domain.ErrCrossTenantAccess
		}
	}
	loc, err := r.resolveLocation(ctx, c, sc, locationID, "")
	if err != nil {
		return Scope{}, err
	}
	sc.LocationID = loc
	if c.SessionID != "" {
		if err := r.sessions.Save(ctx, c.SessionID, repository.ScopeSelection{BusinessID: sc.BusinessID, LocationID: sc.LocationID}); err != nil {
			return Scope{}, fmt.Errorf("save scope selection: %w", err)
		}
	}
	r.metrics.ScopeResolved(string(sc.Source))
	return sc, nil
}

// Clear borra la selección persistida de la sesión.
func (r *Resolver) Clear(ctx context.Context, c Caller) error {
	if c.SessionID == "" {
		return nil
	}
	return r.sessions.Clear(ctx, c.SessionID)
}

func (r *Resolver) fromOverride(ctx context.Context, c Caller) (Scope, bool, error) {
	if c.OverrideBusinessID == "" {
		return Scope{}, false, nil
	}
	if !c.IsSuperAdmin {
		r.log.Warn().Str("user_id", c.UserID).Str("business_id", c.OverrideBusinessID).
			Msg("impersonación ignorada: el usuario no es super-admin")
		return Scope{}, false, nil
	}
	role, err := r.authority.Authorize(ctx, c.Principal(), c.OverrideBusinessID)
	if err != nil {
		if isScopeRejection(err) {
			r.log.Warn().Err(err).Str("business_id", c.OverrideBusinessID).Msg("impersonación ignorada")
			return Scope{}, false, nil
		}
		return Scope{}, false, err
	}
	return Scope{BusinessID: c.OverrideBusinessID, Role: role, Source: SourceOverride}, true, nil
}

func (r *Resolver) fromSession(ctx context.Context, c Caller, sel *repository.ScopeSelection) (Scope, bool, error) {
	if sel == nil || sel.BusinessID == "" {
		return Scope{}, false, nil
	}
	role, err := r.authority.Authorize(ctx, c.Principal(), sel.BusinessID)
	if err != nil {
		if !isScopeRejection(err) {
			return Scope{}, false, err
		}
		r.log.Info().Err(err).Str("business_id", sel.BusinessID).Str("user_id", c.UserID).
			Msg("selección de sesión descartada")
		if cerr := r.sessions.Clear(ctx, c.SessionID); cerr != nil {
			r.log.Warn().Err(cerr).Msg("no se pudo limpiar la selección de sesión")
			r.metrics.SideEffectFailed("session_clear")
		}
		return Scope{}, false, nil
	}
	return Scope{BusinessID: sel.BusinessID, Role: role, Source: SourceSession}, true, nil
}

func (r *Resolver) fromSubdomain(ctx context.Context, c Caller) (Scope, bool, error) {
	sub := Subdomain(c.Host)
	if sub == "" {
		return Scope{}, false, nil
	}
	biz, err := r.businesses.GetBySubdomain(ctx, sub)
	if err != nil {
		return Scope{}, false, fmt.Errorf("get business by subdomain: %w", err)
	}
	if biz == nil {
		return Scope{}, false, nil
	}
	role, err := r.authority.Authorize(ctx, c.Principal(), biz.ID)
	if err != nil {
		if isScopeRejection(err) {
			return Scope{}, false, nil
		}
		return Scope{}, false, err
	}
	return Scope{BusinessID: biz.ID, Role: role, Source: SourceSubdomain}, true, nil
}

func (r *Resolver) fromSingleMembership(ctx context.Context, c Caller) (Scope, bool, error) {
	list, err := r.memberships.ListActiveByUser(ctx, c.UserID)
	if err != nil {
		return Scope{}, false, fmt.Errorf("list memberships: %w", err)
	}
	if len(list) != 1 {
		return Scope{}, false, nil
	}
	m := list[0]
	return Scope{BusinessID: m.BusinessID, Role: m.Role, Source: SourceMembership}, true, nil
}

// resolveLocation AGENT queda fijado a su ubicación; el resto usa la pedida, luego la de
// sesión y por último la default. Toda candidata se revalida contra el negocio.
func (r *Resolver) resolveLocation(ctx context.Context, c Caller, sc Scope, requested, fromSession string) (string, error) {
	var candidates []string
	if sc.Role == entity.RoleAgent && !c.IsSuperAdmin {
		pinned, err := r.authority.PinnedLocation(ctx, c.UserID, sc.BusinessID)
		if err != nil {
			return "", err
		}
		candidates = []string{pinned}
	} else {
		candidates = []string{requested, fromSession}
	}
	for _, id := range candidates {
		if id == "" {
			continue
		}
		l, err := r.locations.GetByID(ctx, id)
		if err != nil {
			return "", fmt.Errorf("get location: %w", err)
		}
		if l != nil && l.BusinessID == sc.BusinessID {
			return l.ID, nil
		}
		r.log.Debug().Str("location_id", id).Str("business_id", sc.BusinessID).Msg("ubicación ajena al negocio descartada")
	}
	def, err := r.locations.DefaultForBusiness(ctx, sc.BusinessID)
	if err != nil {
		return "", fmt.Errorf("default location: %w", err)
	}
	if def == nil {
		return "", nil
	}
	return def.ID, nil
}

func (r *Resolver) writeBack(ctx context.Context, sessionID string, sc Scope) {
	if sessionID == "" {
		return
	}
	sel := repository.ScopeSelection{BusinessID: sc.BusinessID, LocationID: sc.LocationID}
	if err := r.sessions.Save(ctx, sessionID, sel); err != nil {
		r.log.Warn().Err(err).Str("session_id", sessionID).Msg("no se pudo persistir la selección de scope")
		r.metrics.SideEffectFailed("session_save")
	}
}

// isScopeRejection errores que descartan una regla sin abortar la resolución.
func isScopeRejection(err error) bool {
	return errors.Is(err, domain.ErrCrossTenantAccess) ||
		errors.Is(err, domain.ErrTenantInactive) ||
		errors.Is(err, domain.ErrNotFound)
}

// Subdomain primera etiqueta del host ("acme.example.com" -> "acme").
// Vacío para localhost, IPs, hosts de menos de tres etiquetas y "www".
func Subdomain(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	if host == "" || host == "localhost" || strings.HasSuffix(host, ".localhost") || net.ParseIP(host) != nil {
		return ""
	}
	labels := strings.Split(host, ".")
	if len(labels) < 3 || labels[0] == "www" {
		return ""
	}
	return labels[0]
}
