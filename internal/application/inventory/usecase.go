// Package inventory motor del ciclo de vida de ítems: recepción, venta y consulta.
package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/tenant-stock-api/internal/application/membership"
	"github.com/jhoicas/tenant-stock-api/internal/application/scope"
	"github.com/jhoicas/tenant-stock-api/internal/domain"
	"github.com/jhoicas/tenant-stock-api/internal/domain/entity"
	"github.com/jhoicas/tenant-stock-api/internal/domain/identifier"
	"github.com/jhoicas/tenant-stock-api/internal/domain/repository"
	"github.com/jhoicas/tenant-stock-api/internal/domain/schema"
	"github.com/jhoicas/tenant-stock-api/pkg/metrics"
)

// Deps colaboradores del motor. Audit, Commission y Notifier son opcionales.
type Deps struct {
	Tx         TxRunner
	Items      repository.InventoryItemRepository
	Sales      repository.SaleRepository
	Products   repository.ProductRepository
	Locations  repository.LocationRepository
	Scopes     ScopeResolver
	Authority  Authorizer
	Audit      AuditRecorder
	Commission CommissionPoster
	Notifier   Notifier
	Caps       schema.Capabilities
	Metrics    *metrics.Metrics
	Log        zerolog.Logger
	// NoWaitDefault modo de bloqueo cuando la venta no lo indica.
	NoWaitDefault bool
}

// Engine casos de uso del ciclo de vida. Toda mutación ocurre dentro de TxRunner.Run.
type Engine struct {
	d   Deps
	now func() time.Time
}

// NewEngine construye el motor.
func NewEngine(d Deps) *Engine {
	if d.Notifier == nil {
		d.Notifier = NopNotifier{}
	}
	return &Engine{d: d, now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// LookupInput consulta de un ítem por identificador.
type LookupInput struct {
	Caller     scope.Caller
	Scope      *scope.Scope
	Identifier string
}

// LookupResult ítem y su última venta (si la hubo).
type LookupResult struct {
	Item     *entity.InventoryItem
	LastSale *entity.Sale
}

// Lookup lectura acotada al negocio del scope. Un AGENT solo ve sus ítems o los de su ubicación.
func (e *Engine) Lookup(ctx context.Context, in LookupInput) (*LookupResult, error) {
	sc, err := e.scopeFor(ctx, in.Caller, in.Scope)
	if err != nil {
		return nil, err
	}
	ident, err := identifier.Normalize(in.Identifier)
	if err != nil {
		return nil, err
	}
	item, err := e.d.Items.GetByIdentifier(ctx, sc.BusinessID, ident)
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	if err := membership.EnsureOwns(sc.BusinessID, item.BusinessID); err != nil {
		return nil, err
	}
	if !membership.FullVisibility(sc.Role) && !agentMayHandle(sc, in.Caller.UserID, item) {
		return nil, domain.ErrForbidden
	}
	out := &LookupResult{Item: item}
	if item.IsSold() {
		last, err := e.d.Sales.LatestByItem(ctx, item.ID)
		if err != nil {
			return nil, fmt.Errorf("get sale: %w", err)
		}
		out.LastSale = last
	}
	return out, nil
}

// scopeFor usa el scope recibido revalidando el rol, o lo resuelve.
func (e *Engine) scopeFor(ctx context.Context, c scope.Caller, given *scope.Scope) (scope.Scope, error) {
	if given == nil {
		return e.d.Scopes.Resolve(ctx, c)
	}
	sc := *given
	role, err := e.d.Authority.Authorize(ctx, c.Principal(), sc.BusinessID)
	if err != nil {
		return scope.Scope{}, err
	}
	sc.Role = role
	return sc, nil
}

// resolveLocation ubicación de la operación: la pedida, si no la del scope.
// Debe pertenecer al negocio; un AGENT no puede salir de su ubicación fijada.
func (e *Engine) resolveLocation(ctx context.Context, sc scope.Scope, requested string) (string, error) {
	if requested == "" {
		return sc.LocationID, nil
	}
	if sc.Role == entity.RoleAgent && sc.LocationID != "" && requested != sc.LocationID {
		return "", fmt.Errorf("%w: la ubicación no corresponde a la asignada", domain.ErrForbidden)
	}
	loc, err := e.d.Locations.GetByID(ctx, requested)
	if err != nil {
		return "", fmt.Errorf("get location: %w", err)
	}
	if loc == nil {
		return "", domain.ErrNotFound
	}
	if err := membership.EnsureOwns(sc.BusinessID, loc.BusinessID); err != nil {
		return "", err
	}
	return loc.ID, nil
}

// agentMayHandle un AGENT opera ítems asignados a él o, sin titular, los de su ubicación.
func agentMayHandle(sc scope.Scope, userID string, item *entity.InventoryItem) bool {
	if item.AssignedAgentID != nil && *item.AssignedAgentID != "" {
		return *item.AssignedAgentID == userID
	}
	return sc.LocationID != "" && item.LocationID == sc.LocationID
}

func (e *Engine) notify(ctx context.Context, ev Event) {
	if err := e.d.Notifier.Publish(ctx, ev); err != nil {
		e.d.Log.Warn().Err(err).
			Str("side_effect", "notify").
			Str("event", ev.Type).
			Str("business_id", ev.BusinessID).
			Str("identifier", ev.Identifier).
			Msg("no se pudo publicar el evento")
		e.d.Metrics.SideEffectFailed("notify")
	}
}
