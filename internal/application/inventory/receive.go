package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/tenant-stock-api/internal/application/audit"
	"github.com/jhoicas/tenant-stock-api/internal/application/membership"
	"github.com/jhoicas/tenant-stock-api/internal/application/scope"
	"github.com/jhoicas/tenant-stock-api/internal/domain"
	"github.com/jhoicas/tenant-stock-api/internal/domain/entity"
	"github.com/jhoicas/tenant-stock-api/internal/domain/identifier"
	"github.com/jhoicas/tenant-stock-api/internal/domain/repository"
)

// Resultados de la recepción (métricas).
const (
	ReceiveCreated   = "created"
	ReceiveRefreshed = "refreshed"
	ReceiveUnchanged = "unchanged"
)

// ReceiveInput entrada de la recepción. AssignedAgentID: nil = sin cambios, "" = quitar titular.
type ReceiveInput struct {
	Caller          scope.Caller
	Scope           *scope.Scope
	Identifier      string
	ProductID       string
	LocationID      string
	OrderPrice      decimal.Decimal
	AssignedAgentID *string
}

// ReceiveResult ítem resultante.
type ReceiveResult struct {
	Item    *entity.InventoryItem
	Created bool
	Outcome string
}

// Receive alta o refresco idempotente por (negocio, identificador canónico).
// Un ítem vendido que se recibe de nuevo vuelve a IN_STOCK.
func (e *Engine) Receive(ctx context.Context, in ReceiveInput) (*ReceiveResult, error) {
	sc, err := e.scopeFor(ctx, in.Caller, in.Scope)
	if err != nil {
		return nil, err
	}
	ident, err := identifier.Normalize(in.Identifier)
	if err != nil {
		return nil, err
	}
	if in.ProductID == "" {
		return nil, fmt.Errorf("%w: producto requerido", domain.ErrInvalidInput)
	}
	if in.OrderPrice.IsNegative() {
		return nil, fmt.Errorf("%w: el costo no puede ser negativo", domain.ErrInvalidInput)
	}
	product, err := e.d.Products.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil || !product.VisibleTo(sc.BusinessID) {
		return nil, domain.ErrNotFound
	}
	loc, err := e.resolveLocation(ctx, sc, in.LocationID)
	if err != nil {
		return nil, err
	}
	if loc == "" {
		return nil, fmt.Errorf("%w: el negocio no tiene ubicación para recibir", domain.ErrInvalidInput)
	}
	if in.AssignedAgentID != nil && *in.AssignedAgentID != "" {
		if err := e.d.Authority.ValidateAgentAssignment(ctx, sc.BusinessID, *in.AssignedAgentID); err != nil {
			return nil, err
		}
	}

	var (
		res     *ReceiveResult
		changes []entity.FieldChange
	)
	run := func() error {
		return e.d.Tx.Run(ctx, func(items repository.InventoryItemRepository, _ repository.SaleRepository) error {
			res, changes = nil, nil
			now := e.now().UTC()

			existing, err := items.GetForUpdate(ctx, sc.BusinessID, ident, false)
			if err != nil {
				return err
			}
			if existing == nil {
				item := newItem(sc.BusinessID, ident, product.ID, loc, in, now)
				changes = entity.Diff(nil, item)
				if err := items.Create(ctx, item); err != nil {
					return err
				}
				res = &ReceiveResult{Item: item, Created: true, Outcome: ReceiveCreated}
				return nil
			}
			if err := membership.EnsureOwns(sc.BusinessID, existing.BusinessID); err != nil {
				return err
			}
			if !membership.FullVisibility(sc.Role) && !agentMayHandle(sc, in.Caller.UserID, existing) {
				return fmt.Errorf("%w: el ítem no está asignado al agente", domain.ErrForbidden)
			}

			after := refreshItem(existing, product.ID, loc, in, now)
			changes = entity.Diff(existing, after)
			if len(changes) == 0 {
				res = &ReceiveResult{Item: existing, Outcome: ReceiveUnchanged}
				return nil
			}
			fields := append(entity.ChangedFields(changes), entity.FieldReceivedAt)
			if err := items.UpdateFields(ctx, after, e.d.Caps.Writable(fields)); err != nil {
				return fmt.Errorf("update item: %w", err)
			}
			res = &ReceiveResult{Item: after, Outcome: ReceiveRefreshed}
			return nil
		})
	}
	err = run()
	if errors.Is(err, domain.ErrDuplicate) {
		// Otra recepción concurrente creó la fila; el reintento la encuentra y la refresca.
		err = run()
	}
	if err != nil {
		return nil, err
	}

	e.afterReceive(ctx, in.Caller.UserID, res, changes)
	e.d.Metrics.ReceiveOutcome(res.Outcome)
	return res, nil
}

func (e *Engine) afterReceive(ctx context.Context, actorID string, res *ReceiveResult, changes []entity.FieldChange) {
	if res.Outcome == ReceiveUnchanged {
		return
	}
	ctx = context.WithoutCancel(ctx)
	item := res.Item

	action := entity.AuditActionUpdate
	if res.Created {
		action = entity.AuditActionCreate
	}
	if e.d.Audit != nil {
		e.d.Audit.Record(ctx, audit.Input{
			BusinessID: item.BusinessID,
			EntityType: entity.AuditEntityItem,
			EntityID:   item.ID,
			Action:     action,
			ActorID:    actorID,
			Changes:    changes,
		})
	}
	e.notify(ctx, Event{
		Type:       EventStockReceived,
		BusinessID: item.BusinessID,
		ItemID:     item.ID,
		Identifier: item.Identifier,
		ActorID:    actorID,
		LocationID: item.LocationID,
		At:         item.ReceivedAt,
	})
}

func newItem(businessID, ident, productID, loc string, in ReceiveInput, now time.Time) *entity.InventoryItem {
	one := 1
	receivedLoc := loc
	item := &entity.InventoryItem{
		ID:                 uuid.New().String(),
		BusinessID:         businessID,
		Identifier:         ident,
		ProductID:          productID,
		LocationID:         loc,
		ReceivedLocationID: &receivedLoc,
		Status:             entity.ItemStatusInStock,
		OrderPrice:         in.OrderPrice,
		Quantity:           &one,
		IsActive:           true,
		ReceivedAt:         now,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if in.AssignedAgentID != nil && *in.AssignedAgentID != "" {
		agent := *in.AssignedAgentID
		item.AssignedAgentID = &agent
	}
	return item
}

// refreshItem vuelve el ítem a IN_STOCK con los datos de la nueva recepción. La ubicación
// de recepción original se conserva.
func refreshItem(existing *entity.InventoryItem, productID, loc string, in ReceiveInput, now time.Time) *entity.InventoryItem {
	after := existing.Clone()
	after.Status = entity.ItemStatusInStock
	after.SoldAt = nil
	after.SellingPrice = nil
	after.SoldLocationID = nil
	after.LocationID = loc
	after.ProductID = productID
	after.OrderPrice = in.OrderPrice
	after.IsActive = true
	one := 1
	after.Quantity = &one
	if after.ReceivedLocationID == nil {
		l := loc
		after.ReceivedLocationID = &l
	}
	if in.AssignedAgentID != nil {
		if *in.AssignedAgentID == "" {
			after.AssignedAgentID = nil
		} else {
			agent := *in.AssignedAgentID
			after.AssignedAgentID = &agent
		}
	}
	after.ReceivedAt = now
	after.UpdatedAt = now
	return after
}
