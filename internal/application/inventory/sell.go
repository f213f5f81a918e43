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

// SellCode clasificación del intento de venta.
type SellCode string

const (
	SellOK                     SellCode = "OK"
	SellItemNotFound           SellCode = "ITEM_NOT_FOUND"
	SellItemAlreadySold        SellCode = "ITEM_ALREADY_SOLD"
	SellItemNotInExpectedState SellCode = "ITEM_NOT_IN_EXPECTED_STATE"
)

// outcome de métricas para la contención de bloqueo (no es un SellCode).
const outcomeLockContention = "LOCK_CONTENTION"

var hundred = decimal.NewFromInt(100)

// SellInput entrada de la venta. LocationID vacío = ubicación del scope (o la actual del ítem).
type SellInput struct {
	Caller        scope.Caller
	Scope         *scope.Scope
	Identifier    string
	Price         decimal.Decimal
	LocationID    string
	SoldAt        *time.Time
	CommissionPct *decimal.Decimal
	NoWait        *bool
}

// SellResult resultado clasificado. En ITEM_ALREADY_SOLD Item y Sale son la foto de la venta existente.
type SellResult struct {
	Code       SellCode
	Message    string
	Item       *entity.InventoryItem
	Sale       *entity.Sale
	Commission *entity.WalletLedgerEntry
}

// Sell transición IN_STOCK -> SOLD, exactamente una vez por ítem aunque haya ventas concurrentes.
// Los errores de scope, identificador y bloqueo se devuelven como error; las clasificaciones como SellResult.
func (e *Engine) Sell(ctx context.Context, in SellInput) (*SellResult, error) {
	sc, err := e.scopeFor(ctx, in.Caller, in.Scope)
	if err != nil {
		return nil, err
	}
	ident, err := identifier.Normalize(in.Identifier)
	if err != nil {
		return nil, err
	}
	if in.Price.IsNegative() {
		return nil, fmt.Errorf("%w: el precio no puede ser negativo", domain.ErrInvalidInput)
	}
	if p := in.CommissionPct; p != nil && (p.IsNegative() || p.GreaterThan(hundred)) {
		return nil, fmt.Errorf("%w: porcentaje de comisión fuera de rango", domain.ErrInvalidInput)
	}
	saleLocation, err := e.resolveLocation(ctx, sc, in.LocationID)
	if err != nil {
		return nil, err
	}

	nowait := e.d.NoWaitDefault
	if in.NoWait != nil {
		nowait = *in.NoWait
	}
	now := e.now().UTC()
	soldAt := now
	if in.SoldAt != nil {
		soldAt = in.SoldAt.UTC()
	}
	soldAt = soldAt.Truncate(time.Microsecond)

	var (
		res     *SellResult
		changes []entity.FieldChange
	)
	err = e.d.Tx.Run(ctx, func(items repository.InventoryItemRepository, sales repository.SaleRepository) error {
		res, changes = nil, nil

		start := time.Now()
		item, err := items.GetForUpdate(ctx, sc.BusinessID, ident, nowait)
		e.d.Metrics.ObserveLockWait(start)
		if err != nil {
			return err
		}
		if item == nil {
			res = &SellResult{Code: SellItemNotFound, Message: "el ítem no existe en este negocio"}
			return nil
		}
		if err := membership.EnsureOwns(sc.BusinessID, item.BusinessID); err != nil {
			return err
		}
		// Antes de clasificar: un agente sin acceso no ve la foto del ítem ni de su venta.
		if !membership.FullVisibility(sc.Role) && !agentMayHandle(sc, in.Caller.UserID, item) {
			return fmt.Errorf("%w: el ítem no está asignado al agente", domain.ErrForbidden)
		}
		if item.IsSold() && item.Consistent() {
			last, err := sales.LatestByItem(ctx, item.ID)
			if err != nil {
				return fmt.Errorf("get sale: %w", err)
			}
			res = &SellResult{Code: SellItemAlreadySold, Message: "el ítem ya fue vendido", Item: item, Sale: last}
			return nil
		}
		if item.Status != entity.ItemStatusInStock || !item.Consistent() || !item.IsActive {
			res = &SellResult{Code: SellItemNotInExpectedState, Message: "el ítem no está disponible para la venta", Item: item}
			return nil
		}

		loc := saleLocation
		if loc == "" {
			loc = item.LocationID
		}
		after := item.Clone()
		after.Status = entity.ItemStatusSold
		after.SoldAt = &soldAt
		price := in.Price
		after.SellingPrice = &price
		after.LocationID = loc
		after.SoldLocationID = &loc
		if after.Quantity != nil {
			q := *after.Quantity - 1
			if q < 0 {
				q = 0
			}
			after.Quantity = &q
		}
		after.UpdatedAt = now

		changes = entity.Diff(item, after)
		if err := items.UpdateFields(ctx, after, e.d.Caps.Writable(entity.ChangedFields(changes))); err != nil {
			return fmt.Errorf("update item: %w", err)
		}

		sale := &entity.Sale{
			ID:            uuid.New().String(),
			BusinessID:    sc.BusinessID,
			ItemID:        item.ID,
			AgentID:       saleAgent(item, in.Caller.UserID),
			LocationID:    loc,
			Price:         price,
			CommissionPct: in.CommissionPct,
			SoldAt:        soldAt,
			CreatedAt:     now,
		}
		if err := sales.Create(ctx, sale); err != nil {
			return fmt.Errorf("create sale: %w", err)
		}
		res = &SellResult{Code: SellOK, Message: "venta registrada", Item: after, Sale: sale}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrTransientLock) {
			e.d.Metrics.SellOutcome(outcomeLockContention)
		}
		return nil, err
	}

	if res.Code == SellOK {
		e.afterSale(ctx, in.Caller.UserID, ident, res, changes)
	}
	e.d.Metrics.SellOutcome(string(res.Code))
	return res, nil
}

// afterSale observadores posteriores al commit, en orden: auditoría, comisión, notificación.
// Ninguno altera el resultado de la venta.
func (e *Engine) afterSale(ctx context.Context, actorID, ident string, res *SellResult, changes []entity.FieldChange) {
	ctx = context.WithoutCancel(ctx)
	sale := res.Sale

	if e.d.Audit != nil {
		e.d.Audit.Record(ctx, audit.Input{
			BusinessID: sale.BusinessID,
			EntityType: entity.AuditEntityItem,
			EntityID:   sale.ItemID,
			Action:     entity.AuditActionSold,
			ActorID:    actorID,
			Changes:    changes,
		})
	}

	if e.d.Commission != nil {
		entry, err := e.d.Commission.Post(ctx, sale)
		if err != nil {
			e.d.Log.Error().Err(err).
				Str("side_effect", "commission").
				Str("business_id", sale.BusinessID).
				Str("sale_id", sale.ID).
				Msg("no se pudo publicar la comisión")
			e.d.Metrics.SideEffectFailed("commission")
		} else {
			res.Commission = entry
		}
	}

	price := sale.Price
	e.notify(ctx, Event{
		Type:       EventItemSold,
		BusinessID: sale.BusinessID,
		ItemID:     sale.ItemID,
		Identifier: ident,
		ActorID:    actorID,
		LocationID: sale.LocationID,
		SaleID:     sale.ID,
		Price:      &price,
		At:         sale.SoldAt,
	})
}

// saleAgent la venta se atribuye al titular asignado; si no hay, a quien vende.
func saleAgent(item *entity.InventoryItem, actorID string) string {
	if item.AssignedAgentID != nil && *item.AssignedAgentID != "" {
		return *item.AssignedAgentID
	}
	return actorID
}
