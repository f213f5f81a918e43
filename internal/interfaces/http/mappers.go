package http

import (
	"github.com/jhoicas/tenant-stock-api/internal/application/dto"
	"github.com/jhoicas/tenant-stock-api/internal/domain/entity"
)

func toItemResponse(i *entity.InventoryItem) dto.ItemResponse {
	return dto.ItemResponse{
		ID:                 i.ID,
		BusinessID:         i.BusinessID,
		Identifier:         i.Identifier,
		ProductID:          i.ProductID,
		LocationID:         i.LocationID,
		ReceivedLocationID: i.ReceivedLocationID,
		SoldLocationID:     i.SoldLocationID,
		Status:             i.Status,
		OrderPrice:         i.OrderPrice,
		SellingPrice:       i.SellingPrice,
		AssignedAgentID:    i.AssignedAgentID,
		Quantity:           i.Quantity,
		SoldAt:             i.SoldAt,
		IsActive:           i.IsActive,
		ReceivedAt:         i.ReceivedAt,
	}
}

func toItemResponsePtr(i *entity.InventoryItem) *dto.ItemResponse {
	if i == nil {
		return nil
	}
	r := toItemResponse(i)
	return &r
}

func toSaleResponse(s *entity.Sale) *dto.SaleResponse {
	if s == nil {
		return nil
	}
	return &dto.SaleResponse{
		ID:            s.ID,
		ItemID:        s.ItemID,
		AgentID:       s.AgentID,
		LocationID:    s.LocationID,
		Price:         s.Price,
		CommissionPct: s.CommissionPct,
		SoldAt:        s.SoldAt,
	}
}

func toCommissionResponse(e *entity.WalletLedgerEntry) *dto.CommissionResponse {
	if e == nil {
		return nil
	}
	return &dto.CommissionResponse{
		ID:        e.ID,
		AgentID:   e.AgentID,
		Amount:    e.Amount,
		Reference: e.Reference,
	}
}

func toAuditResponse(e *entity.AuditEntry) dto.AuditEntryResponse {
	return dto.AuditEntryResponse{
		ID:         e.ID,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		Action:     e.Action,
		ActorID:    e.ActorID,
		At:         e.At,
		Diff:       e.Diff,
		Hash:       e.Hash,
	}
}
