package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/tenant-stock-api/internal/domain"
	"github.com/jhoicas/tenant-stock-api/internal/domain/entity"
	"github.com/jhoicas/tenant-stock-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo ventas sobre PostgreSQL (pool o tx).
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// Create inserta la venta; (item_id, sold_at) duplicado -> domain.ErrDuplicate.
func (r *SaleRepo) Create(ctx context.Context, s *entity.Sale) error {
	query := `
		INSERT INTO sales (id, business_id, item_id, agent_id, location_id, price, commission_pct, sold_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		s.ID, s.BusinessID, s.ItemID, s.AgentID, s.LocationID, s.Price, s.CommissionPct, s.SoldAt, s.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert sale: %w", err)
	}
	return nil
}

// LatestByItem última venta del ítem o nil.
func (r *SaleRepo) LatestByItem(ctx context.Context, itemID string) (*entity.Sale, error) {
	query := `
		SELECT id, business_id, item_id, agent_id, location_id, price, commission_pct, sold_at, created_at
		FROM sales WHERE item_id = $1
		ORDER BY sold_at DESC, created_at DESC
		LIMIT 1`
	var s entity.Sale
	err := r.q.QueryRow(ctx, query, itemID).Scan(
		&s.ID, &s.BusinessID, &s.ItemID, &s.AgentID, &s.LocationID, &s.Price, &s.CommissionPct, &s.SoldAt, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get latest sale: %w", err)
	}
	return &s, nil
}
