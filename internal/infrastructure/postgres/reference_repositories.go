package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/tenant-stock-api/internal/domain/entity"
	"github.com/jhoicas/tenant-stock-api/internal/domain/repository"
)

var (
	_ repository.BusinessRepository   = (*BusinessRepo)(nil)
	_ repository.MembershipRepository = (*MembershipRepo)(nil)
	_ repository.LocationRepository   = (*LocationRepo)(nil)
)

// BusinessRepo negocios (solo lectura).
type BusinessRepo struct {
	q Querier
}

// NewBusinessRepository construye el adaptador.
func NewBusinessRepository(q Querier) *BusinessRepo {
	return &BusinessRepo{q: q}
}

const businessColumns = `id, name, slug, COALESCE(subdomain, ''), status, created_at, updated_at`

func scanBusiness(row pgx.Row) (*entity.Business, error) {
	var b entity.Business
	if err := row.Scan(&b.ID, &b.Name, &b.Slug, &b.Subdomain, &b.Status, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

// GetByID obtiene un negocio por ID.
func (r *BusinessRepo) GetByID(ctx context.Context, id string) (*entity.Business, error) {
	b, err := scanBusiness(r.q.QueryRow(ctx, `SELECT `+businessColumns+` FROM businesses WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get business: %w", err)
	}
	return b, nil
}

// GetBySubdomain obtiene un negocio por subdominio (sin distinguir mayúsculas).
func (r *BusinessRepo) GetBySubdomain(ctx context.Context, subdomain string) (*entity.Business, error) {
	if subdomain == "" {
		return nil, nil
	}
	b, err := scanBusiness(r.q.QueryRow(ctx, `SELECT `+businessColumns+` FROM businesses WHERE lower(subdomain) = lower($1)`, subdomain))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get business by subdomain: %w", err)
	}
	return b, nil
}

// MembershipRepo membresías (solo lectura).
type MembershipRepo struct {
	q Querier
}

// NewMembershipRepository construye el adaptador.
func NewMembershipRepository(q Querier) *MembershipRepo {
	return &MembershipRepo{q: q}
}

const membershipColumns = `m.id, m.user_id, m.business_id, m.role, m.status, m.location_id, m.created_at, m.updated_at`

func scanMembership(row pgx.Row) (*entity.Membership, error) {
	var m entity.Membership
	if err := row.Scan(&m.ID, &m.UserID, &m.BusinessID, &m.Role, &m.Status, &m.LocationID, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

// Get membresía del usuario en el negocio, en cualquier estado.
func (r *MembershipRepo) Get(ctx context.Context, userID, businessID string) (*entity.Membership, error) {
	query := `SELECT ` + membershipColumns + ` FROM memberships m WHERE m.user_id = $1 AND m.business_id = $2`
	m, err := scanMembership(r.q.QueryRow(ctx, query, userID, businessID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get membership: %w", err)
	}
	return m, nil
}

// ListActiveByUser membresías ACTIVE del usuario en negocios ACTIVE.
func (r *MembershipRepo) ListActiveByUser(ctx context.Context, userID string) ([]*entity.Membership, error) {
	query := `
		SELECT ` + membershipColumns + `
		FROM memberships m
		JOIN businesses b ON b.id = m.business_id
		WHERE m.user_id = $1 AND m.status = 'ACTIVE' AND b.status = 'ACTIVE'
		ORDER BY m.business_id`
	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	defer rows.Close()
	var out []*entity.Membership
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, fmt.Errorf("scan membership: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// LocationRepo ubicaciones (solo lectura).
type LocationRepo struct {
	q Querier
}

// NewLocationRepository construye el adaptador.
func NewLocationRepository(q Querier) *LocationRepo {
	return &LocationRepo{q: q}
}

const locationColumns = `id, business_id, name, city, latitude, longitude, is_default, created_at, updated_at`

func scanLocation(row pgx.Row) (*entity.Location, error) {
	var l entity.Location
	if err := row.Scan(&l.ID, &l.BusinessID, &l.Name, &l.City, &l.Latitude, &l.Longitude, &l.IsDefault, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return nil, err
	}
	return &l, nil
}

// GetByID obtiene una ubicación por ID.
func (r *LocationRepo) GetByID(ctx context.Context, id string) (*entity.Location, error) {
	l, err := scanLocation(r.q.QueryRow(ctx, `SELECT `+locationColumns+` FROM locations WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get location: %w", err)
	}
	return l, nil
}

// DefaultForBusiness la marcada como default; si no hay, la primera por nombre y luego id.
func (r *LocationRepo) DefaultForBusiness(ctx context.Context, businessID string) (*entity.Location, error) {
	query := `SELECT ` + locationColumns + ` FROM locations WHERE business_id = $1
		ORDER BY is_default DESC, name ASC, id ASC LIMIT 1`
	l, err := scanLocation(r.q.QueryRow(ctx, query, businessID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get default location: %w", err)
	}
	return l, nil
}
