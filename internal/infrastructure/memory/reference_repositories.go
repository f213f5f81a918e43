package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/jhoicas/tenant-stock-api/internal/domain/entity"
	"github.com/jhoicas/tenant-stock-api/internal/domain/repository"
)

var (
	_ repository.BusinessRepository   = (*BusinessRepo)(nil)
	_ repository.MembershipRepository = (*MembershipRepo)(nil)
	_ repository.LocationRepository   = (*LocationRepo)(nil)
	_ repository.ProductRepository    = (*ProductRepo)(nil)
	_ repository.UserRepository       = (*UserRepo)(nil)
)

// BusinessRepo negocios en memoria.
type BusinessRepo struct{ s *Store }

// NewBusinessRepository construye el adaptador.
func NewBusinessRepository(s *Store) *BusinessRepo { return &BusinessRepo{s: s} }

func (r *BusinessRepo) GetByID(_ context.Context, id string) (*entity.Business, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	b, ok := r.s.businesses[id]
	if !ok {
		return nil, nil
	}
	c := *b
	return &c, nil
}

func (r *BusinessRepo) GetBySubdomain(_ context.Context, subdomain string) (*entity.Business, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, b := range r.s.businesses {
		if b.Subdomain != "" && strings.EqualFold(b.Subdomain, subdomain) {
			c := *b
			return &c, nil
		}
	}
	return nil, nil
}

// MembershipRepo membresías en memoria.
type MembershipRepo struct{ s *Store }

// NewMembershipRepository construye el adaptador.
func NewMembershipRepository(s *Store) *MembershipRepo { return &MembershipRepo{s: s} }

func (r *MembershipRepo) Get(_ context.Context, userID, businessID string) (*entity.Membership, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	m, ok := r.s.memberships[key(userID, businessID)]
	if !ok {
		return nil, nil
	}
	c := *m
	return &c, nil
}

func (r *MembershipRepo) ListActiveByUser(_ context.Context, userID string) ([]*entity.Membership, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.Membership
	for _, m := range r.s.memberships {
		if m.UserID != userID || !m.IsActive() {
			continue
		}
		if b, ok := r.s.businesses[m.BusinessID]; !ok || !b.IsActive() {
			continue
		}
		c := *m
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BusinessID < out[j].BusinessID })
	return out, nil
}

// LocationRepo ubicaciones en memoria.
type LocationRepo struct{ s *Store }

// NewLocationRepository construye el adaptador.
func NewLocationRepository(s *Store) *LocationRepo { return &LocationRepo{s: s} }

func (r *LocationRepo) GetByID(_ context.Context, id string) (*entity.Location, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	l, ok := r.s.locations[id]
	if !ok {
		return nil, nil
	}
	c := *l
	return &c, nil
}

// DefaultForBusiness mismo orden que la consulta SQL: is_default DESC, name, id.
func (r *LocationRepo) DefaultForBusiness(_ context.Context, businessID string) (*entity.Location, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var all []*entity.Location
	for _, l := range r.s.locations {
		if l.BusinessID == businessID {
			all = append(all, l)
		}
	}
	if len(all) == 0 {
		return nil, nil
	}
	sort.Slice(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if a.IsDefault != b.IsDefault {
			return a.IsDefault
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
	c := *all[0]
	return &c, nil
}

// ProductRepo catálogo en memoria.
type ProductRepo struct{ s *Store }

// NewProductRepository construye el adaptador.
func NewProductRepository(s *Store) *ProductRepo { return &ProductRepo{s: s} }

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	c := *p
	return &c, nil
}

// UserRepo usuarios en memoria.
type UserRepo struct{ s *Store }

// NewUserRepository construye el adaptador.
func NewUserRepository(s *Store) *UserRepo { return &UserRepo{s: s} }

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	c := *u
	return &c, nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			c := *u
			return &c, nil
		}
	}
	return nil, nil
}
