package memory

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/tenant-stock-api/internal/domain/entity"
)

// Tenant negocio de arranque del modo en memoria: el negocio ACTIVE, una ubicación
// por defecto, el dueño con membresía OWNER y un producto del negocio.
type Tenant struct {
	BusinessName  string
	Subdomain     string
	LocationName  string
	OwnerEmail    string
	OwnerName     string
	OwnerPassword string
	ProductModel  string // vacío = sin producto
}

// Seeded IDs generados por Bootstrap.
type Seeded struct {
	BusinessID string
	LocationID string
	OwnerID    string
	ProductID  string
}

// Bootstrap carga el negocio de arranque en el store.
func Bootstrap(s *Store, t Tenant) (*Seeded, error) {
	email := strings.ToLower(strings.TrimSpace(t.OwnerEmail))
	if strings.TrimSpace(t.BusinessName) == "" || email == "" || t.OwnerPassword == "" {
		return nil, errors.New("nombre del negocio, email y password del dueño son requeridos")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(t.OwnerPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	locName := strings.TrimSpace(t.LocationName)
	if locName == "" {
		locName = "Principal"
	}

	now := time.Now().UTC()
	out := &Seeded{
		BusinessID: uuid.New().String(),
		LocationID: uuid.New().String(),
		OwnerID:    uuid.New().String(),
	}
	s.AddBusiness(&entity.Business{
		ID: out.BusinessID, Name: t.BusinessName, Subdomain: strings.ToLower(strings.TrimSpace(t.Subdomain)),
		Status: entity.BusinessStatusActive, CreatedAt: now, UpdatedAt: now,
	})
	s.AddLocation(&entity.Location{
		ID: out.LocationID, BusinessID: out.BusinessID, Name: locName, IsDefault: true,
		CreatedAt: now, UpdatedAt: now,
	})
	s.AddUser(&entity.User{
		ID: out.OwnerID, Email: email, PasswordHash: string(hash), Name: t.OwnerName,
		Status: entity.UserStatusActive, CreatedAt: now, UpdatedAt: now,
	})
	s.AddMembership(&entity.Membership{
		ID: uuid.New().String(), UserID: out.OwnerID, BusinessID: out.BusinessID,
		Role: entity.RoleOwner, Status: entity.MembershipActive, CreatedAt: now, UpdatedAt: now,
	})
	if model := strings.TrimSpace(t.ProductModel); model != "" {
		out.ProductID = uuid.New().String()
		biz := out.BusinessID
		s.AddProduct(&entity.Product{
			ID: out.ProductID, BusinessID: &biz, Brand: t.BusinessName, Model: model,
			CreatedAt: now, UpdatedAt: now,
		})
	}
	return out, nil
}
