package repository

import (
	"context"

	"github.com/jhoicas/tenant-stock-api/internal/domain/entity"
)

// LocationRepository puerto de ubicaciones.
type LocationRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Location, error)
	// DefaultForBusiness primero la marcada como default, luego por nombre e id. nil si el negocio no tiene.
	DefaultForBusiness(ctx context.Context, businessID string) (*entity.Location, error)
}
