package repository

import (
	"context"

	"github.com/jhoicas/tenant-stock-api/internal/domain/entity"
)

// BusinessRepository puerto de lectura de negocios. Los getters devuelven (nil, nil) si no existe.
type BusinessRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Business, error)
	GetBySubdomain(ctx context.Context, subdomain string) (*entity.Business, error)
}
