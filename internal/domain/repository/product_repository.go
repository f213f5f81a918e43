package repository

import (
	"context"

	"github.com/jhoicas/tenant-stock-api/internal/domain/entity"
)

// ProductRepository puerto del catálogo.
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Product, error)
}
