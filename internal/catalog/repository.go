package catalog

import (
	"context"

	"github.com/flangoapp/flango-pos-service/internal/catalog/dto"
	"github.com/flangoapp/flango-pos-service/internal/model"
)

type Repository interface {
	FindByID(ctx context.Context, id string) (*model.Product, error)
	FindAll(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, error)
	Create(ctx context.Context, p *model.Product) error
	Update(ctx context.Context, p *model.Product) error
	SetEnabled(ctx context.Context, id string, enabled bool) error
}
