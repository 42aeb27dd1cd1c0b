package catalog

import (
	"context"

	"github.com/flangoapp/flango-pos-service/internal/catalog/dto"
	"github.com/flangoapp/flango-pos-service/internal/model"
)

type UseCase interface {
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	ListProducts(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, error)
	CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error)
	UpdateProduct(ctx context.Context, input *dto.UpdateProductInput) (*model.Product, error)
	SetProductEnabled(ctx context.Context, id string, enabled bool) error
}
