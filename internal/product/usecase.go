package product

import (
	"context"

	"github.com/pdinteriors/catalog-service/internal/model"
	"github.com/pdinteriors/catalog-service/internal/product/dto"
)

type UseCase interface {
	CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error)
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	SearchProducts(ctx context.Context, q string) ([]model.Product, error)
	ListProducts(ctx context.Context, page, pageSize int) ([]model.Product, int, error)
	DeleteProduct(ctx context.Context, id string) error
}
