package product

import (
	"context"

	"github.com/pdinteriors/catalog-service/internal/model"
)

type Repository interface {
	// Create inserts the product. Returns ErrDuplicateCode when the code
	// collides with an existing one.
	Create(ctx context.Context, product *model.Product) error
	FindByID(ctx context.Context, id string) (*model.Product, error)
	// FindMaxCodeByPrefix returns the greatest code starting with prefix,
	// or "" when no such product exists.
	FindMaxCodeByPrefix(ctx context.Context, prefix string) (string, error)
	// Search matches q case-insensitively against code, name, description,
	// manufacturer description, product details and area, newest first.
	Search(ctx context.Context, q string, limit int) ([]model.Product, error)
	FindAll(ctx context.Context, page, pageSize int) ([]model.Product, int, error)
	Delete(ctx context.Context, id string) error
}
