package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/pdinteriors/catalog-service/internal/model"
	"github.com/pdinteriors/catalog-service/internal/product"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, p *model.Product) error {
	query := `
        INSERT INTO products (
            id, code, name, area, description, manufacturer_description,
            product_details, price, image_url, created_at, updated_at
        )
        VALUES (
            :id, :code, :name, :area, :description, :manufacturer_description,
            :product_details, :price, :image_url, :created_at, :updated_at
        )
    `
	_, err := r.DB.NamedExecContext(ctx, query, p)
	if err != nil {
		var pgErr *pgconn.PgError
		// 23505 = unique_violation; the code index serializes allocation.
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return product.ErrDuplicateCode
		}
		return err
	}
	return nil
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Product, error) {
	var p model.Product
	query := `SELECT * FROM products WHERE id = $1 LIMIT 1`
	err := r.DB.GetContext(ctx, &p, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *PGRepository) FindMaxCodeByPrefix(ctx context.Context, prefix string) (string, error) {
	var code string
	// Longer codes carry larger sequences (padding grows past 999), so order
	// by length before lexicographic value.
	query := `SELECT code FROM products WHERE code LIKE $1 || '%' ORDER BY length(code) DESC, code DESC LIMIT 1`
	err := r.DB.GetContext(ctx, &code, query, prefix)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return code, nil
}

func (r *PGRepository) Search(ctx context.Context, q string, limit int) ([]model.Product, error) {
	products := []model.Product{}

	if limit <= 0 {
		limit = 50
	}

	if q == "" {
		query := `SELECT * FROM products ORDER BY created_at DESC LIMIT $1`
		if err := r.DB.SelectContext(ctx, &products, query, limit); err != nil {
			return nil, err
		}
		return products, nil
	}

	query := `
        SELECT * FROM products
        WHERE code ILIKE $1
           OR name ILIKE $1
           OR description ILIKE $1
           OR manufacturer_description ILIKE $1
           OR product_details ILIKE $1
           OR area ILIKE $1
        ORDER BY created_at DESC
        LIMIT $2
    `
	if err := r.DB.SelectContext(ctx, &products, query, "%"+q+"%", limit); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *PGRepository) FindAll(ctx context.Context, page, pageSize int) ([]model.Product, int, error) {
	var count int
	if err := r.DB.GetContext(ctx, &count, `SELECT count(*) FROM products`); err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	products := []model.Product{}
	query := fmt.Sprintf(
		`SELECT * FROM products ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		pageSize, (page-1)*pageSize,
	)
	if err := r.DB.SelectContext(ctx, &products, query); err != nil {
		return nil, 0, err
	}

	return products, count, nil
}

func (r *PGRepository) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	return err
}
