package usecase

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pdinteriors/catalog-service/internal/model"
	"github.com/pdinteriors/catalog-service/internal/pkg/cache"
	"github.com/pdinteriors/catalog-service/internal/pkg/logger"
	"github.com/pdinteriors/catalog-service/internal/pkg/search"
	"github.com/pdinteriors/catalog-service/internal/product"
	"github.com/pdinteriors/catalog-service/internal/product/dto"
	"go.uber.org/zap"
)

// maxAllocationAttempts bounds the read-max/insert retry loop on code
// collisions between concurrent writers.
const maxAllocationAttempts = 5

const searchIndexName = "products"

type productUseCase struct {
	repo   product.Repository
	cache  *cache.RedisClient
	es     *search.Client
	logger logger.ZapLogger
}

func NewProductUseCase(repo product.Repository, cache *cache.RedisClient, es *search.Client, log logger.ZapLogger) product.UseCase {
	return &productUseCase{
		repo:   repo,
		cache:  cache,
		es:     es,
		logger: log,
	}
}

func (uc *productUseCase) CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, errors.New("product name is required")
	}
	if strings.TrimSpace(input.Description) == "" {
		return nil, errors.New("description is required")
	}
	if input.Price != nil && *input.Price < 0 {
		return nil, errors.New("price must not be negative")
	}

	prefix, err := model.PrefixForArea(input.Area)
	if err != nil {
		return nil, err
	}

	now := time.Now()

	manufacturerDescription := optional(input.ManufacturerDescription)
	productDetails := optional(input.ProductDetails)

	p := &model.Product{
		BaseModel:               model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		Name:                    strings.TrimSpace(input.Name),
		Area:                    input.Area,
		Description:             input.Description,
		ManufacturerDescription: manufacturerDescription,
		ProductDetails:          productDetails,
		Price:                   input.Price,
		ImageURL:                input.ImageURL,
	}

	// Read-max then insert is racy on its own; the unique index on code plus
	// this bounded retry makes allocation collision-safe.
	for attempt := 0; attempt < maxAllocationAttempts; attempt++ {
		latest, err := uc.repo.FindMaxCodeByPrefix(ctx, prefix)
		if err != nil {
			return nil, err
		}
		p.Code = model.NextCode(prefix, latest)

		err = uc.repo.Create(ctx, p)
		if err == nil {
			go uc.invalidateSearchCache(context.Background())
			go uc.syncToElastic(context.Background(), p)
			return p, nil
		}
		if !errors.Is(err, product.ErrDuplicateCode) {
			return nil, err
		}
		uc.logger.Warn("code collision, retrying allocation",
			zap.String("code", p.Code), zap.Int("attempt", attempt+1))
	}

	return nil, product.ErrAllocationConflict
}

func (uc *productUseCase) syncToElastic(ctx context.Context, p *model.Product) {
	if uc.es == nil {
		return
	}

	mapping := `{
		"mappings": {
			"properties": {
				"code": { "type": "keyword" },
				"name": { "type": "text" },
				"area": { "type": "text" },
				"description": { "type": "text" },
				"manufacturer_description": { "type": "text" },
				"product_details": { "type": "text" },
				"price": { "type": "double" },
				"created_at": { "type": "date" }
			}
		}
	}`
	_ = uc.es.CreateIndex(ctx, searchIndexName, mapping)

	if err := uc.es.Index(ctx, searchIndexName, p.ID, p); err != nil {
		uc.logger.Error("failed to index product", zap.Error(err))
	}
}

func (uc *productUseCase) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	p, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, product.ErrNotFound
	}
	return p, nil
}

func (uc *productUseCase) SearchProducts(ctx context.Context, q string) ([]model.Product, error) {
	q = strings.TrimSpace(q)

	cacheKey := uc.searchCacheKey(q)
	if uc.cache != nil {
		if val, err := uc.cache.Client.Get(ctx, cacheKey).Result(); err == nil {
			var cached []model.Product
			if err := json.Unmarshal([]byte(val), &cached); err == nil {
				return cached, nil
			}
		}
	}

	if q != "" && uc.es != nil {
		query := map[string]interface{}{
			"query": map[string]interface{}{
				"query_string": map[string]interface{}{
					"query":  fmt.Sprintf("*%s*", q),
					"fields": []string{"code^3", "name^3", "description", "manufacturer_description", "product_details", "area"},
				},
			},
			"sort": []map[string]interface{}{
				{"created_at": map[string]interface{}{"order": "desc"}},
			},
			"size": 50,
		}

		res, err := uc.es.Search(ctx, searchIndexName, query)
		if err == nil {
			products := []model.Product{}
			for _, hit := range res.Hits.Hits {
				var p model.Product
				if err := json.Unmarshal(hit.Source, &p); err == nil {
					products = append(products, p)
				}
			}
			uc.fillSearchCache(ctx, cacheKey, products)
			return products, nil
		}
		uc.logger.Error("ES search failed, falling back to DB", zap.Error(err))
	}

	products, err := uc.repo.Search(ctx, q, 50)
	if err != nil {
		return nil, err
	}

	uc.fillSearchCache(ctx, cacheKey, products)
	return products, nil
}

func (uc *productUseCase) ListProducts(ctx context.Context, page, pageSize int) ([]model.Product, int, error) {
	return uc.repo.FindAll(ctx, page, pageSize)
}

func (uc *productUseCase) DeleteProduct(ctx context.Context, id string) error {
	p, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return nil // Already deleted
	}

	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}

	go uc.invalidateSearchCache(context.Background())
	if uc.es != nil {
		go func() {
			if err := uc.es.Delete(context.Background(), searchIndexName, id); err != nil {
				uc.logger.Error("failed to delete product from ES", zap.Error(err))
			}
		}()
	}

	return nil
}

func (uc *productUseCase) searchCacheKey(q string) string {
	return fmt.Sprintf("products:search:%x", md5.Sum([]byte(strings.ToLower(q))))
}

func (uc *productUseCase) fillSearchCache(ctx context.Context, key string, products []model.Product) {
	if uc.cache == nil {
		return
	}
	if data, err := json.Marshal(products); err == nil {
		uc.cache.Client.Set(ctx, key, data, 5*time.Minute)
	}
}

func (uc *productUseCase) invalidateSearchCache(ctx context.Context) {
	if uc.cache == nil {
		return
	}
	keys, err := uc.cache.Client.Keys(ctx, "products:search:*").Result()
	if err == nil && len(keys) > 0 {
		uc.cache.Client.Del(ctx, keys...)
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
