package handler

import (
	"errors"
	"io"
	"net/http"
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pdinteriors/catalog-service/internal/model"
	"github.com/pdinteriors/catalog-service/internal/pkg/blob"
	"github.com/pdinteriors/catalog-service/internal/pkg/logger"
	"github.com/pdinteriors/catalog-service/internal/product"
	"github.com/pdinteriors/catalog-service/internal/product/dto"
	"go.uber.org/zap"
)

const maxImageSize = 10 << 20 // 10 MB

var keyUnsafe = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

type ProductHandler struct {
	uc     product.UseCase
	blobs  blob.Storage
	logger logger.ZapLogger
}

func NewProductHandler(uc product.UseCase, blobs blob.Storage, log logger.ZapLogger) *ProductHandler {
	return &ProductHandler{
		uc:     uc,
		blobs:  blobs,
		logger: log,
	}
}

func (h *ProductHandler) Register(g *echo.Group) {
	g.GET("/areas", h.ListAreas)
	g.GET("/products", h.SearchProducts)
	g.POST("/products", h.CreateProduct)
	g.GET("/products/:id", h.GetProduct)
	g.DELETE("/products/:id", h.DeleteProduct)
}

// ListAreas returns the fixed area set, for the create-product form.
func (h *ProductHandler) ListAreas(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"areas": model.Areas()})
}

// SearchProducts handles GET /api/admin/products?q=...
// Without q it returns the newest products; with page/pageSize it pages the
// full catalog instead.
func (h *ProductHandler) SearchProducts(c echo.Context) error {
	if c.QueryParam("page") != "" {
		page, _ := strconv.Atoi(c.QueryParam("page"))
		pageSize, _ := strconv.Atoi(c.QueryParam("pageSize"))
		products, total, err := h.uc.ListProducts(c.Request().Context(), page, pageSize)
		if err != nil {
			h.logger.Error("failed to list products", zap.Error(err))
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch products")
		}
		return c.JSON(http.StatusOK, echo.Map{"products": products, "total": total})
	}

	q := c.QueryParam("q")
	products, err := h.uc.SearchProducts(c.Request().Context(), q)
	if err != nil {
		h.logger.Error("failed to search products", zap.Error(err), zap.String("q", q))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch products")
	}
	return c.JSON(http.StatusOK, echo.Map{"products": products})
}

// CreateProduct handles POST /api/admin/products (multipart/form-data).
func (h *ProductHandler) CreateProduct(c echo.Context) error {
	name := strings.TrimSpace(c.FormValue("name"))
	area := c.FormValue("area")
	description := strings.TrimSpace(c.FormValue("description"))

	if name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Product name is required.")
	}
	prefix, err := model.PrefixForArea(area)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Area is required.")
	}
	if description == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Description is required.")
	}

	var price *float64
	if raw := strings.TrimSpace(c.FormValue("price")); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "Price must be a non-negative number.")
		}
		price = &v
	}

	file, err := c.FormFile("image")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Image is required.")
	}
	if file.Size > maxImageSize {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "Image is too large.")
	}

	src, err := file.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Unable to read image.")
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxImageSize+1))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Unable to read image.")
	}
	if len(data) > maxImageSize {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "Image is too large.")
	}

	contentType := file.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	filename := keyUnsafe.ReplaceAllString(path.Base(file.Filename), "-")
	if filename == "" || filename == "." {
		filename = "image"
	}
	key := strings.Join([]string{
		"products", prefix,
		strconv.FormatInt(time.Now().UnixMilli(), 10) + "-" + uuid.New().String()[:8] + "-" + filename,
	}, "/")

	imageURL, err := h.blobs.Put(c.Request().Context(), key, data, contentType)
	if err != nil {
		h.logger.Error("failed to store product image", zap.Error(err), zap.String("key", key))
		return echo.NewHTTPError(http.StatusInternalServerError, "Upload failed.")
	}

	input := &dto.CreateProductInput{
		Name:                    name,
		Area:                    area,
		Description:             description,
		ManufacturerDescription: strings.TrimSpace(c.FormValue("manufacturerDescription")),
		ProductDetails:          strings.TrimSpace(c.FormValue("productDetails")),
		Price:                   price,
		ImageURL:                imageURL,
	}

	p, err := h.uc.CreateProduct(c.Request().Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrInvalidArea):
			return echo.NewHTTPError(http.StatusBadRequest, "Area is required.")
		case errors.Is(err, product.ErrAllocationConflict):
			return echo.NewHTTPError(http.StatusConflict, "Could not allocate a product code, please retry.")
		default:
			h.logger.Error("failed to create product", zap.Error(err))
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create product.")
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"product": p})
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	p, err := h.uc.GetProduct(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Product not found.")
		}
		h.logger.Error("failed to fetch product", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch product.")
	}
	return c.JSON(http.StatusOK, echo.Map{"product": p})
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	if err := h.uc.DeleteProduct(c.Request().Context(), c.Param("id")); err != nil {
		h.logger.Error("failed to delete product", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete product.")
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}
