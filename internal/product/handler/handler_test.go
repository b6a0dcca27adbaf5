package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/pdinteriors/catalog-service/internal/model"
	"github.com/pdinteriors/catalog-service/internal/pkg/logger"
	"github.com/pdinteriors/catalog-service/internal/product"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// notFoundUseCase stubs only GetProduct; other methods are never reached.
type notFoundUseCase struct {
	product.UseCase
}

func (notFoundUseCase) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	return nil, product.ErrNotFound
}

func TestListAreas(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/areas", nil), rec)

	h := NewProductHandler(nil, nil, logger.NewNop())
	require.NoError(t, h.ListAreas(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"areas":["Kitchen","Bedroom","Living Room","Patio"]}`, rec.Body.String())
}

func TestGetProductNotFound(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/products/nope", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("nope")

	h := NewProductHandler(notFoundUseCase{}, nil, logger.NewNop())
	err := h.GetProduct(c)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.Code)
}
