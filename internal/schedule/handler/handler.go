package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pdinteriors/catalog-service/internal/docgen"
	"github.com/pdinteriors/catalog-service/internal/pkg/logger"
	"github.com/pdinteriors/catalog-service/internal/schedule"
	"github.com/pdinteriors/catalog-service/internal/schedule/dto"
	"go.uber.org/zap"
)

const docxMIME = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

type ScheduleHandler struct {
	uc     schedule.UseCase
	logger logger.ZapLogger
}

func NewScheduleHandler(uc schedule.UseCase, log logger.ZapLogger) *ScheduleHandler {
	return &ScheduleHandler{uc: uc, logger: log}
}

func (h *ScheduleHandler) Register(g *echo.Group) {
	g.POST("/schedules", h.GenerateSchedule)
}

// GenerateSchedule handles POST /api/admin/schedules and streams the rendered
// selection document back as an attachment.
func (h *ScheduleHandler) GenerateSchedule(c echo.Context) error {
	var input dto.GenerateInput
	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Unable to parse selection.")
	}

	doc, err := h.uc.Generate(c.Request().Context(), &input)
	if err != nil {
		var syntaxErr *docgen.SyntaxError
		var loadErr *docgen.LoadError
		switch {
		case errors.As(err, &syntaxErr):
			// Template author error; the message carries the fix.
			return echo.NewHTTPError(http.StatusUnprocessableEntity, syntaxErr.Error())
		case errors.As(err, &loadErr):
			h.logger.Error("selection template unusable", zap.Error(err))
			return echo.NewHTTPError(http.StatusUnprocessableEntity, "The selection template could not be loaded.")
		default:
			h.logger.Error("failed to generate selection document", zap.Error(err))
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+doc.Filename+`"`)
	return c.Blob(http.StatusOK, docxMIME, doc.Bytes)
}
