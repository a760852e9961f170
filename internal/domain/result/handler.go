package result

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/labdesk/labdesk/internal/platform/auth"
	"github.com/labdesk/labdesk/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequirePermission("results", auth.ActionView))
	read.GET("/test-results", h.List)
	read.GET("/test-results/:id", h.Get)

	write := api.Group("", auth.RequirePermission("results", auth.ActionEdit))
	write.POST("/test-results", h.Create)
	write.PUT("/test-results/batch", h.BatchUpdate)
	write.PUT("/test-results/:id", h.Update)
	write.DELETE("/test-results/:id", h.Delete)
}

func (h *Handler) Create(c echo.Context) error {
	var tr TestResult
	if err := c.Bind(&tr); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.Create(c.Request().Context(), &tr); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, tr)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	tr, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "result not found")
	}
	return c.JSON(http.StatusOK, tr)
}

func (h *Handler) List(c echo.Context) error {
	if vid := c.QueryParam("visitId"); vid != "" {
		visitID, err := uuid.Parse(vid)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid visitId")
		}
		items, err := h.svc.ListByVisit(c.Request().Context(), visitID)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, map[string]interface{}{"data": items, "total": len(items)})
	}

	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var tr TestResult
	if err := c.Bind(&tr); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	tr.ID = id
	if err := h.svc.Update(c.Request().Context(), &tr); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, tr)
}

func (h *Handler) BatchUpdate(c echo.Context) error {
	var items []BatchItem
	if err := c.Bind(&items); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if len(items) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "empty batch")
	}
	if err := h.svc.BatchUpdate(c.Request().Context(), items); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"updated": len(items)})
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
