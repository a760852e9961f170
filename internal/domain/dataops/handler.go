package dataops

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/labdesk/labdesk/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequirePermission("settings", auth.ActionEdit))
	g.DELETE("/data", h.Clear)
	g.GET("/data/export", h.Export)
	g.POST("/data/import", h.Import)
}

// Clear wipes all patients, visits, results and expenses. The test catalog,
// settings and accounts are untouched.
func (h *Handler) Clear(c echo.Context) error {
	if err := h.svc.Clear(c.Request().Context()); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Export(c echo.Context) error {
	a, err := h.svc.Export(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="labdesk-export.json"`)
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) Import(c echo.Context) error {
	var a Archive
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	sum, err := h.svc.Import(c.Request().Context(), &a)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, sum)
}
