package settings

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
	read := api.Group("", auth.RequirePermission("settings", auth.ActionAccess))
	read.GET("/settings", h.List)
	read.GET("/settings/print-sections", h.GetPrintSections)

	write := api.Group("", auth.RequirePermission("settings", auth.ActionEdit))
	write.POST("/settings", h.Set)
	write.PUT("/settings/print-sections", h.SetPrintSections)
}

// List returns all settings, or a single one with ?key=.
func (h *Handler) List(c echo.Context) error {
	if key := c.QueryParam("key"); key != "" {
		s, err := h.svc.Get(c.Request().Context(), key)
		if err != nil {
			return echo.NewHTTPError(http.StatusNotFound, "setting not found")
		}
		return c.JSON(http.StatusOK, s)
	}
	items, err := h.svc.List(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) Set(c echo.Context) error {
	var s Setting
	if err := c.Bind(&s); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.Set(c.Request().Context(), &s); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, s)
}

func (h *Handler) GetPrintSections(c echo.Context) error {
	sections := h.svc.PrintSections(c.Request().Context())
	if sections == nil {
		sections = []CustomPrintSection{}
	}
	return c.JSON(http.StatusOK, sections)
}

func (h *Handler) SetPrintSections(c echo.Context) error {
	var sections []CustomPrintSection
	if err := c.Bind(&sections); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.SetPrintSections(c.Request().Context(), sections); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, sections)
}
