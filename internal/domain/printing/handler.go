package printing

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
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
	printGroup := api.Group("", auth.RequirePermission("results", auth.ActionPrint))
	printGroup.GET("/visits/:id/print", h.PrintResultSheet)
}

// PrintResultSheet renders the visit's results as a standalone printable
// HTML document. ?perPage= forces a fixed result count per page.
func (h *Handler) PrintResultSheet(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid visit id")
	}

	perPage := 0
	if raw := c.QueryParam("perPage"); raw != "" {
		perPage, err = strconv.Atoi(raw)
		if err != nil || perPage < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "perPage must be a positive integer")
		}
	}

	html, err := h.svc.ResultSheet(c.Request().Context(), id, perPage)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.HTML(http.StatusOK, html)
}
