package dashboard

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

// RegisterRoutes mounts the layout endpoints. No extra permission guard:
// every signed-in user has a dashboard, and List already filters tiles by
// the caller's grants.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/dashboard-layouts", h.List)
	api.POST("/dashboard-layouts/init", h.Init)
	api.PUT("/dashboard-layouts/:sectionName", h.Update)
}

// List returns the tiles visible to the calling principal.
func (h *Handler) List(c echo.Context) error {
	var perms auth.PermissionSet
	if p, ok := c.Get("principal").(*auth.Principal); ok && p != nil {
		perms = p.Permissions
	}
	items, err := h.svc.VisibleFor(c.Request().Context(), perms)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

// Init forces default installation and returns the full tile set.
func (h *Handler) Init(c echo.Context) error {
	items, err := h.svc.List(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

// updateRequest carries any combination of a geometry commit, a rename and
// a recolor; absent fields are left untouched.
type updateRequest struct {
	PositionX   *int    `json:"position_x,omitempty"`
	PositionY   *int    `json:"position_y,omitempty"`
	Width       *int    `json:"width,omitempty"`
	Height      *int    `json:"height,omitempty"`
	DisplayName *string `json:"display_name,omitempty"`
	Color       *string `json:"color,omitempty"`
}

func (h *Handler) Update(c echo.Context) error {
	sectionName := c.Param("sectionName")
	var req updateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	var out *Layout
	var err error

	if req.PositionX != nil || req.PositionY != nil || req.Width != nil || req.Height != nil {
		if req.PositionX == nil || req.PositionY == nil || req.Width == nil || req.Height == nil {
			return echo.NewHTTPError(http.StatusBadRequest, "geometry updates require position_x, position_y, width and height")
		}
		out, err = h.svc.CommitLayout(ctx, sectionName, LayoutChange{
			PositionX: *req.PositionX,
			PositionY: *req.PositionY,
			Width:     *req.Width,
			Height:    *req.Height,
		})
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	if req.DisplayName != nil {
		out, err = h.svc.Rename(ctx, sectionName, *req.DisplayName)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	if req.Color != nil {
		out, err = h.svc.Recolor(ctx, sectionName, *req.Color)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	if out == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "no fields to update")
	}
	return c.JSON(http.StatusOK, out)
}
