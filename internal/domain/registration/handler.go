package registration

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
	write := api.Group("", auth.RequirePermission("patients", auth.ActionEdit))
	// One endpoint serves both create and update: a body carrying ids
	// reconciles, one without them registers fresh.
	write.POST("/registrations", h.Save)
	write.PUT("/registrations", h.Save)
}

// Save runs the registration save/reconcile flow and returns the durable
// ids so the editing surface can bridge its placeholders.
func (h *Handler) Save(c echo.Context) error {
	var in Input
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	reg, err := h.svc.Save(c.Request().Context(), &in)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	status := http.StatusOK
	if c.Request().Method == http.MethodPost {
		status = http.StatusCreated
	}
	return c.JSON(status, reg)
}
