package account

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/labdesk/labdesk/internal/platform/auth"
)

type Handler struct {
	svc      *Service
	sessions *auth.SessionManager
}

func NewHandler(svc *Service, sessions *auth.SessionManager) *Handler {
	return &Handler{svc: svc, sessions: sessions}
}

// RegisterPublicRoutes wires the endpoints that must work without a session.
func (h *Handler) RegisterPublicRoutes(public *echo.Group) {
	public.POST("/auth/login", h.Login)
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/auth/logout", h.Logout)
	api.GET("/auth/session", h.Session)

	read := api.Group("", auth.RequirePermission("accounts", auth.ActionAccess))
	read.GET("/users", h.List)
	read.GET("/users/:id", h.Get)

	write := api.Group("", auth.RequirePermission("accounts", auth.ActionEdit))
	write.POST("/users", h.Create)
	write.PUT("/users/:id", h.Update)
	write.DELETE("/users/:id", h.Delete)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login verifies credentials and sets the session cookie.
func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	u, err := h.svc.Authenticate(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	token, expires, err := h.sessions.Issue(u.ID, u.Username)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not start session")
	}
	c.SetCookie(&http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return c.JSON(http.StatusOK, u)
}

// Logout revokes the current session and clears the cookie.
func (h *Handler) Logout(c echo.Context) error {
	if claims, ok := c.Get("session_claims").(*auth.SessionClaims); ok && claims != nil {
		h.sessions.Revoke(claims)
	}
	c.SetCookie(&http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return c.NoContent(http.StatusNoContent)
}

// Session returns the authenticated principal, letting the client restore
// state after a reload.
func (h *Handler) Session(c echo.Context) error {
	p, ok := c.Get("principal").(*auth.Principal)
	if !ok || p == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return c.JSON(http.StatusOK, p)
}

type userRequest struct {
	DisplayName string             `json:"display_name"`
	Username    string             `json:"username"`
	Password    string             `json:"password"`
	Permissions auth.PermissionSet `json:"permissions"`
}

func (h *Handler) Create(c echo.Context) error {
	var req userRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	u := &User{
		DisplayName: req.DisplayName,
		Username:    req.Username,
		Permissions: req.Permissions,
	}
	if err := h.svc.Create(c.Request().Context(), u, req.Password); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, u)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	u, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) List(c echo.Context) error {
	items, err := h.svc.List(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

// Update edits an account. A password change invalidates every live session
// of that account.
func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	var req userRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	u := &User{
		ID:          id,
		DisplayName: req.DisplayName,
		Username:    req.Username,
		Permissions: req.Permissions,
	}
	if err := h.svc.Update(c.Request().Context(), u, req.Password); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Password != "" {
		h.sessions.RevokeAllForUser(id)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	h.sessions.RevokeAllForUser(id)
	return c.NoContent(http.StatusNoContent)
}
