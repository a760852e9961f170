package auth

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type contextKey string

const principalKey contextKey = "principal"

// Principal is the authenticated user attached to a request.
type Principal struct {
	ID          uuid.UUID
	Username    string
	DisplayName string
	Permissions PermissionSet
}

// PrincipalResolver loads the full principal (including the permissions
// blob) for a session's user id. Implemented by the accounts service and
// adapted in main to avoid an import cycle.
type PrincipalResolver interface {
	Resolve(ctx context.Context, userID uuid.UUID) (*Principal, error)
}

// RequireSession authenticates the request from the session cookie. Requests
// without a valid, unrevoked session receive 401.
func RequireSession(sm *SessionManager, resolver PrincipalResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}

			claims, err := sm.Parse(cookie.Value)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired session")
			}

			userID, err := uuid.Parse(claims.Subject)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid session subject")
			}

			principal, err := resolver.Resolve(c.Request().Context(), userID)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "unknown account")
			}

			ctx := context.WithValue(c.Request().Context(), principalKey, principal)
			c.SetRequest(c.Request().WithContext(ctx))
			c.Set("principal", principal)
			c.Set("session_claims", claims)

			return next(c)
		}
	}
}

// RequirePermission guards a route group with a section/action permission
// check against the authenticated principal. Must run after RequireSession.
func RequirePermission(section, action string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := c.Get("principal").(*Principal)
			if !ok || p == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			if !p.Permissions.Allows(section, action) {
				return echo.NewHTTPError(http.StatusForbidden, "insufficient permissions")
			}
			return next(c)
		}
	}
}

// PrincipalFromContext retrieves the authenticated principal, or nil.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey).(*Principal)
	return p
}
