package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type staticResolver struct {
	principals map[uuid.UUID]*Principal
}

func (r *staticResolver) Resolve(_ context.Context, userID uuid.UUID) (*Principal, error) {
	p, ok := r.principals[userID]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return p, nil
}

func sessionRequest(t *testing.T, m *SessionManager, userID uuid.UUID) *http.Request {
	t.Helper()
	token, _, err := m.Issue(userID, "tech")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	return req
}

func TestRequireSession_ValidCookie(t *testing.T) {
	m := NewSessionManager([]byte("test-secret"), time.Hour)
	defer m.Close()

	userID := uuid.New()
	resolver := &staticResolver{principals: map[uuid.UUID]*Principal{
		userID: {ID: userID, Username: "tech"},
	}}

	e := echo.New()
	req := sessionRequest(t, m, userID)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error {
		p := c.Get("principal").(*Principal)
		if p.Username != "tech" {
			t.Errorf("expected principal tech, got %s", p.Username)
		}
		if PrincipalFromContext(c.Request().Context()) == nil {
			t.Error("expected principal in request context")
		}
		return c.NoContent(http.StatusOK)
	}

	if err := RequireSession(m, resolver)(handler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRequireSession_MissingCookie(t *testing.T) {
	m := NewSessionManager([]byte("test-secret"), time.Hour)
	defer m.Close()
	resolver := &staticResolver{principals: map[uuid.UUID]*Principal{}}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := RequireSession(m, resolver)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})(c)

	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestRequireSession_UnknownAccount(t *testing.T) {
	m := NewSessionManager([]byte("test-secret"), time.Hour)
	defer m.Close()
	resolver := &staticResolver{principals: map[uuid.UUID]*Principal{}}

	e := echo.New()
	req := sessionRequest(t, m, uuid.New())
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := RequireSession(m, resolver)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})(c)

	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for deleted account, got %v", err)
	}
}

func TestRequirePermission(t *testing.T) {
	e := echo.New()

	run := func(p *Principal, section, action string) error {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if p != nil {
			c.Set("principal", p)
		}
		return RequirePermission(section, action)(func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		})(c)
	}

	// Legacy account, nil permissions: everything allowed.
	if err := run(&Principal{Username: "legacy"}, "patients", "edit"); err != nil {
		t.Errorf("expected legacy principal to pass, got %v", err)
	}

	// Scoped account: granted section passes, missing flag is forbidden.
	scoped := &Principal{
		Username:    "tech",
		Permissions: PermissionSet{"results": {View: true, Edit: true}},
	}
	if err := run(scoped, "results", "edit"); err != nil {
		t.Errorf("expected results.edit to pass, got %v", err)
	}
	err := run(scoped, "settings", "access")
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusForbidden {
		t.Errorf("expected 403 for settings.access, got %v", err)
	}

	// No principal at all.
	err = run(nil, "results", "view")
	httpErr, ok = err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without principal, got %v", err)
	}
}
