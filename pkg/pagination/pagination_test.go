package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func paramsFor(t *testing.T, query string) Params {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?"+query, nil)
	rec := httptest.NewRecorder()
	return FromContext(e.NewContext(req, rec))
}

func TestFromContext_Defaults(t *testing.T) {
	p := paramsFor(t, "")
	if p.Limit != DefaultLimit || p.Offset != 0 {
		t.Errorf("expected defaults {%d 0}, got %+v", DefaultLimit, p)
	}
}

func TestFromContext_ClampsLimit(t *testing.T) {
	p := paramsFor(t, "limit=9999")
	if p.Limit != MaxLimit {
		t.Errorf("expected limit clamped to %d, got %d", MaxLimit, p.Limit)
	}
}

func TestFromContext_ParsesValues(t *testing.T) {
	p := paramsFor(t, "limit=10&offset=30")
	if p.Limit != 10 || p.Offset != 30 {
		t.Errorf("expected {10 30}, got %+v", p)
	}
}

func TestNewResponse_HasMore(t *testing.T) {
	if r := NewResponse(nil, 100, 10, 80); !r.HasMore {
		t.Error("expected has_more at offset 80 of 100")
	}
	if r := NewResponse(nil, 100, 10, 90); r.HasMore {
		t.Error("expected no more at offset 90 of 100")
	}
}

func TestPreviousOffset_Clamped(t *testing.T) {
	p := Params{Limit: 50, Offset: 20}
	if got := p.PreviousOffset(); got != 0 {
		t.Errorf("expected 0, got %d", got)
	}
}
