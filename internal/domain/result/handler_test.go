package result

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func newTestHandler() (*Handler, *echo.Echo) {
	return NewHandler(NewService(newMockRepo())), echo.New()
}

func TestHandler_CreateResult(t *testing.T) {
	h, e := newTestHandler()
	body := `{"visit_id":"` + uuid.New().String() + `","test_id":"` + uuid.New().String() + `","test_name":"CBC"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	if err := h.Create(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
}

func TestHandler_ListByVisit(t *testing.T) {
	h, e := newTestHandler()
	visitID := uuid.New()
	for i := 0; i < 2; i++ {
		tr := &TestResult{VisitID: visitID, TestID: uuid.New(), TestName: "T"}
		if err := h.svc.Create(nil, tr); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/?visitId="+visitID.String(), nil)
	rec := httptest.NewRecorder()
	if err := h.List(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var resp struct {
		Total int `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp.Total != 2 {
		t.Errorf("expected 2 results for visit, got %d", resp.Total)
	}
}

func TestHandler_List_InvalidVisitID(t *testing.T) {
	h, e := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/?visitId=bad", nil)
	rec := httptest.NewRecorder()

	if err := h.List(e.NewContext(req, rec)); err == nil {
		t.Error("expected error for malformed visitId")
	}
}

func TestHandler_BatchUpdate(t *testing.T) {
	h, e := newTestHandler()
	tr := &TestResult{VisitID: uuid.New(), TestID: uuid.New(), TestName: "CBC"}
	if err := h.svc.Create(nil, tr); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	body := `[{"id":"` + tr.ID.String() + `","data":{"result":"12.5"}}]`
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	if err := h.BatchUpdate(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestHandler_BatchUpdate_EmptyBody(t *testing.T) {
	h, e := newTestHandler()
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`[]`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	if err := h.BatchUpdate(e.NewContext(req, rec)); err == nil {
		t.Error("expected error for empty batch")
	}
}

func TestHandler_DeleteResult_NotFound(t *testing.T) {
	h, e := newTestHandler()
	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())

	if err := h.Delete(c); err == nil {
		t.Error("expected error for unknown result")
	}
}
