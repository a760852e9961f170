package finance

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/labdesk/labdesk/internal/platform/auth"
	"github.com/labdesk/labdesk/internal/platform/printdoc"
	"github.com/labdesk/labdesk/pkg/pagination"
)

// LabNamer supplies the laboratory name for printed reports. Satisfied by
// *settings.Service.
type LabNamer interface {
	LabName(ctx context.Context) string
}

type Handler struct {
	svc *Service
	lab LabNamer
}

func NewHandler(svc *Service, lab LabNamer) *Handler {
	return &Handler{svc: svc, lab: lab}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequirePermission("reports", auth.ActionView))
	read.GET("/expenses", h.ListExpenses)
	read.GET("/expenses/:id", h.GetExpense)
	read.GET("/reports/daily", h.DailyReport)

	write := api.Group("", auth.RequirePermission("reports", auth.ActionEdit))
	write.POST("/expenses", h.CreateExpense)
	write.PUT("/expenses/:id", h.UpdateExpense)
	write.DELETE("/expenses/:id", h.DeleteExpense)

	printGroup := api.Group("", auth.RequirePermission("reports", auth.ActionPrint))
	printGroup.GET("/reports/daily/print", h.PrintDailyReport)
}

func (h *Handler) CreateExpense(c echo.Context) error {
	var e Expense
	if err := c.Bind(&e); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateExpense(c.Request().Context(), &e); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, e)
}

func (h *Handler) GetExpense(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	e, err := h.svc.GetExpense(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "expense not found")
	}
	return c.JSON(http.StatusOK, e)
}

func (h *Handler) ListExpenses(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListExpenses(c.Request().Context(), c.QueryParam("date"), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateExpense(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var e Expense
	if err := c.Bind(&e); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	e.ID = id
	if err := h.svc.UpdateExpense(c.Request().Context(), &e); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, e)
}

func (h *Handler) DeleteExpense(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteExpense(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) DailyReport(c echo.Context) error {
	date := c.QueryParam("date")
	if date == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "date is required")
	}
	report, err := h.svc.Daily(c.Request().Context(), date)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, report)
}

// PrintDailyReport renders the day's report as a standalone printable HTML
// document.
func (h *Handler) PrintDailyReport(c echo.Context) error {
	date := c.QueryParam("date")
	if date == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "date is required")
	}
	ctx := c.Request().Context()
	report, err := h.svc.Daily(ctx, date)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	doc := printdoc.FinancialReport{
		Date:          report.Date,
		LabName:       h.lab.LabName(ctx),
		TotalIncome:   report.TotalIncome,
		TotalExpenses: report.TotalExpenses,
		Net:           report.Net,
	}
	for _, src := range report.Sources {
		doc.Sources = append(doc.Sources, printdoc.SourceRow{Source: src.Source, Count: src.Count, Income: src.Income})
	}
	for _, e := range report.Expenses {
		doc.Expenses = append(doc.Expenses, printdoc.ExpenseRow{Name: e.Name, Amount: e.Amount})
	}

	html, err := printdoc.BuildFinancialDocument(doc)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.HTML(http.StatusOK, html)
}
