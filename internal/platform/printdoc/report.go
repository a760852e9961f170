package printdoc

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/shopspring/decimal"
)

// reportBaseRows is the fixed header/total row count of the financial
// sheet; shrinking starts only once variable rows push past this.
const reportBaseRows = 12

// SourceRow aggregates one referral source's patients and income for a day.
type SourceRow struct {
	Source  string
	Count   int
	Income  decimal.Decimal
}

// ExpenseRow is one expense line on the day's report.
type ExpenseRow struct {
	Name   string
	Amount decimal.Decimal
}

// FinancialReport is the input to BuildFinancialDocument.
type FinancialReport struct {
	Date          string
	LabName       string
	Sources       []SourceRow
	Expenses      []ExpenseRow
	Notes         []string
	TotalIncome   decimal.Decimal
	TotalExpenses decimal.Decimal
	Net           decimal.Decimal
}

// ReportScale returns the font/spacing scale factor for a report with the
// given total row count. The report always fits one physical page: beyond
// 12 rows each extra row shrinks the sheet by 3%, clamped at 0.45.
func ReportScale(totalRows int) float64 {
	if totalRows <= reportBaseRows {
		return 1.0
	}
	scale := 1.0 - 0.03*float64(totalRows-reportBaseRows)
	if scale < 0.45 {
		return 0.45
	}
	return scale
}

// RowCount returns the scaling row count: variable rows plus the fixed
// header block.
func (r FinancialReport) RowCount() int {
	return len(r.Sources) + len(r.Expenses) + len(r.Notes) + 4
}

type reportTemplateData struct {
	FinancialReport
	Scale    float64
	FontSize string
}

var reportTmpl = template.Must(template.New("report").Parse(financialDocumentHTML))

// BuildFinancialDocument renders a single-page printable HTML financial
// report, shrinking its type scale with row count instead of spilling to a
// second page.
func BuildFinancialDocument(r FinancialReport) (string, error) {
	scale := ReportScale(r.RowCount())
	data := reportTemplateData{
		FinancialReport: r,
		Scale:           scale,
		FontSize:        fmt.Sprintf("%.2fpx", 13*scale),
	}

	var b strings.Builder
	if err := reportTmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render financial document: %w", err)
	}
	return b.String(), nil
}

const financialDocumentHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Daily Report — {{.Date}}</title>
<style>
  @page { size: A4; margin: 12mm; }
  body { font-family: Arial, Helvetica, sans-serif; font-size: {{.FontSize}}; color: #111; margin: 0; }
  h1 { font-size: 1.4em; border-bottom: 2px solid #333; padding-bottom: 4px; }
  h2 { font-size: 1.1em; margin: 0.6em 0 0.3em; }
  table { width: 100%; border-collapse: collapse; }
  th, td { border: 1px solid #999; padding: 0.3em 0.5em; text-align: left; }
  th { background: #eee; }
  td.num { text-align: right; }
  .totals { margin-top: 0.8em; font-weight: bold; }
  .note { color: #444; margin: 0.2em 0; }
</style>
</head>
<body>
<h1>{{.LabName}} — Daily Financial Report {{.Date}}</h1>
<h2>Income by Source</h2>
<table>
  <tr><th>Source</th><th>Patients</th><th>Income</th></tr>
  {{- range .Sources}}
  <tr><td>{{.Source}}</td><td class="num">{{.Count}}</td><td class="num">{{.Income}}</td></tr>
  {{- end}}
</table>
<h2>Expenses</h2>
<table>
  <tr><th>Expense</th><th>Amount</th></tr>
  {{- range .Expenses}}
  <tr><td>{{.Name}}</td><td class="num">{{.Amount}}</td></tr>
  {{- end}}
</table>
{{- if .Notes}}
<h2>Notes</h2>
{{- range .Notes}}
<div class="note">{{.}}</div>
{{- end}}
{{- end}}
<div class="totals">
  Total income: {{.TotalIncome}} &nbsp;|&nbsp; Total expenses: {{.TotalExpenses}} &nbsp;|&nbsp; Net: {{.Net}}
</div>
</body>
</html>
`
