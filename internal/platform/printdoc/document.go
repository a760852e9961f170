package printdoc

import (
	"fmt"
	"html/template"
	"strings"
)

// SectionPosition places a custom boilerplate section on the sheet.
type SectionPosition string

const (
	SectionTop    SectionPosition = "top"
	SectionBottom SectionPosition = "bottom"
)

// CustomSection is user-authored boilerplate injected into printed sheets
// (lab letterhead, signature lines, disclaimers).
type CustomSection struct {
	Text            string
	Position        SectionPosition
	Alignment       string
	TextColor       string
	BackgroundColor string
	FontSize        int
}

// PatientHeader is the block repeated at the top of every printed page.
type PatientHeader struct {
	PatientName string
	Age         string
	Gender      string
	VisitDate   string
	LabName     string
}

// ResultDocument is the input to BuildResultDocument.
type ResultDocument struct {
	Header   PatientHeader
	Results  []ResultRow
	Sections []CustomSection

	// PageCapacity > 0 selects fixed-count pagination; otherwise the
	// weighted layout with PageBudget (or the default budget) is used.
	PageCapacity int
	PageBudget   float64
}

type renderedPage struct {
	Number  int
	Total   int
	Rows    []ResultRow
	IsUrine bool
	// Label is "(Page X/N)" when there is more than one page, empty otherwise.
	Label string
}

type resultTemplateData struct {
	Header PatientHeader
	Pages  []renderedPage
	Top    []CustomSection
	Bottom []CustomSection
}

var resultTmpl = template.Must(template.New("result").Funcs(template.FuncMap{
	"urinePairs": urinePairs,
}).Parse(resultDocumentHTML))

// urinePairs groups urine fields two per rendered table row.
func urinePairs(fields []UrineField) [][]UrineField {
	var rows [][]UrineField
	for i := 0; i < len(fields); i += 2 {
		end := i + 2
		if end > len(fields) {
			end = len(fields)
		}
		rows = append(rows, fields[i:end])
	}
	return rows
}

// BuildResultDocument renders a standalone printable HTML document (inline
// CSS, A4 print rules) for one visit's results. The patient header and any
// custom sections repeat on every page.
func BuildResultDocument(doc ResultDocument) (string, error) {
	var groups [][]ResultRow
	if doc.PageCapacity > 0 {
		groups = PaginateFixed(doc.Results, doc.PageCapacity)
	} else {
		groups = PaginateWeighted(doc.Results, doc.PageBudget)
	}

	total := len(groups)
	pages := make([]renderedPage, 0, total)
	for i, rows := range groups {
		p := renderedPage{
			Number:  i + 1,
			Total:   total,
			Rows:    rows,
			IsUrine: len(rows) == 1 && rows[0].TestType == "urine",
		}
		if total > 1 {
			p.Label = fmt.Sprintf("(Page %d/%d)", p.Number, total)
		}
		pages = append(pages, p)
	}

	data := resultTemplateData{
		Header: doc.Header,
		Pages:  pages,
	}
	for _, s := range doc.Sections {
		switch s.Position {
		case SectionBottom:
			data.Bottom = append(data.Bottom, s)
		default:
			data.Top = append(data.Top, s)
		}
	}

	var b strings.Builder
	if err := resultTmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render result document: %w", err)
	}
	return b.String(), nil
}

const resultDocumentHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Lab Results — {{.Header.PatientName}}</title>
<style>
  @page { size: A4; margin: 12mm; }
  body { font-family: Arial, Helvetica, sans-serif; font-size: 12px; color: #111; margin: 0; }
  .page { page-break-after: always; padding: 8px 0; }
  .page:last-child { page-break-after: auto; }
  .header { border-bottom: 2px solid #333; padding-bottom: 6px; margin-bottom: 10px; }
  .header .lab { font-size: 16px; font-weight: bold; }
  .header .meta { display: flex; justify-content: space-between; margin-top: 4px; }
  .page-label { text-align: right; font-size: 10px; color: #666; }
  table.results { width: 100%; border-collapse: collapse; margin-top: 6px; }
  table.results th, table.results td { border: 1px solid #999; padding: 4px 6px; text-align: left; vertical-align: top; }
  table.results th { background: #eee; }
  td.range { white-space: pre-line; }
  .urine-title { font-weight: bold; margin: 8px 0 4px; }
  table.urine { width: 100%; border-collapse: collapse; margin-bottom: 8px; }
  table.urine td { border: 1px solid #999; padding: 4px 6px; width: 25%; }
  table.urine td.label { background: #f5f5f5; font-weight: bold; }
  .section { padding: 6px; margin: 6px 0; }
  @media print { .page { min-height: auto; } }
</style>
</head>
<body>
{{- $top := .Top}}{{- $bottom := .Bottom}}{{- $header := .Header}}
{{- range .Pages}}
<div class="page">
  {{- range $top}}
  <div class="section" style="text-align:{{.Alignment}};color:{{.TextColor}};background-color:{{.BackgroundColor}};font-size:{{.FontSize}}px;">{{.Text}}</div>
  {{- end}}
  <div class="header">
    <div class="lab">{{$header.LabName}}</div>
    <div class="meta">
      <span>Patient: {{$header.PatientName}}</span>
      <span>Age: {{$header.Age}}</span>
      <span>Gender: {{$header.Gender}}</span>
      <span>Date: {{$header.VisitDate}}</span>
    </div>
    {{- if .Label}}<div class="page-label">{{.Label}}</div>{{end}}
  </div>
  {{- if .IsUrine}}
  {{- range .Rows}}
  <div class="urine-title">{{.TestName}}</div>
  <table class="urine">
    {{- range urinePairs .UrineFields}}
    <tr>
      {{- range .}}
      <td class="label">{{.Label}}</td><td>{{.Value}}</td>
      {{- end}}
    </tr>
    {{- end}}
  </table>
  {{- end}}
  {{- else}}
  <table class="results">
    <tr><th>Test</th><th>Result</th><th>Unit</th><th>Normal Range</th></tr>
    {{- range .Rows}}
    <tr><td>{{.TestName}}</td><td>{{.Result}}</td><td>{{.Unit}}</td><td class="range">{{.NormalRange}}</td></tr>
    {{- end}}
  </table>
  {{- end}}
  {{- range $bottom}}
  <div class="section" style="text-align:{{.Alignment}};color:{{.TextColor}};background-color:{{.BackgroundColor}};font-size:{{.FontSize}}px;">{{.Text}}</div>
  {{- end}}
</div>
{{- end}}
</body>
</html>
`
