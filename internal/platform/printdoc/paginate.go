// Package printdoc builds printable result sheets and financial reports as
// standalone HTML documents. Pagination is pure and transport-free so the
// layout rules can be tested without a browser or template rendering.
package printdoc

import "strings"

const (
	// DefaultPageCapacity is the fixed short-result count per page.
	DefaultPageCapacity = 8
	// DefaultPageBudget is the weighted layout budget per page.
	DefaultPageBudget = 18.0
)

// longNameKeywords force a result onto its own page when they appear in the
// test name; these render as large multi-table blocks that cannot share
// space with neighbouring rows.
var longNameKeywords = []string{"stool", "culture", "sensitivity"}

// UrineField is one labelled value of the structured urine-analysis block.
type UrineField struct {
	Label string
	Value string
}

// ResultRow is the layout view of one test result. Handlers map domain
// records onto it; printdoc never touches storage.
type ResultRow struct {
	TestName    string
	TestType    string // "standard" or "urine"
	Result      string
	Unit        string
	NormalRange string
	UrineFields []UrineField
}

// IsLongForm reports whether the result must occupy a page of its own:
// urine analyses and keyword-matched names (stool, culture, sensitivity).
func IsLongForm(r ResultRow) bool {
	if r.TestType == "urine" {
		return true
	}
	name := strings.ToLower(r.TestName)
	for _, kw := range longNameKeywords {
		if strings.Contains(name, kw) {
			return true
		}
	}
	return false
}

// Weight is a short result's contribution to a weighted page: 1 unit plus
// half a unit per normal-range line beyond the first (multi-line ranges
// render taller rows).
func Weight(r ResultRow) float64 {
	lines := strings.Count(strings.TrimRight(r.NormalRange, "\n"), "\n") + 1
	return 1 + 0.5*float64(lines-1)
}

// PaginateFixed groups results into pages. Long-form results each get a
// single-item page; short results fill pages of at most capacity items,
// preserving input order.
func PaginateFixed(rows []ResultRow, capacity int) [][]ResultRow {
	if capacity <= 0 {
		capacity = DefaultPageCapacity
	}

	var pages [][]ResultRow
	var current []ResultRow

	flush := func() {
		if len(current) > 0 {
			pages = append(pages, current)
			current = nil
		}
	}

	for _, r := range rows {
		if IsLongForm(r) {
			flush()
			pages = append(pages, []ResultRow{r})
			continue
		}
		if len(current) >= capacity {
			flush()
		}
		current = append(current, r)
	}
	flush()

	return pages
}

// PaginateWeighted groups results into pages by accumulated weight. A page
// closes when adding the next item would exceed the budget, so a page
// summing to exactly the budget pushes the following item onto a new page.
func PaginateWeighted(rows []ResultRow, budget float64) [][]ResultRow {
	if budget <= 0 {
		budget = DefaultPageBudget
	}

	var pages [][]ResultRow
	var current []ResultRow
	var used float64

	flush := func() {
		if len(current) > 0 {
			pages = append(pages, current)
			current = nil
		}
		used = 0
	}

	for _, r := range rows {
		if IsLongForm(r) {
			flush()
			pages = append(pages, []ResultRow{r})
			continue
		}
		w := Weight(r)
		if len(current) > 0 && used+w > budget {
			flush()
		}
		current = append(current, r)
		used += w
	}
	flush()

	return pages
}
