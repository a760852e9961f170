package printdoc

import "testing"

func short(name string, rangeLines int) ResultRow {
	nr := "normal"
	for i := 1; i < rangeLines; i++ {
		nr += "\nalt"
	}
	return ResultRow{TestName: name, TestType: "standard", NormalRange: nr}
}

func TestIsLongForm(t *testing.T) {
	if !IsLongForm(ResultRow{TestName: "General Urine Exam", TestType: "urine"}) {
		t.Error("expected urine result to be long form")
	}
	if !IsLongForm(ResultRow{TestName: "Stool Examination", TestType: "standard"}) {
		t.Error("expected stool keyword to be long form")
	}
	if !IsLongForm(ResultRow{TestName: "Blood Culture & Sensitivity", TestType: "standard"}) {
		t.Error("expected culture keyword to be long form")
	}
	if IsLongForm(ResultRow{TestName: "CBC", TestType: "standard"}) {
		t.Error("expected CBC to be short form")
	}
}

func TestWeight(t *testing.T) {
	if w := Weight(short("CBC", 1)); w != 1 {
		t.Errorf("expected weight 1 for single-line range, got %v", w)
	}
	if w := Weight(short("Lipids", 3)); w != 2 {
		t.Errorf("expected weight 2 for three-line range, got %v", w)
	}
	// Trailing newline does not count as an extra line.
	if w := Weight(ResultRow{NormalRange: "normal\n"}); w != 1 {
		t.Errorf("expected weight 1 with trailing newline, got %v", w)
	}
}

func TestPaginateFixed_Capacity(t *testing.T) {
	var rows []ResultRow
	for i := 0; i < 17; i++ {
		rows = append(rows, short("T", 1))
	}

	pages := PaginateFixed(rows, 8)
	if len(pages) != 3 {
		t.Fatalf("expected 3 pages, got %d", len(pages))
	}
	if len(pages[0]) != 8 || len(pages[1]) != 8 || len(pages[2]) != 1 {
		t.Errorf("expected page sizes [8 8 1], got [%d %d %d]",
			len(pages[0]), len(pages[1]), len(pages[2]))
	}
}

func TestPaginateFixed_LongAlwaysAlone(t *testing.T) {
	rows := []ResultRow{
		short("CBC", 1),
		{TestName: "General Urine Exam", TestType: "urine"},
		short("Glucose", 1),
		short("Urea", 1),
	}

	pages := PaginateFixed(rows, 8)
	if len(pages) != 3 {
		t.Fatalf("expected 3 pages, got %d", len(pages))
	}
	if len(pages[1]) != 1 || pages[1][0].TestType != "urine" {
		t.Error("expected urine result alone on its own page")
	}
	if len(pages[0]) != 1 || len(pages[2]) != 2 {
		t.Errorf("expected surrounding short pages [1 2], got [%d %d]", len(pages[0]), len(pages[2]))
	}
}

func TestPaginateWeighted_ExactBudgetBoundary(t *testing.T) {
	// 18 single-line rows weigh exactly the default budget of 18; the 19th
	// row must open a new page, not overflow the first.
	var rows []ResultRow
	for i := 0; i < 19; i++ {
		rows = append(rows, short("T", 1))
	}

	pages := PaginateWeighted(rows, DefaultPageBudget)
	if len(pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(pages))
	}
	if len(pages[0]) != 18 {
		t.Errorf("expected first page to hold exactly 18 rows, got %d", len(pages[0]))
	}
	if len(pages[1]) != 1 {
		t.Errorf("expected second page to hold 1 row, got %d", len(pages[1]))
	}
}

func TestPaginateWeighted_MultiLineRangesWeighMore(t *testing.T) {
	// Each row weighs 2 (three-line range); budget 18 fits 9 per page.
	var rows []ResultRow
	for i := 0; i < 10; i++ {
		rows = append(rows, short("Panel", 3))
	}

	pages := PaginateWeighted(rows, DefaultPageBudget)
	if len(pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(pages))
	}
	if len(pages[0]) != 9 || len(pages[1]) != 1 {
		t.Errorf("expected page sizes [9 1], got [%d %d]", len(pages[0]), len(pages[1]))
	}
}

func TestPaginateWeighted_OversizedRowStillPlaced(t *testing.T) {
	// A single row heavier than the budget still gets a page of its own
	// rather than being dropped.
	rows := []ResultRow{short("Huge", 50)}
	pages := PaginateWeighted(rows, 18)
	if len(pages) != 1 || len(pages[0]) != 1 {
		t.Fatalf("expected the oversized row on one page, got %d pages", len(pages))
	}
}

func TestPaginate_Empty(t *testing.T) {
	if pages := PaginateFixed(nil, 8); len(pages) != 0 {
		t.Errorf("expected no pages for no rows, got %d", len(pages))
	}
	if pages := PaginateWeighted(nil, 18); len(pages) != 0 {
		t.Errorf("expected no pages for no rows, got %d", len(pages))
	}
}
