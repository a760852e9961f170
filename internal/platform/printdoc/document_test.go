package printdoc

import (
	"strings"
	"testing"
)

func testHeader() PatientHeader {
	return PatientHeader{
		PatientName: "Ali Hassan",
		Age:         "30",
		Gender:      "male",
		VisitDate:   "2026-08-28",
		LabName:     "Central Lab",
	}
}

func TestBuildResultDocument_SinglePageNoLabel(t *testing.T) {
	doc := ResultDocument{
		Header: testHeader(),
		Results: []ResultRow{
			{TestName: "CBC", TestType: "standard", Result: "12.5", Unit: "g/dL", NormalRange: "12-16"},
			{TestName: "Glucose", TestType: "standard", Result: "95", Unit: "mg/dL", NormalRange: "70-110"},
		},
	}

	html, err := BuildResultDocument(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(html, "Ali Hassan") || !strings.Contains(html, "CBC") {
		t.Error("expected patient name and test name in document")
	}
	if strings.Contains(html, "(Page") {
		t.Error("expected no page label for a single-page document")
	}
}

func TestBuildResultDocument_MultiPageLabels(t *testing.T) {
	var results []ResultRow
	for i := 0; i < 10; i++ {
		results = append(results, ResultRow{TestName: "T", TestType: "standard", NormalRange: "n"})
	}

	html, err := BuildResultDocument(ResultDocument{
		Header:       testHeader(),
		Results:      results,
		PageCapacity: 8,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(html, "(Page 1/2)") || !strings.Contains(html, "(Page 2/2)") {
		t.Error("expected page labels on a two-page document")
	}
	// Header must repeat per page.
	if strings.Count(html, "Ali Hassan") != 2 {
		t.Errorf("expected patient header on both pages, found %d occurrences", strings.Count(html, "Ali Hassan"))
	}
}

func TestBuildResultDocument_UrineBlock(t *testing.T) {
	doc := ResultDocument{
		Header: testHeader(),
		Results: []ResultRow{
			{
				TestName: "General Urine Exam",
				TestType: "urine",
				UrineFields: []UrineField{
					{Label: "Colour", Value: "Yellow"},
					{Label: "Aspect", Value: "Clear"},
					{Label: "Reaction", Value: "Acidic"},
				},
			},
		},
	}

	html, err := BuildResultDocument(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{"General Urine Exam", "Colour", "Yellow", "Aspect", "Clear"} {
		if !strings.Contains(html, want) {
			t.Errorf("expected urine block to contain %q", want)
		}
	}
}

func TestBuildResultDocument_CustomSections(t *testing.T) {
	doc := ResultDocument{
		Header: testHeader(),
		Results: []ResultRow{
			{TestName: "CBC", TestType: "standard"},
		},
		Sections: []CustomSection{
			{Text: "Accredited Laboratory", Position: SectionTop, Alignment: "center", TextColor: "#003366", BackgroundColor: "#ffffff", FontSize: 14},
			{Text: "Results reviewed by the lab director", Position: SectionBottom, Alignment: "left", TextColor: "#111111", BackgroundColor: "#ffffff", FontSize: 10},
		},
	}

	html, err := BuildResultDocument(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	top := strings.Index(html, "Accredited Laboratory")
	table := strings.Index(html, "CBC")
	bottom := strings.Index(html, "Results reviewed by the lab director")
	if top == -1 || table == -1 || bottom == -1 {
		t.Fatal("expected both custom sections and the results table")
	}
	if !(top < table && table < bottom) {
		t.Error("expected top section before results and bottom section after")
	}
}
