// Package printing composes visits, their results and the lab's print
// decoration into printable result sheets.
package printing

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/labdesk/labdesk/internal/domain/catalog"
	"github.com/labdesk/labdesk/internal/domain/patient"
	"github.com/labdesk/labdesk/internal/domain/result"
	"github.com/labdesk/labdesk/internal/domain/settings"
	"github.com/labdesk/labdesk/internal/platform/printdoc"
)

// VisitSource loads the visit and its patient. Satisfied by *patient.Service.
type VisitSource interface {
	GetVisit(ctx context.Context, id uuid.UUID) (*patient.Visit, error)
	GetPatient(ctx context.Context, id uuid.UUID) (*patient.Patient, error)
}

// ResultSource loads a visit's results in entry order. Satisfied by
// *result.Service.
type ResultSource interface {
	ListByVisit(ctx context.Context, visitID uuid.UUID) ([]*result.TestResult, error)
}

// Decor supplies the lab name and custom boilerplate sections. Satisfied by
// *settings.Service.
type Decor interface {
	LabName(ctx context.Context) string
	PrintSections(ctx context.Context) []settings.CustomPrintSection
}

type Service struct {
	visits  VisitSource
	results ResultSource
	decor   Decor
}

func NewService(visits VisitSource, results ResultSource, decor Decor) *Service {
	return &Service{visits: visits, results: results, decor: decor}
}

// ResultSheet renders the visit's result sheet as standalone HTML.
// perPage > 0 forces fixed-count pagination; 0 uses the weighted layout.
func (s *Service) ResultSheet(ctx context.Context, visitID uuid.UUID, perPage int) (string, error) {
	v, err := s.visits.GetVisit(ctx, visitID)
	if err != nil {
		return "", fmt.Errorf("visit not found")
	}
	results, err := s.results.ListByVisit(ctx, visitID)
	if err != nil {
		return "", fmt.Errorf("load results: %w", err)
	}

	header := printdoc.PatientHeader{
		PatientName: v.PatientName,
		VisitDate:   v.VisitDate.Format("2006-01-02"),
		LabName:     s.decor.LabName(ctx),
	}
	// The demographic fields come from the live patient row; the name stays
	// the snapshot taken when the visit was created.
	if p, err := s.visits.GetPatient(ctx, v.PatientID); err == nil {
		if p.Age != nil {
			header.Age = strconv.Itoa(*p.Age)
		}
		if p.Gender != nil {
			header.Gender = *p.Gender
		}
	}

	doc := printdoc.ResultDocument{
		Header:       header,
		PageCapacity: perPage,
	}
	for _, r := range results {
		doc.Results = append(doc.Results, toRow(r))
	}
	for _, cs := range s.decor.PrintSections(ctx) {
		doc.Sections = append(doc.Sections, printdoc.CustomSection{
			Text:            cs.Text,
			Position:        printdoc.SectionPosition(cs.Position),
			Alignment:       cs.Alignment,
			TextColor:       cs.TextColor,
			BackgroundColor: cs.BackgroundColor,
			FontSize:        cs.FontSize,
		})
	}

	return printdoc.BuildResultDocument(doc)
}

func toRow(r *result.TestResult) printdoc.ResultRow {
	row := printdoc.ResultRow{
		TestName: r.TestName,
		TestType: r.TestType,
	}
	if r.Result != nil {
		row.Result = *r.Result
	}
	if r.Unit != nil {
		row.Unit = *r.Unit
	}
	if r.NormalRange != nil {
		row.NormalRange = *r.NormalRange
	}
	if r.TestType == catalog.TypeUrine && r.UrineData != nil {
		row.UrineFields = urineFields(r.UrineData)
	}
	return row
}

// urineFields flattens the urine sub-record into labelled values in the
// order the paper form prints them.
func urineFields(u *result.UrineData) []printdoc.UrineField {
	return []printdoc.UrineField{
		{Label: "Colour", Value: u.Colour},
		{Label: "Aspect", Value: u.Aspect},
		{Label: "Reaction", Value: u.Reaction},
		{Label: "Specific Gravity", Value: u.SpecificGravity},
		{Label: "Glucose", Value: u.Glucose},
		{Label: "Protein", Value: u.Protein},
		{Label: "Bilirubin", Value: u.Bilirubin},
		{Label: "Ketones", Value: u.Ketones},
		{Label: "Nitrite", Value: u.Nitrite},
		{Label: "Leukocyte", Value: u.Leukocyte},
		{Label: "Blood", Value: u.Blood},
		{Label: "Pus Cells", Value: u.PusCells},
		{Label: "Red Cells", Value: u.RedCells},
		{Label: "Epithelial Cells", Value: u.EpithelialCell},
		{Label: "Bacteria", Value: u.Bacteria},
		{Label: "Crystals", Value: u.Crystals},
		{Label: "Amorphous", Value: u.Amorphous},
		{Label: "Mucus", Value: u.Mucus},
		{Label: "Other", Value: u.Other},
	}
}
