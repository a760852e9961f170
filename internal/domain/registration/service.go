package registration

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/labdesk/labdesk/internal/domain/catalog"
	"github.com/labdesk/labdesk/internal/domain/patient"
	"github.com/labdesk/labdesk/internal/domain/result"
)

// PatientStore is the slice of the patient service the registration flow
// uses. Satisfied by *patient.Service.
type PatientStore interface {
	CreatePatient(ctx context.Context, p *patient.Patient) error
	UpdatePatient(ctx context.Context, p *patient.Patient) error
	GetPatient(ctx context.Context, id uuid.UUID) (*patient.Patient, error)
	CreateVisit(ctx context.Context, v *patient.Visit) error
	UpdateVisit(ctx context.Context, v *patient.Visit) error
	GetVisit(ctx context.Context, id uuid.UUID) (*patient.Visit, error)
}

// ResultStore is the slice of the result service the reconciler uses.
// Satisfied by *result.Service.
type ResultStore interface {
	Create(ctx context.Context, tr *result.TestResult) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByVisit(ctx context.Context, visitID uuid.UUID) ([]*result.TestResult, error)
}

// TestCatalog resolves selected test ids to catalog entries for snapshots.
// Satisfied by *catalog.Service.
type TestCatalog interface {
	Get(ctx context.Context, id uuid.UUID) (*catalog.Test, error)
}

// TxRunner wraps a save in a storage transaction. The Postgres wiring uses
// db.WithTransaction; the SQLite adapter passes a no-op runner and relies on
// its own serialization.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

func passthroughTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type Service struct {
	patients PatientStore
	results  ResultStore
	tests    TestCatalog
	tx       TxRunner
}

func NewService(patients PatientStore, results ResultStore, tests TestCatalog, tx TxRunner) *Service {
	if tx == nil {
		tx = passthroughTx
	}
	return &Service{patients: patients, results: results, tests: tests, tx: tx}
}

// Validate applies the minimum-fields rule shared with the auto-save guard:
// a registration is saveable once it has a patient name and at least one
// selected test.
func Validate(in *Input) error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("patient name is required")
	}
	if len(in.TestIDs) == 0 {
		return fmt.Errorf("at least one test must be selected")
	}
	return nil
}

// Save persists a registration form. The first call creates patient, visit
// and results; later calls (ids present in the input) update the existing
// rows and reconcile the result set against the selected tests. The writes
// run sequentially inside one transaction: patient, then visit, then the
// result diff.
func (s *Service) Save(ctx context.Context, in *Input) (*Registration, error) {
	if err := Validate(in); err != nil {
		return nil, err
	}

	var reg *Registration
	err := s.tx(ctx, func(ctx context.Context) error {
		p, err := s.savePatient(ctx, in)
		if err != nil {
			return err
		}
		v, err := s.saveVisit(ctx, in, p)
		if err != nil {
			return err
		}
		results, err := s.reconcileResults(ctx, v.ID, in.TestIDs)
		if err != nil {
			return err
		}

		ids := make(map[uuid.UUID]uuid.UUID, len(results))
		for _, tr := range results {
			ids[tr.TestID] = tr.ID
		}
		reg = &Registration{Patient: p, Visit: v, Results: results, ResultIDs: ids}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Bridge the identities back into the form so the next save updates.
	in.PatientID = &reg.Patient.ID
	in.VisitID = &reg.Visit.ID
	return reg, nil
}

func (s *Service) savePatient(ctx context.Context, in *Input) (*patient.Patient, error) {
	p := &patient.Patient{
		Name:   in.Name,
		Age:    in.Age,
		Gender: in.Gender,
		Phone:  in.Phone,
		Source: in.Source,
	}
	if in.PatientID == nil {
		if err := s.patients.CreatePatient(ctx, p); err != nil {
			return nil, fmt.Errorf("create patient: %w", err)
		}
		return p, nil
	}
	p.ID = *in.PatientID
	if err := s.patients.UpdatePatient(ctx, p); err != nil {
		return nil, fmt.Errorf("update patient: %w", err)
	}
	return p, nil
}

func (s *Service) saveVisit(ctx context.Context, in *Input, p *patient.Patient) (*patient.Visit, error) {
	v := &patient.Visit{
		PatientID: p.ID,
		VisitDate: in.VisitDate,
		TotalCost: in.TotalCost,
		TestIDs:   in.TestIDs,
	}
	if in.VisitID == nil {
		if err := s.patients.CreateVisit(ctx, v); err != nil {
			return nil, fmt.Errorf("create visit: %w", err)
		}
		return v, nil
	}
	v.ID = *in.VisitID
	v.PatientName = p.Name
	if err := s.patients.UpdateVisit(ctx, v); err != nil {
		return nil, fmt.Errorf("update visit: %w", err)
	}
	return v, nil
}

// reconcileResults diffs the stored result rows of the visit against the
// selected tests. Deselected tests lose their rows, newly selected tests get
// fresh snapshot rows, and rows for still-selected tests are left untouched
// so entered values survive.
func (s *Service) reconcileResults(ctx context.Context, visitID uuid.UUID, testIDs []uuid.UUID) ([]*result.TestResult, error) {
	existing, err := s.results.ListByVisit(ctx, visitID)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}

	wanted := make(map[uuid.UUID]bool, len(testIDs))
	for _, id := range testIDs {
		wanted[id] = true
	}

	byTest := make(map[uuid.UUID]*result.TestResult, len(existing))
	for _, tr := range existing {
		if !wanted[tr.TestID] {
			if err := s.results.Delete(ctx, tr.ID); err != nil {
				return nil, fmt.Errorf("delete result: %w", err)
			}
			continue
		}
		// A stray duplicate for the same test collapses to one row.
		if dup, ok := byTest[tr.TestID]; ok {
			if err := s.results.Delete(ctx, dup.ID); err != nil {
				return nil, fmt.Errorf("delete duplicate result: %w", err)
			}
		}
		byTest[tr.TestID] = tr
	}

	var out []*result.TestResult
	for _, id := range testIDs {
		if tr, ok := byTest[id]; ok {
			out = append(out, tr)
			continue
		}
		t, err := s.tests.Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("test %s not found", id)
		}
		tr := result.FromCatalogTest(visitID, t)
		if err := s.results.Create(ctx, tr); err != nil {
			return nil, fmt.Errorf("create result: %w", err)
		}
		out = append(out, tr)
	}
	return out, nil
}
