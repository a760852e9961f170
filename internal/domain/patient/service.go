package patient

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/labdesk/labdesk/internal/domain/catalog"
)

// TestCatalog is the slice of the catalog service the visit side needs for
// total suggestions. Satisfied by *catalog.Service.
type TestCatalog interface {
	Get(ctx context.Context, id uuid.UUID) (*catalog.Test, error)
}

type Service struct {
	patients PatientRepository
	visits   VisitRepository
	tests    TestCatalog
}

func NewService(patients PatientRepository, visits VisitRepository, tests TestCatalog) *Service {
	return &Service{patients: patients, visits: visits, tests: tests}
}

// -- Patients --

func (s *Service) CreatePatient(ctx context.Context, p *Patient) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	return s.patients.Create(ctx, p)
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

func (s *Service) ListPatients(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.patients.List(ctx, limit, offset)
}

func (s *Service) UpdatePatient(ctx context.Context, p *Patient) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	if _, err := s.patients.GetByID(ctx, p.ID); err != nil {
		return fmt.Errorf("patient not found")
	}
	return s.patients.Update(ctx, p)
}

// DeletePatient removes the patient and, through the repository's cascade,
// every visit and result that belonged to them.
func (s *Service) DeletePatient(ctx context.Context, id uuid.UUID) error {
	if _, err := s.patients.GetByID(ctx, id); err != nil {
		return fmt.Errorf("patient not found")
	}
	return s.patients.Delete(ctx, id)
}

// -- Visits --

func (s *Service) CreateVisit(ctx context.Context, v *Visit) error {
	if v.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	p, err := s.patients.GetByID(ctx, v.PatientID)
	if err != nil {
		return fmt.Errorf("patient not found")
	}
	// Snapshot the name at creation time.
	v.PatientName = p.Name
	if v.VisitDate.IsZero() {
		v.VisitDate = time.Now()
	}
	return s.visits.Create(ctx, v)
}

func (s *Service) GetVisit(ctx context.Context, id uuid.UUID) (*Visit, error) {
	return s.visits.GetByID(ctx, id)
}

func (s *Service) ListVisits(ctx context.Context, f VisitFilter, limit, offset int) ([]*Visit, int, error) {
	return s.visits.List(ctx, f, limit, offset)
}

// UpdateVisit persists edits to a visit. PatientID is immutable; TotalCost
// is stored exactly as given.
func (s *Service) UpdateVisit(ctx context.Context, v *Visit) error {
	prev, err := s.visits.GetByID(ctx, v.ID)
	if err != nil {
		return fmt.Errorf("visit not found")
	}
	v.PatientID = prev.PatientID
	if v.PatientName == "" {
		v.PatientName = prev.PatientName
	}
	if v.VisitDate.IsZero() {
		v.VisitDate = prev.VisitDate
	}
	return s.visits.Update(ctx, v)
}

func (s *Service) DeleteVisit(ctx context.Context, id uuid.UUID) error {
	if _, err := s.visits.GetByID(ctx, id); err != nil {
		return fmt.Errorf("visit not found")
	}
	return s.visits.Delete(ctx, id)
}

// SuggestedTotal sums the current catalog prices of the given tests. It is
// advisory only: nothing ever writes it to a visit on its own.
func (s *Service) SuggestedTotal(ctx context.Context, testIDs []uuid.UUID) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, id := range testIDs {
		t, err := s.tests.Get(ctx, id)
		if err != nil {
			return decimal.Zero, fmt.Errorf("test %s not found", id)
		}
		if t.Price != nil {
			total = total.Add(*t.Price)
		}
	}
	return total, nil
}
