package result

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/labdesk/labdesk/internal/domain/catalog"
)

// CatalogWriter is the slice of the catalog service used for the write-back:
// editing unit or normal range on a result updates the parent test, so the
// next patient gets the corrected values. Satisfied by *catalog.Service.
type CatalogWriter interface {
	UpdateTestFields(ctx context.Context, id uuid.UUID, unit, normalRange *string) error
}

type Service struct {
	repo   Repository
	writer CatalogWriter
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// SetCatalogWriter attaches the optional catalog write-back hook.
func (s *Service) SetCatalogWriter(w CatalogWriter) {
	s.writer = w
}

// FromCatalogTest builds a blank result for a visit, snapshotting the
// catalog fields. Urine tests start from the clinical-normal placeholders.
func FromCatalogTest(visitID uuid.UUID, t *catalog.Test) *TestResult {
	tr := &TestResult{
		VisitID:     visitID,
		TestID:      t.ID,
		TestName:    t.Name,
		Unit:        t.Unit,
		NormalRange: t.NormalRange,
		Price:       t.Price,
		TestType:    t.TestType,
	}
	if t.TestType == catalog.TypeUrine {
		tr.UrineData = DefaultUrineData()
	}
	return tr
}

func (s *Service) Create(ctx context.Context, tr *TestResult) error {
	if tr.VisitID == uuid.Nil {
		return fmt.Errorf("visit_id is required")
	}
	if tr.TestID == uuid.Nil {
		return fmt.Errorf("test_id is required")
	}
	if tr.TestType == "" {
		tr.TestType = catalog.TypeStandard
	}
	if tr.TestType == catalog.TypeUrine && tr.UrineData == nil {
		tr.UrineData = DefaultUrineData()
	}
	return s.repo.Create(ctx, tr)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*TestResult, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByVisit(ctx context.Context, visitID uuid.UUID) ([]*TestResult, error) {
	return s.repo.ListByVisit(ctx, visitID)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*TestResult, int, error) {
	return s.repo.List(ctx, limit, offset)
}

// Update persists edits to a result. Visit, test and type bindings are
// immutable. A change to unit or normal range is written back to the parent
// catalog test.
func (s *Service) Update(ctx context.Context, tr *TestResult) error {
	prev, err := s.repo.GetByID(ctx, tr.ID)
	if err != nil {
		return fmt.Errorf("result not found")
	}
	tr.VisitID = prev.VisitID
	tr.TestID = prev.TestID
	tr.TestType = prev.TestType
	if tr.TestName == "" {
		tr.TestName = prev.TestName
	}
	if tr.TestType != catalog.TypeUrine {
		tr.UrineData = nil
	} else if tr.UrineData == nil {
		tr.UrineData = prev.UrineData
	}
	if err := s.repo.Update(ctx, tr); err != nil {
		return err
	}

	if s.writer != nil && (!strPtrEqual(prev.Unit, tr.Unit) || !strPtrEqual(prev.NormalRange, tr.NormalRange)) {
		if err := s.writer.UpdateTestFields(ctx, tr.TestID, tr.Unit, tr.NormalRange); err != nil {
			return fmt.Errorf("update parent test: %w", err)
		}
	}
	return nil
}

// BatchItem is one entry of a batch update: the result id plus the fields
// to store.
type BatchItem struct {
	ID   uuid.UUID  `json:"id"`
	Data TestResult `json:"data"`
}

// BatchUpdate applies the items sequentially, stopping at the first
// failure. Used by the result-entry surface to flush a whole visit at once.
func (s *Service) BatchUpdate(ctx context.Context, items []BatchItem) error {
	for i, item := range items {
		tr := item.Data
		tr.ID = item.ID
		if err := s.Update(ctx, &tr); err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return fmt.Errorf("result not found")
	}
	return s.repo.Delete(ctx, id)
}

// SyncTestFields propagates a catalog edit onto every stored result of that
// test. Hooked into the catalog service at startup.
func (s *Service) SyncTestFields(ctx context.Context, testID uuid.UUID, unit, normalRange *string) error {
	return s.repo.UpdateFieldsByTest(ctx, testID, unit, normalRange)
}

func strPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
