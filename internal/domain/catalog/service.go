package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ResultSyncer pushes catalog field changes onto existing results so that
// previously entered results keep showing the unit and reference range the
// lab currently publishes. Wired to the result service at startup.
type ResultSyncer interface {
	SyncTestFields(ctx context.Context, testID uuid.UUID, unit, normalRange *string) error
}

type Service struct {
	repo   Repository
	syncer ResultSyncer
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// SetResultSyncer attaches the optional result-side sync hook.
func (s *Service) SetResultSyncer(rs ResultSyncer) {
	s.syncer = rs
}

var validTestTypes = map[string]bool{TypeStandard: true, TypeUrine: true}

func (s *Service) Create(ctx context.Context, t *Test) error {
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		return fmt.Errorf("name is required")
	}
	if t.TestType == "" {
		t.TestType = TypeStandard
	}
	if !validTestTypes[t.TestType] {
		return fmt.Errorf("invalid test_type: %s", t.TestType)
	}
	if t.Price != nil && t.Price.IsNegative() {
		return fmt.Errorf("price must not be negative")
	}
	return s.repo.Create(ctx, t)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Test, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Test, int, error) {
	return s.repo.List(ctx, limit, offset)
}

// Update persists catalog changes and, when unit or normal range changed,
// propagates the new values to existing results for this test.
func (s *Service) Update(ctx context.Context, t *Test) error {
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		return fmt.Errorf("name is required")
	}
	if t.TestType != "" && !validTestTypes[t.TestType] {
		return fmt.Errorf("invalid test_type: %s", t.TestType)
	}
	if t.Price != nil && t.Price.IsNegative() {
		return fmt.Errorf("price must not be negative")
	}

	prev, err := s.repo.GetByID(ctx, t.ID)
	if err != nil {
		return fmt.Errorf("test not found")
	}
	if t.TestType == "" {
		t.TestType = prev.TestType
	}
	if err := s.repo.Update(ctx, t); err != nil {
		return err
	}

	if s.syncer != nil && (!strPtrEqual(prev.Unit, t.Unit) || !strPtrEqual(prev.NormalRange, t.NormalRange)) {
		if err := s.syncer.SyncTestFields(ctx, t.ID, t.Unit, t.NormalRange); err != nil {
			return fmt.Errorf("sync results: %w", err)
		}
	}
	return nil
}

// Delete removes the catalog entry. Results already entered against it are
// kept: they carry their own copies of name, unit and range.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return fmt.Errorf("test not found")
	}
	return s.repo.Delete(ctx, id)
}

// UpdateTestFields writes just unit and normal range onto a catalog entry.
// Used by the result side when an operator edits those fields on a result:
// the catalog follows, but without re-triggering the result sync.
func (s *Service) UpdateTestFields(ctx context.Context, id uuid.UUID, unit, normalRange *string) error {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("test not found")
	}
	t.Unit = unit
	t.NormalRange = normalRange
	return s.repo.Update(ctx, t)
}

// SeedDefaults installs the default catalog. Entries are matched by
// normalized name, so calling it repeatedly adds nothing new. Returns the
// number of entries created.
func (s *Service) SeedDefaults(ctx context.Context) (int, error) {
	created := 0
	for _, seed := range DefaultCatalog() {
		_, err := s.repo.GetByName(ctx, seed.Name)
		if err == nil {
			continue
		}
		if !isNotFound(err) {
			// A lookup failure is not absence; tests.name carries no unique
			// constraint, so creating here could duplicate a seed row.
			return created, fmt.Errorf("look up %q: %w", seed.Name, err)
		}
		t := seed
		if err := s.repo.Create(ctx, &t); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

// AddUrineTest installs the structured urine analysis entry if the catalog
// does not have one yet.
func (s *Service) AddUrineTest(ctx context.Context) (*Test, bool, error) {
	existing, err := s.repo.GetByName(ctx, UrineTestName)
	if err == nil {
		return existing, false, nil
	}
	if !isNotFound(err) {
		return nil, false, fmt.Errorf("look up %q: %w", UrineTestName, err)
	}
	t := UrineTest()
	if err := s.repo.Create(ctx, &t); err != nil {
		return nil, false, err
	}
	return &t, true, nil
}

// isNotFound reports whether a lookup error means the row does not exist,
// as opposed to the lookup itself failing. The pg repo surfaces
// pgx.ErrNoRows, the embedded sqlite adapter sql.ErrNoRows.
func isNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows)
}

func strPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
