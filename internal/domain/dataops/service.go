// Package dataops implements whole-database maintenance: wiping operational
// data, exporting a portable archive and importing one back.
package dataops

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/labdesk/labdesk/internal/domain/catalog"
	"github.com/labdesk/labdesk/internal/domain/finance"
	"github.com/labdesk/labdesk/internal/domain/patient"
	"github.com/labdesk/labdesk/internal/domain/result"
	"github.com/labdesk/labdesk/internal/domain/settings"
)

// ArchiveVersion is bumped when the archive layout changes incompatibly.
const ArchiveVersion = 1

// exportPageSize bounds each listing query while paging the full tables.
const exportPageSize = 500

// Archive is the portable snapshot produced by Export and consumed by
// Import. Accounts are deliberately absent: password hashes never leave the
// database.
type Archive struct {
	Version    int                  `json:"version"`
	ExportedAt time.Time            `json:"exported_at"`
	Tests      []*catalog.Test      `json:"tests"`
	Patients   []*patient.Patient   `json:"patients"`
	Visits     []*patient.Visit     `json:"visits"`
	Results    []*result.TestResult `json:"results"`
	Expenses   []*finance.Expense   `json:"expenses"`
	Settings   []*settings.Setting  `json:"settings"`
}

// Summary counts what an operation touched.
type Summary struct {
	Tests    int `json:"tests"`
	Patients int `json:"patients"`
	Visits   int `json:"visits"`
	Results  int `json:"results"`
	Expenses int `json:"expenses"`
	Settings int `json:"settings"`
}

// TxRunner wraps an operation in a storage transaction; a nil runner
// executes directly.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

func passthroughTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type Service struct {
	tests    catalog.Repository
	patients patient.PatientRepository
	visits   patient.VisitRepository
	results  result.Repository
	expenses finance.ExpenseRepository
	settings settings.Repository
	tx       TxRunner
}

func NewService(
	tests catalog.Repository,
	patients patient.PatientRepository,
	visits patient.VisitRepository,
	results result.Repository,
	expenses finance.ExpenseRepository,
	sett settings.Repository,
	tx TxRunner,
) *Service {
	if tx == nil {
		tx = passthroughTx
	}
	return &Service{
		tests:    tests,
		patients: patients,
		visits:   visits,
		results:  results,
		expenses: expenses,
		settings: sett,
		tx:       tx,
	}
}

// Clear deletes all patients, visits, results and expenses. The test catalog,
// settings and accounts survive.
func (s *Service) Clear(ctx context.Context) error {
	return s.tx(ctx, func(ctx context.Context) error {
		if err := s.patients.DeleteAll(ctx); err != nil {
			return fmt.Errorf("clear patients: %w", err)
		}
		if err := s.expenses.DeleteAll(ctx); err != nil {
			return fmt.Errorf("clear expenses: %w", err)
		}
		return nil
	})
}

// Export snapshots every table into one archive.
func (s *Service) Export(ctx context.Context) (*Archive, error) {
	a := &Archive{Version: ArchiveVersion, ExportedAt: time.Now().UTC()}

	for offset := 0; ; offset += exportPageSize {
		page, total, err := s.tests.List(ctx, exportPageSize, offset)
		if err != nil {
			return nil, fmt.Errorf("export tests: %w", err)
		}
		a.Tests = append(a.Tests, page...)
		if offset+exportPageSize >= total {
			break
		}
	}
	for offset := 0; ; offset += exportPageSize {
		page, total, err := s.patients.List(ctx, exportPageSize, offset)
		if err != nil {
			return nil, fmt.Errorf("export patients: %w", err)
		}
		a.Patients = append(a.Patients, page...)
		if offset+exportPageSize >= total {
			break
		}
	}
	for offset := 0; ; offset += exportPageSize {
		page, total, err := s.visits.List(ctx, patient.VisitFilter{}, exportPageSize, offset)
		if err != nil {
			return nil, fmt.Errorf("export visits: %w", err)
		}
		a.Visits = append(a.Visits, page...)
		if offset+exportPageSize >= total {
			break
		}
	}
	for offset := 0; ; offset += exportPageSize {
		page, total, err := s.results.List(ctx, exportPageSize, offset)
		if err != nil {
			return nil, fmt.Errorf("export results: %w", err)
		}
		a.Results = append(a.Results, page...)
		if offset+exportPageSize >= total {
			break
		}
	}
	for offset := 0; ; offset += exportPageSize {
		page, total, err := s.expenses.List(ctx, "", exportPageSize, offset)
		if err != nil {
			return nil, fmt.Errorf("export expenses: %w", err)
		}
		a.Expenses = append(a.Expenses, page...)
		if offset+exportPageSize >= total {
			break
		}
	}

	sett, err := s.settings.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("export settings: %w", err)
	}
	a.Settings = sett

	return a, nil
}

// Import restores an archive. Operational data (patients, visits, results,
// expenses) is wiped and replaced; tests and settings are upserted so rows
// added since the export survive. Record IDs are preserved.
func (s *Service) Import(ctx context.Context, a *Archive) (*Summary, error) {
	if a == nil {
		return nil, fmt.Errorf("archive is empty")
	}
	if a.Version != ArchiveVersion {
		return nil, fmt.Errorf("unsupported archive version %d", a.Version)
	}
	if err := validateArchive(a); err != nil {
		return nil, err
	}

	sum := &Summary{}
	err := s.tx(ctx, func(ctx context.Context) error {
		if err := s.patients.DeleteAll(ctx); err != nil {
			return fmt.Errorf("wipe patients: %w", err)
		}
		if err := s.expenses.DeleteAll(ctx); err != nil {
			return fmt.Errorf("wipe expenses: %w", err)
		}

		for _, t := range a.Tests {
			if _, err := s.tests.GetByID(ctx, t.ID); err == nil {
				if err := s.tests.Update(ctx, t); err != nil {
					return fmt.Errorf("import test %s: %w", t.Name, err)
				}
			} else if err := s.tests.Create(ctx, t); err != nil {
				return fmt.Errorf("import test %s: %w", t.Name, err)
			}
			sum.Tests++
		}
		for _, p := range a.Patients {
			if err := s.patients.Create(ctx, p); err != nil {
				return fmt.Errorf("import patient %s: %w", p.Name, err)
			}
			sum.Patients++
		}
		for _, v := range a.Visits {
			if err := s.visits.Create(ctx, v); err != nil {
				return fmt.Errorf("import visit %s: %w", v.ID, err)
			}
			sum.Visits++
		}
		for _, r := range a.Results {
			if err := s.results.Create(ctx, r); err != nil {
				return fmt.Errorf("import result %s: %w", r.ID, err)
			}
			sum.Results++
		}
		for _, e := range a.Expenses {
			if err := s.expenses.Create(ctx, e); err != nil {
				return fmt.Errorf("import expense %s: %w", e.Name, err)
			}
			sum.Expenses++
		}
		for _, st := range a.Settings {
			if err := s.settings.Set(ctx, st); err != nil {
				return fmt.Errorf("import setting %s: %w", st.Key, err)
			}
			sum.Settings++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sum, nil
}

// validateArchive rejects archives with dangling references before any row
// is written.
func validateArchive(a *Archive) error {
	patients := make(map[uuid.UUID]bool, len(a.Patients))
	for _, p := range a.Patients {
		if p.ID == uuid.Nil {
			return fmt.Errorf("patient %q has no id", p.Name)
		}
		patients[p.ID] = true
	}
	visits := make(map[uuid.UUID]bool, len(a.Visits))
	for _, v := range a.Visits {
		if !patients[v.PatientID] {
			return fmt.Errorf("visit %s references unknown patient %s", v.ID, v.PatientID)
		}
		visits[v.ID] = true
	}
	for _, r := range a.Results {
		if !visits[r.VisitID] {
			return fmt.Errorf("result %s references unknown visit %s", r.ID, r.VisitID)
		}
	}
	return nil
}
