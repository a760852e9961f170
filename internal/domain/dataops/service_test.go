package dataops

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/labdesk/labdesk/internal/domain/catalog"
	"github.com/labdesk/labdesk/internal/domain/finance"
	"github.com/labdesk/labdesk/internal/domain/patient"
	"github.com/labdesk/labdesk/internal/domain/result"
	"github.com/labdesk/labdesk/internal/domain/settings"
)

type memTests struct {
	items map[uuid.UUID]*catalog.Test
}

func (m *memTests) Create(_ context.Context, t *catalog.Test) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	cp := *t
	m.items[t.ID] = &cp
	return nil
}

func (m *memTests) GetByID(_ context.Context, id uuid.UUID) (*catalog.Test, error) {
	t, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	cp := *t
	return &cp, nil
}

func (m *memTests) GetByName(_ context.Context, name string) (*catalog.Test, error) {
	for _, t := range m.items {
		if strings.EqualFold(strings.TrimSpace(t.Name), strings.TrimSpace(name)) {
			cp := *t
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("not found")
}

func (m *memTests) Update(_ context.Context, t *catalog.Test) error {
	if _, ok := m.items[t.ID]; !ok {
		return fmt.Errorf("not found")
	}
	cp := *t
	m.items[t.ID] = &cp
	return nil
}

func (m *memTests) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.items, id)
	return nil
}

func (m *memTests) List(_ context.Context, limit, offset int) ([]*catalog.Test, int, error) {
	var items []*catalog.Test
	for _, t := range m.items {
		cp := *t
		items = append(items, &cp)
	}
	return page(items, limit, offset), len(m.items), nil
}

// memPatients mirrors the storage cascade: wiping patients also wipes visits
// and results.
type memPatients struct {
	items   map[uuid.UUID]*patient.Patient
	visits  *memVisits
	results *memResults
}

func (m *memPatients) Create(_ context.Context, p *patient.Patient) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	cp := *p
	m.items[p.ID] = &cp
	return nil
}

func (m *memPatients) GetByID(_ context.Context, id uuid.UUID) (*patient.Patient, error) {
	p, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	cp := *p
	return &cp, nil
}

func (m *memPatients) Update(_ context.Context, p *patient.Patient) error {
	if _, ok := m.items[p.ID]; !ok {
		return fmt.Errorf("not found")
	}
	cp := *p
	m.items[p.ID] = &cp
	return nil
}

func (m *memPatients) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.items, id)
	return nil
}

func (m *memPatients) DeleteAll(_ context.Context) error {
	m.items = make(map[uuid.UUID]*patient.Patient)
	m.visits.items = make(map[uuid.UUID]*patient.Visit)
	m.results.items = make(map[uuid.UUID]*result.TestResult)
	return nil
}

func (m *memPatients) List(_ context.Context, limit, offset int) ([]*patient.Patient, int, error) {
	var items []*patient.Patient
	for _, p := range m.items {
		cp := *p
		items = append(items, &cp)
	}
	return page(items, limit, offset), len(m.items), nil
}

type memVisits struct {
	items map[uuid.UUID]*patient.Visit
}

func (m *memVisits) Create(_ context.Context, v *patient.Visit) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	cp := *v
	m.items[v.ID] = &cp
	return nil
}

func (m *memVisits) GetByID(_ context.Context, id uuid.UUID) (*patient.Visit, error) {
	v, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	cp := *v
	return &cp, nil
}

func (m *memVisits) Update(_ context.Context, v *patient.Visit) error {
	if _, ok := m.items[v.ID]; !ok {
		return fmt.Errorf("not found")
	}
	cp := *v
	m.items[v.ID] = &cp
	return nil
}

func (m *memVisits) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.items, id)
	return nil
}

func (m *memVisits) List(_ context.Context, _ patient.VisitFilter, limit, offset int) ([]*patient.Visit, int, error) {
	var items []*patient.Visit
	for _, v := range m.items {
		cp := *v
		items = append(items, &cp)
	}
	return page(items, limit, offset), len(m.items), nil
}

type memResults struct {
	items map[uuid.UUID]*result.TestResult
}

func (m *memResults) Create(_ context.Context, tr *result.TestResult) error {
	if tr.ID == uuid.Nil {
		tr.ID = uuid.New()
	}
	cp := *tr
	m.items[tr.ID] = &cp
	return nil
}

func (m *memResults) GetByID(_ context.Context, id uuid.UUID) (*result.TestResult, error) {
	tr, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	cp := *tr
	return &cp, nil
}

func (m *memResults) Update(_ context.Context, tr *result.TestResult) error {
	if _, ok := m.items[tr.ID]; !ok {
		return fmt.Errorf("not found")
	}
	cp := *tr
	m.items[tr.ID] = &cp
	return nil
}

func (m *memResults) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.items, id)
	return nil
}

func (m *memResults) ListByVisit(_ context.Context, visitID uuid.UUID) ([]*result.TestResult, error) {
	var items []*result.TestResult
	for _, tr := range m.items {
		if tr.VisitID == visitID {
			cp := *tr
			items = append(items, &cp)
		}
	}
	return items, nil
}

func (m *memResults) List(_ context.Context, limit, offset int) ([]*result.TestResult, int, error) {
	var items []*result.TestResult
	for _, tr := range m.items {
		cp := *tr
		items = append(items, &cp)
	}
	return page(items, limit, offset), len(m.items), nil
}

func (m *memResults) UpdateFieldsByTest(_ context.Context, testID uuid.UUID, unit, normalRange *string) error {
	for _, tr := range m.items {
		if tr.TestID == testID {
			tr.Unit = unit
			tr.NormalRange = normalRange
		}
	}
	return nil
}

type memExpenses struct {
	items map[uuid.UUID]*finance.Expense
}

func (m *memExpenses) Create(_ context.Context, e *finance.Expense) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	cp := *e
	m.items[e.ID] = &cp
	return nil
}

func (m *memExpenses) GetByID(_ context.Context, id uuid.UUID) (*finance.Expense, error) {
	e, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	cp := *e
	return &cp, nil
}

func (m *memExpenses) Update(_ context.Context, e *finance.Expense) error {
	if _, ok := m.items[e.ID]; !ok {
		return fmt.Errorf("not found")
	}
	cp := *e
	m.items[e.ID] = &cp
	return nil
}

func (m *memExpenses) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.items, id)
	return nil
}

func (m *memExpenses) DeleteAll(_ context.Context) error {
	m.items = make(map[uuid.UUID]*finance.Expense)
	return nil
}

func (m *memExpenses) List(_ context.Context, _ string, limit, offset int) ([]*finance.Expense, int, error) {
	var items []*finance.Expense
	for _, e := range m.items {
		cp := *e
		items = append(items, &cp)
	}
	return page(items, limit, offset), len(m.items), nil
}

type memSettings struct {
	items map[string]*settings.Setting
}

func (m *memSettings) Get(_ context.Context, key string) (*settings.Setting, error) {
	s, ok := m.items[key]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	cp := *s
	return &cp, nil
}

func (m *memSettings) Set(_ context.Context, s *settings.Setting) error {
	cp := *s
	m.items[s.Key] = &cp
	return nil
}

func (m *memSettings) List(_ context.Context) ([]*settings.Setting, error) {
	var items []*settings.Setting
	for _, s := range m.items {
		cp := *s
		items = append(items, &cp)
	}
	return items, nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

type fixture struct {
	svc      *Service
	tests    *memTests
	patients *memPatients
	visits   *memVisits
	results  *memResults
	expenses *memExpenses
	settings *memSettings
}

func newFixture() *fixture {
	visits := &memVisits{items: make(map[uuid.UUID]*patient.Visit)}
	results := &memResults{items: make(map[uuid.UUID]*result.TestResult)}
	fx := &fixture{
		tests:    &memTests{items: make(map[uuid.UUID]*catalog.Test)},
		patients: &memPatients{items: make(map[uuid.UUID]*patient.Patient), visits: visits, results: results},
		visits:   visits,
		results:  results,
		expenses: &memExpenses{items: make(map[uuid.UUID]*finance.Expense)},
		settings: &memSettings{items: make(map[string]*settings.Setting)},
	}
	fx.svc = NewService(fx.tests, fx.patients, fx.visits, fx.results, fx.expenses, fx.settings, nil)
	return fx
}

func (fx *fixture) seed(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	price := decimal.NewFromInt(8)
	test := &catalog.Test{Name: "CBC", Price: &price, TestType: catalog.TypeStandard}
	if err := fx.tests.Create(ctx, test); err != nil {
		t.Fatal(err)
	}

	p := &patient.Patient{Name: "Ali"}
	if err := fx.patients.Create(ctx, p); err != nil {
		t.Fatal(err)
	}
	v := &patient.Visit{PatientID: p.ID, PatientName: "Ali", VisitDate: time.Now(), TestIDs: []uuid.UUID{test.ID}}
	if err := fx.visits.Create(ctx, v); err != nil {
		t.Fatal(err)
	}
	tr := &result.TestResult{VisitID: v.ID, TestID: test.ID, TestName: "CBC", TestType: catalog.TypeStandard}
	if err := fx.results.Create(ctx, tr); err != nil {
		t.Fatal(err)
	}
	amount := decimal.NewFromInt(12)
	if err := fx.expenses.Create(ctx, &finance.Expense{Name: "Reagents", Amount: amount, Date: time.Now()}); err != nil {
		t.Fatal(err)
	}
	if err := fx.settings.Set(ctx, &settings.Setting{Key: settings.KeyLabName, Value: "Central Lab"}); err != nil {
		t.Fatal(err)
	}
}

func TestClear_WipesOperationalDataOnly(t *testing.T) {
	fx := newFixture()
	fx.seed(t)

	if err := fx.svc.Clear(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(fx.patients.items) != 0 || len(fx.visits.items) != 0 || len(fx.results.items) != 0 {
		t.Error("expected patients, visits and results to be wiped")
	}
	if len(fx.expenses.items) != 0 {
		t.Error("expected expenses to be wiped")
	}
	if len(fx.tests.items) != 1 {
		t.Error("expected the test catalog to survive")
	}
	if len(fx.settings.items) != 1 {
		t.Error("expected settings to survive")
	}
}

func TestExportImport_RoundTrip(t *testing.T) {
	src := newFixture()
	src.seed(t)
	ctx := context.Background()

	archive, err := src.svc.Export(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(archive.Tests) != 1 || len(archive.Patients) != 1 || len(archive.Visits) != 1 ||
		len(archive.Results) != 1 || len(archive.Expenses) != 1 || len(archive.Settings) != 1 {
		t.Fatalf("incomplete export: %+v", archive)
	}

	dst := newFixture()
	sum, err := dst.svc.Import(ctx, archive)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.Patients != 1 || sum.Visits != 1 || sum.Results != 1 || sum.Tests != 1 {
		t.Errorf("unexpected summary: %+v", sum)
	}

	srcPatient := archive.Patients[0]
	got, err := dst.patients.GetByID(ctx, srcPatient.ID)
	if err != nil {
		t.Fatalf("expected the patient id to be preserved: %v", err)
	}
	if got.Name != "Ali" {
		t.Errorf("expected Ali, got %q", got.Name)
	}

	srcVisit := archive.Visits[0]
	v, err := dst.visits.GetByID(ctx, srcVisit.ID)
	if err != nil {
		t.Fatalf("expected the visit id to be preserved: %v", err)
	}
	if v.PatientID != srcPatient.ID {
		t.Error("expected the visit to keep its patient reference")
	}

	name, err := dst.settings.Get(ctx, settings.KeyLabName)
	if err != nil || name.Value != "Central Lab" {
		t.Errorf("expected the lab name setting to round-trip, got %v (%v)", name, err)
	}
}

func TestImport_ReplacesExistingData(t *testing.T) {
	fx := newFixture()
	fx.seed(t)
	ctx := context.Background()

	archive, err := fx.svc.Export(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Data entered after the export is replaced by the archive's contents.
	if err := fx.patients.Create(ctx, &patient.Patient{Name: "Omar"}); err != nil {
		t.Fatal(err)
	}

	if _, err := fx.svc.Import(ctx, archive); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fx.patients.items) != 1 {
		t.Fatalf("expected 1 patient after import, got %d", len(fx.patients.items))
	}
	for _, p := range fx.patients.items {
		if p.Name != "Ali" {
			t.Errorf("expected only the archived patient, got %q", p.Name)
		}
	}
}

func TestImport_RejectsDanglingReferences(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	a := &Archive{
		Version: ArchiveVersion,
		Visits:  []*patient.Visit{{ID: uuid.New(), PatientID: uuid.New()}},
	}
	if _, err := fx.svc.Import(ctx, a); err == nil {
		t.Error("expected error for a visit without its patient")
	}
	if len(fx.visits.items) != 0 {
		t.Error("expected nothing written for a rejected archive")
	}
}

func TestImport_RejectsUnknownVersion(t *testing.T) {
	fx := newFixture()
	if _, err := fx.svc.Import(context.Background(), &Archive{Version: 99}); err == nil {
		t.Error("expected error for unsupported archive version")
	}
}
