package dashboard

import (
	"context"
	"fmt"
	"testing"

	"github.com/labdesk/labdesk/internal/platform/auth"
)

type mockRepo struct {
	items   map[string]*Layout
	upserts int
}

func newMockRepo() *mockRepo {
	return &mockRepo{items: make(map[string]*Layout)}
}

func (m *mockRepo) List(_ context.Context) ([]*Layout, error) {
	var items []*Layout
	for _, l := range m.items {
		cp := *l
		items = append(items, &cp)
	}
	return items, nil
}

func (m *mockRepo) GetBySection(_ context.Context, name string) (*Layout, error) {
	l, ok := m.items[name]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	cp := *l
	return &cp, nil
}

func (m *mockRepo) Upsert(_ context.Context, l *Layout) error {
	m.upserts++
	cp := *l
	m.items[l.SectionName] = &cp
	return nil
}

func TestList_InitializesDefaultsOnce(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	items, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != len(DefaultLayouts()) {
		t.Fatalf("expected %d default tiles, got %d", len(DefaultLayouts()), len(items))
	}

	before := repo.upserts
	if _, err := svc.List(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.upserts != before {
		t.Error("expected no re-initialization on second list")
	}
}

func TestList_LeavesExistingRowsAlone(t *testing.T) {
	repo := newMockRepo()
	repo.items["patients"] = &Layout{SectionName: "patients", DisplayName: "My Patients"}
	svc := NewService(repo)

	items, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].DisplayName != "My Patients" {
		t.Errorf("expected the stored row untouched, got %+v", items)
	}
}

func TestVisibleFor_NilPermissionsSeesAll(t *testing.T) {
	svc := NewService(newMockRepo())
	items, err := svc.VisibleFor(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != len(DefaultLayouts()) {
		t.Errorf("expected legacy account to see all tiles, got %d", len(items))
	}
}

func TestVisibleFor_PresentPermissionsFailClosed(t *testing.T) {
	svc := NewService(newMockRepo())
	perms := auth.PermissionSet{
		"patients": {View: true},
		"tests":    {View: true}, // view, but tiles for tests need access
	}
	items, err := svc.VisibleFor(context.Background(), perms)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].SectionName != "patients" {
		names := make([]string, 0, len(items))
		for _, l := range items {
			names = append(names, l.SectionName)
		}
		t.Errorf("expected only the patients tile, got %v", names)
	}
}

func TestCommitLayout_Upserts(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	if _, err := svc.List(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	l, err := svc.CommitLayout(context.Background(), "patients", LayoutChange{PositionX: 2, PositionY: 5, Width: 6, Height: 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.PositionX != 2 || l.Width != 6 {
		t.Errorf("unexpected geometry: %+v", l)
	}
	if l.DisplayName != "Patients" {
		t.Error("expected unrelated fields preserved")
	}
}

func TestCommitLayout_Validation(t *testing.T) {
	svc := NewService(newMockRepo())
	if _, err := svc.CommitLayout(context.Background(), "bogus", LayoutChange{Width: 1, Height: 1}); err == nil {
		t.Error("expected error for unknown section")
	}
	if _, err := svc.CommitLayout(context.Background(), "patients", LayoutChange{Width: 0, Height: 1}); err == nil {
		t.Error("expected error for zero width")
	}
}

func TestRenameAndRecolor_PartialUpdates(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	if _, err := svc.List(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.Rename(context.Background(), "tests", "Catalog"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Recolor(context.Background(), "tests", "#112233"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored := repo.items["tests"]
	if stored.DisplayName != "Catalog" || stored.Color != "#112233" {
		t.Errorf("expected both partial updates applied, got %+v", stored)
	}
	if stored.Route != "/tests" {
		t.Error("expected unrelated fields untouched")
	}

	if _, err := svc.Rename(context.Background(), "tests", " "); err == nil {
		t.Error("expected error for blank display name")
	}
}
