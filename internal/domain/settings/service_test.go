package settings

import (
	"context"
	"fmt"
	"testing"
)

type mockRepo struct {
	items map[string]*Setting
}

func newMockRepo() *mockRepo {
	return &mockRepo{items: make(map[string]*Setting)}
}

func (m *mockRepo) Get(_ context.Context, key string) (*Setting, error) {
	s, ok := m.items[key]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	cp := *s
	return &cp, nil
}

func (m *mockRepo) Set(_ context.Context, s *Setting) error {
	cp := *s
	m.items[s.Key] = &cp
	return nil
}

func (m *mockRepo) List(_ context.Context) ([]*Setting, error) {
	var items []*Setting
	for _, s := range m.items {
		cp := *s
		items = append(items, &cp)
	}
	return items, nil
}

func TestSet_RequiresKey(t *testing.T) {
	svc := NewService(newMockRepo())
	if err := svc.Set(context.Background(), &Setting{Key: "  ", Value: "x"}); err == nil {
		t.Error("expected error for blank key")
	}
}

func TestSet_Upserts(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	if err := svc.Set(context.Background(), &Setting{Key: KeyTheme, Value: "dark"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Set(context.Background(), &Setting{Key: KeyTheme, Value: "light"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.items) != 1 || repo.items[KeyTheme].Value != "light" {
		t.Errorf("expected single upserted row with value light, got %+v", repo.items)
	}
}

func TestLabName_Default(t *testing.T) {
	svc := NewService(newMockRepo())
	if got := svc.LabName(context.Background()); got != DefaultLabName {
		t.Errorf("expected default lab name, got %q", got)
	}

	if err := svc.Set(context.Background(), &Setting{Key: KeyLabName, Value: "Central Lab"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := svc.LabName(context.Background()); got != "Central Lab" {
		t.Errorf("expected configured lab name, got %q", got)
	}
}

func TestPrintSections_RoundTrip(t *testing.T) {
	svc := NewService(newMockRepo())

	in := []CustomPrintSection{
		{Text: "Accredited Laboratory", Position: "top", Alignment: "center"},
		{Text: "Reviewed by the director", Position: "bottom", FontSize: 10},
	}
	if err := svc.SetPrintSections(context.Background(), in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := svc.PrintSections(context.Background())
	if len(out) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(out))
	}
	if out[0].ID == "" {
		t.Error("expected generated id")
	}
	if out[0].FontSize != 12 {
		t.Errorf("expected default font size 12, got %d", out[0].FontSize)
	}
}

func TestPrintSections_Validation(t *testing.T) {
	svc := NewService(newMockRepo())

	if err := svc.SetPrintSections(context.Background(), []CustomPrintSection{{Text: "", Position: "top"}}); err == nil {
		t.Error("expected error for blank text")
	}
	if err := svc.SetPrintSections(context.Background(), []CustomPrintSection{{Text: "x", Position: "middle"}}); err == nil {
		t.Error("expected error for invalid position")
	}
}

func TestPrintSections_MalformedValueYieldsEmpty(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	repo.items[KeyPrintSections] = &Setting{Key: KeyPrintSections, Value: "{not json"}

	if out := svc.PrintSections(context.Background()); out != nil {
		t.Errorf("expected nil for malformed value, got %+v", out)
	}
}
