package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, key string) (*Setting, error) {
	return s.repo.Get(ctx, key)
}

func (s *Service) List(ctx context.Context) ([]*Setting, error) {
	return s.repo.List(ctx)
}

func (s *Service) Set(ctx context.Context, setting *Setting) error {
	setting.Key = strings.TrimSpace(setting.Key)
	if setting.Key == "" {
		return fmt.Errorf("key is required")
	}
	return s.repo.Set(ctx, setting)
}

// Value returns a setting's value, or "" when unset.
func (s *Service) Value(ctx context.Context, key string) string {
	setting, err := s.repo.Get(ctx, key)
	if err != nil {
		return ""
	}
	return setting.Value
}

// LabName returns the configured laboratory name for printed documents.
func (s *Service) LabName(ctx context.Context) string {
	if v := s.Value(ctx, KeyLabName); v != "" {
		return v
	}
	return DefaultLabName
}

// PrintSections decodes the stored custom print sections. An unset or
// malformed value yields an empty list, never an error: printing must not
// break over decoration.
func (s *Service) PrintSections(ctx context.Context) []CustomPrintSection {
	raw := s.Value(ctx, KeyPrintSections)
	if raw == "" {
		return nil
	}
	var sections []CustomPrintSection
	if err := json.Unmarshal([]byte(raw), &sections); err != nil {
		return nil
	}
	return sections
}

// SetPrintSections validates and stores the custom print sections.
func (s *Service) SetPrintSections(ctx context.Context, sections []CustomPrintSection) error {
	for i := range sections {
		sec := &sections[i]
		if strings.TrimSpace(sec.Text) == "" {
			return fmt.Errorf("section %d: text is required", i)
		}
		if sec.Position != "top" && sec.Position != "bottom" {
			return fmt.Errorf("section %d: position must be top or bottom", i)
		}
		if sec.FontSize <= 0 {
			sec.FontSize = 12
		}
		if sec.ID == "" {
			sec.ID = uuid.New().String()
		}
	}
	raw, err := json.Marshal(sections)
	if err != nil {
		return err
	}
	return s.repo.Set(ctx, &Setting{Key: KeyPrintSections, Value: string(raw)})
}
