package dashboard

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/labdesk/labdesk/internal/platform/auth"
)

type Service struct {
	repo Repository

	initOnce sync.Once
	initErr  error
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns all tiles, installing the default set first if the table is
// empty. Initialization runs at most once per process and is idempotent
// across restarts (a non-empty table is left alone).
func (s *Service) List(ctx context.Context) ([]*Layout, error) {
	s.initOnce.Do(func() {
		s.initErr = s.initDefaults(ctx)
	})
	if s.initErr != nil {
		return nil, s.initErr
	}
	return s.repo.List(ctx)
}

func (s *Service) initDefaults(ctx context.Context) error {
	existing, err := s.repo.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	for _, l := range DefaultLayouts() {
		tile := l
		if err := s.repo.Upsert(ctx, &tile); err != nil {
			return err
		}
	}
	return nil
}

// VisibleFor filters tiles by the principal's permissions: a tile shows iff
// the section's flag is granted. A nil permission set (legacy account) sees
// everything; a present set hides any section it does not grant.
func (s *Service) VisibleFor(ctx context.Context, perms auth.PermissionSet) ([]*Layout, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	visible := make([]*Layout, 0, len(all))
	for _, l := range all {
		action, ok := sectionActions[l.SectionName]
		if !ok {
			continue
		}
		if perms.Allows(l.SectionName, action) {
			visible = append(visible, l)
		}
	}
	return visible, nil
}

// LayoutChange is a drag/resize-stop commit.
type LayoutChange struct {
	PositionX int `json:"position_x"`
	PositionY int `json:"position_y"`
	Width     int `json:"width"`
	Height    int `json:"height"`
}

// CommitLayout upserts the geometry of one tile. Called once per
// drag/resize stop, not per frame.
func (s *Service) CommitLayout(ctx context.Context, sectionName string, change LayoutChange) (*Layout, error) {
	if !ValidSection(sectionName) {
		return nil, fmt.Errorf("unknown section: %s", sectionName)
	}
	if change.Width <= 0 || change.Height <= 0 {
		return nil, fmt.Errorf("width and height must be positive")
	}
	if change.PositionX < 0 || change.PositionY < 0 {
		return nil, fmt.Errorf("position must not be negative")
	}

	l, err := s.repo.GetBySection(ctx, sectionName)
	if err != nil {
		// Committing against a missing row recreates it from the default.
		l = defaultFor(sectionName)
	}
	l.PositionX = change.PositionX
	l.PositionY = change.PositionY
	l.Width = change.Width
	l.Height = change.Height
	if err := s.repo.Upsert(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// Rename updates only the display name.
func (s *Service) Rename(ctx context.Context, sectionName, displayName string) (*Layout, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, fmt.Errorf("display name is required")
	}
	l, err := s.repo.GetBySection(ctx, sectionName)
	if err != nil {
		return nil, fmt.Errorf("section not found")
	}
	l.DisplayName = displayName
	if err := s.repo.Upsert(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// Recolor updates only the tile color.
func (s *Service) Recolor(ctx context.Context, sectionName, color string) (*Layout, error) {
	color = strings.TrimSpace(color)
	if color == "" {
		return nil, fmt.Errorf("color is required")
	}
	l, err := s.repo.GetBySection(ctx, sectionName)
	if err != nil {
		return nil, fmt.Errorf("section not found")
	}
	l.Color = color
	if err := s.repo.Upsert(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func defaultFor(sectionName string) *Layout {
	for _, l := range DefaultLayouts() {
		if l.SectionName == sectionName {
			tile := l
			return &tile
		}
	}
	return &Layout{SectionName: sectionName, DisplayName: sectionName, Width: 4, Height: 3}
}
