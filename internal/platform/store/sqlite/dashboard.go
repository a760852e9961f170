package sqlite

import (
	"context"

	"github.com/labdesk/labdesk/internal/domain/dashboard"
)

type dashboardRepo struct{ s *Store }

// Dashboards returns the dashboard layout repository view.
func (s *Store) Dashboards() dashboard.Repository { return &dashboardRepo{s: s} }

const layoutCols = `section_name, display_name, position_x, position_y, width, height, color, route, updated_at`

func scanLayout(row interface{ Scan(...any) error }) (*dashboard.Layout, error) {
	var (
		l       dashboard.Layout
		updated string
	)
	if err := row.Scan(&l.SectionName, &l.DisplayName, &l.PositionX, &l.PositionY,
		&l.Width, &l.Height, &l.Color, &l.Route, &updated); err != nil {
		return nil, err
	}
	l.UpdatedAt = parseTime(updated)
	return &l, nil
}

func (r *dashboardRepo) List(ctx context.Context) ([]*dashboard.Layout, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rows, err := r.s.db.QueryContext(ctx,
		`SELECT `+layoutCols+` FROM dashboard_layouts ORDER BY position_y, position_x`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*dashboard.Layout
	for rows.Next() {
		l, err := scanLayout(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, l)
	}
	return items, rows.Err()
}

func (r *dashboardRepo) GetBySection(ctx context.Context, sectionName string) (*dashboard.Layout, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return scanLayout(r.s.db.QueryRowContext(ctx,
		`SELECT `+layoutCols+` FROM dashboard_layouts WHERE section_name = ?`, sectionName))
}

func (r *dashboardRepo) Upsert(ctx context.Context, l *dashboard.Layout) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	_, err := r.s.db.ExecContext(ctx, `
		INSERT INTO dashboard_layouts (section_name, display_name, position_x, position_y, width, height, color, route, updated_at)
		VALUES (?,?,?,?,?,?,?,?,?)
		ON CONFLICT(section_name) DO UPDATE SET
			display_name = excluded.display_name,
			position_x = excluded.position_x,
			position_y = excluded.position_y,
			width = excluded.width,
			height = excluded.height,
			color = excluded.color,
			route = excluded.route,
			updated_at = excluded.updated_at`,
		l.SectionName, l.DisplayName, l.PositionX, l.PositionY, l.Width, l.Height,
		l.Color, l.Route, now())
	return err
}
