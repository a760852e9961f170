package dashboard

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/labdesk/labdesk/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const layoutCols = `section_name, display_name, position_x, position_y, width, height, color, route, updated_at`

func (r *repoPG) scanLayout(row pgx.Row) (*Layout, error) {
	var l Layout
	err := row.Scan(&l.SectionName, &l.DisplayName, &l.PositionX, &l.PositionY,
		&l.Width, &l.Height, &l.Color, &l.Route, &l.UpdatedAt)
	return &l, err
}

func (r *repoPG) List(ctx context.Context) ([]*Layout, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+layoutCols+` FROM dashboard_layouts ORDER BY position_y, position_x`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Layout
	for rows.Next() {
		l, err := r.scanLayout(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, l)
	}
	return items, nil
}

func (r *repoPG) GetBySection(ctx context.Context, sectionName string) (*Layout, error) {
	return r.scanLayout(r.conn(ctx).QueryRow(ctx,
		`SELECT `+layoutCols+` FROM dashboard_layouts WHERE section_name = $1`, sectionName))
}

func (r *repoPG) Upsert(ctx context.Context, l *Layout) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO dashboard_layouts (section_name, display_name, position_x, position_y, width, height, color, route)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (section_name) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			position_x = EXCLUDED.position_x,
			position_y = EXCLUDED.position_y,
			width = EXCLUDED.width,
			height = EXCLUDED.height,
			color = EXCLUDED.color,
			route = EXCLUDED.route,
			updated_at = NOW()`,
		l.SectionName, l.DisplayName, l.PositionX, l.PositionY, l.Width, l.Height, l.Color, l.Route)
	return err
}
