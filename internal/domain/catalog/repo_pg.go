package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"
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

const testCols = `id, name, unit, normal_range, price, test_type, created_at, updated_at`

func (r *repoPG) scanTest(row pgx.Row) (*Test, error) {
	var t Test
	err := row.Scan(&t.ID, &t.Name, &t.Unit, &t.NormalRange, &t.Price, &t.TestType,
		&t.CreatedAt, &t.UpdatedAt)
	return &t, err
}

func (r *repoPG) Create(ctx context.Context, t *Test) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO tests (id, name, unit, normal_range, price, test_type)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		t.ID, t.Name, t.Unit, t.NormalRange, t.Price, t.TestType)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Test, error) {
	return r.scanTest(r.conn(ctx).QueryRow(ctx, `SELECT `+testCols+` FROM tests WHERE id = $1`, id))
}

func (r *repoPG) GetByName(ctx context.Context, name string) (*Test, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	return r.scanTest(r.conn(ctx).QueryRow(ctx,
		`SELECT `+testCols+` FROM tests WHERE LOWER(TRIM(name)) = $1`, normalized))
}

func (r *repoPG) Update(ctx context.Context, t *Test) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE tests SET name=$2, unit=$3, normal_range=$4, price=$5, test_type=$6, updated_at=NOW()
		WHERE id = $1`,
		t.ID, t.Name, t.Unit, t.NormalRange, t.Price, t.TestType)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM tests WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Test, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM tests`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+testCols+` FROM tests ORDER BY name ASC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Test
	for rows.Next() {
		t, err := r.scanTest(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, t)
	}
	return items, total, nil
}
