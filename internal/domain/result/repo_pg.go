package result

import (
	"context"

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

const resultCols = `id, visit_id, test_id, test_name, result, unit, normal_range, price,
	test_type, urine_data, created_at, updated_at`

func (r *repoPG) scanResult(row pgx.Row) (*TestResult, error) {
	var tr TestResult
	err := row.Scan(&tr.ID, &tr.VisitID, &tr.TestID, &tr.TestName, &tr.Result, &tr.Unit,
		&tr.NormalRange, &tr.Price, &tr.TestType, &tr.UrineData, &tr.CreatedAt, &tr.UpdatedAt)
	return &tr, err
}

func (r *repoPG) Create(ctx context.Context, tr *TestResult) error {
	if tr.ID == uuid.Nil {
		tr.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO test_results (id, visit_id, test_id, test_name, result, unit,
			normal_range, price, test_type, urine_data)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		tr.ID, tr.VisitID, tr.TestID, tr.TestName, tr.Result, tr.Unit,
		tr.NormalRange, tr.Price, tr.TestType, tr.UrineData)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*TestResult, error) {
	return r.scanResult(r.conn(ctx).QueryRow(ctx, `SELECT `+resultCols+` FROM test_results WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, tr *TestResult) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE test_results SET test_name=$2, result=$3, unit=$4, normal_range=$5,
			price=$6, urine_data=$7, updated_at=NOW()
		WHERE id = $1`,
		tr.ID, tr.TestName, tr.Result, tr.Unit, tr.NormalRange, tr.Price, tr.UrineData)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM test_results WHERE id = $1`, id)
	return err
}

func (r *repoPG) ListByVisit(ctx context.Context, visitID uuid.UUID) ([]*TestResult, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+resultCols+` FROM test_results WHERE visit_id = $1 ORDER BY created_at ASC`, visitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*TestResult
	for rows.Next() {
		tr, err := r.scanResult(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, tr)
	}
	return items, nil
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*TestResult, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM test_results`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+resultCols+` FROM test_results ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*TestResult
	for rows.Next() {
		tr, err := r.scanResult(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, tr)
	}
	return items, total, nil
}

func (r *repoPG) UpdateFieldsByTest(ctx context.Context, testID uuid.UUID, unit, normalRange *string) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE test_results SET unit=$2, normal_range=$3, updated_at=NOW()
		WHERE test_id = $1`, testID, unit, normalRange)
	return err
}
