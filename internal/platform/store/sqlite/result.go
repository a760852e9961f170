package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/labdesk/labdesk/internal/domain/result"
)

type resultRepo struct{ s *Store }

// Results returns the test result repository view.
func (s *Store) Results() result.Repository { return &resultRepo{s: s} }

const resultCols = `id, visit_id, test_id, test_name, result, unit, normal_range, price, test_type, urine_data, created_at, updated_at`

func scanResult(row interface{ Scan(...any) error }) (*result.TestResult, error) {
	var (
		tr                   result.TestResult
		id, visitID, testID  string
		res, unit, nr, price sql.NullString
		urine                sql.NullString
		created, updated     string
	)
	if err := row.Scan(&id, &visitID, &testID, &tr.TestName, &res, &unit, &nr, &price,
		&tr.TestType, &urine, &created, &updated); err != nil {
		return nil, err
	}
	var err error
	if tr.ID, err = uuid.Parse(id); err != nil {
		return nil, err
	}
	if tr.VisitID, err = uuid.Parse(visitID); err != nil {
		return nil, err
	}
	if tr.TestID, err = uuid.Parse(testID); err != nil {
		return nil, err
	}
	tr.Result = strPtr(res)
	tr.Unit = strPtr(unit)
	tr.NormalRange = strPtr(nr)
	if tr.Price, err = decPtr(price); err != nil {
		return nil, err
	}
	if urine.Valid && urine.String != "" {
		tr.UrineData = &result.UrineData{}
		if err := json.Unmarshal([]byte(urine.String), tr.UrineData); err != nil {
			return nil, fmt.Errorf("decode urine_data: %w", err)
		}
	}
	tr.CreatedAt = parseTime(created)
	tr.UpdatedAt = parseTime(updated)
	return &tr, nil
}

func encodeUrine(u *result.UrineData) (sql.NullString, error) {
	if u == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(u)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("encode urine_data: %w", err)
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func (r *resultRepo) Create(ctx context.Context, tr *result.TestResult) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if tr.ID == uuid.Nil {
		tr.ID = uuid.New()
	}
	urine, err := encodeUrine(tr.UrineData)
	if err != nil {
		return err
	}
	_, err = r.s.db.ExecContext(ctx, `
		INSERT INTO test_results (id, visit_id, test_id, test_name, result, unit, normal_range, price, test_type, urine_data, created_at, updated_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		tr.ID.String(), tr.VisitID.String(), tr.TestID.String(), tr.TestName,
		nullStr(tr.Result), nullStr(tr.Unit), nullStr(tr.NormalRange), nullDec(tr.Price),
		tr.TestType, urine, now(), now())
	return err
}

func (r *resultRepo) GetByID(ctx context.Context, id uuid.UUID) (*result.TestResult, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return scanResult(r.s.db.QueryRowContext(ctx,
		`SELECT `+resultCols+` FROM test_results WHERE id = ?`, id.String()))
}

func (r *resultRepo) Update(ctx context.Context, tr *result.TestResult) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	urine, err := encodeUrine(tr.UrineData)
	if err != nil {
		return err
	}
	_, err = r.s.db.ExecContext(ctx, `
		UPDATE test_results SET test_name=?, result=?, unit=?, normal_range=?, price=?, test_type=?, urine_data=?, updated_at=?
		WHERE id = ?`,
		tr.TestName, nullStr(tr.Result), nullStr(tr.Unit), nullStr(tr.NormalRange),
		nullDec(tr.Price), tr.TestType, urine, now(), tr.ID.String())
	return err
}

func (r *resultRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	_, err := r.s.db.ExecContext(ctx, `DELETE FROM test_results WHERE id = ?`, id.String())
	return err
}

func (r *resultRepo) ListByVisit(ctx context.Context, visitID uuid.UUID) ([]*result.TestResult, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rows, err := r.s.db.QueryContext(ctx,
		`SELECT `+resultCols+` FROM test_results WHERE visit_id = ? ORDER BY created_at`,
		visitID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*result.TestResult
	for rows.Next() {
		tr, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, tr)
	}
	return items, rows.Err()
}

func (r *resultRepo) List(ctx context.Context, limit, offset int) ([]*result.TestResult, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var total int
	if err := r.s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM test_results`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.s.db.QueryContext(ctx,
		`SELECT `+resultCols+` FROM test_results ORDER BY created_at LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*result.TestResult
	for rows.Next() {
		tr, err := scanResult(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, tr)
	}
	return items, total, rows.Err()
}

func (r *resultRepo) UpdateFieldsByTest(ctx context.Context, testID uuid.UUID, unit, normalRange *string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	_, err := r.s.db.ExecContext(ctx, `
		UPDATE test_results SET unit=?, normal_range=?, updated_at=?
		WHERE test_id = ?`,
		nullStr(unit), nullStr(normalRange), now(), testID.String())
	return err
}
