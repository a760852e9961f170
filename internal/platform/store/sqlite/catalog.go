package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"

	"github.com/labdesk/labdesk/internal/domain/catalog"
)

type testRepo struct{ s *Store }

// Tests returns the catalog repository view.
func (s *Store) Tests() catalog.Repository { return &testRepo{s: s} }

const testCols = `id, name, unit, normal_range, price, test_type, created_at, updated_at`

func scanTest(row interface{ Scan(...any) error }) (*catalog.Test, error) {
	var (
		t                catalog.Test
		id               string
		unit, nr, price  sql.NullString
		created, updated string
	)
	if err := row.Scan(&id, &t.Name, &unit, &nr, &price, &t.TestType, &created, &updated); err != nil {
		return nil, err
	}
	var err error
	if t.ID, err = uuid.Parse(id); err != nil {
		return nil, err
	}
	t.Unit = strPtr(unit)
	t.NormalRange = strPtr(nr)
	if t.Price, err = decPtr(price); err != nil {
		return nil, err
	}
	t.CreatedAt = parseTime(created)
	t.UpdatedAt = parseTime(updated)
	return &t, nil
}

func (r *testRepo) Create(ctx context.Context, t *catalog.Test) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	_, err := r.s.db.ExecContext(ctx, `
		INSERT INTO tests (id, name, unit, normal_range, price, test_type, created_at, updated_at)
		VALUES (?,?,?,?,?,?,?,?)`,
		t.ID.String(), t.Name, nullStr(t.Unit), nullStr(t.NormalRange), nullDec(t.Price),
		t.TestType, now(), now())
	return err
}

func (r *testRepo) GetByID(ctx context.Context, id uuid.UUID) (*catalog.Test, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return scanTest(r.s.db.QueryRowContext(ctx,
		`SELECT `+testCols+` FROM tests WHERE id = ?`, id.String()))
}

func (r *testRepo) GetByName(ctx context.Context, name string) (*catalog.Test, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return scanTest(r.s.db.QueryRowContext(ctx,
		`SELECT `+testCols+` FROM tests WHERE LOWER(TRIM(name)) = ?`,
		strings.ToLower(strings.TrimSpace(name))))
}

func (r *testRepo) Update(ctx context.Context, t *catalog.Test) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	_, err := r.s.db.ExecContext(ctx, `
		UPDATE tests SET name=?, unit=?, normal_range=?, price=?, test_type=?, updated_at=?
		WHERE id = ?`,
		t.Name, nullStr(t.Unit), nullStr(t.NormalRange), nullDec(t.Price), t.TestType,
		now(), t.ID.String())
	return err
}

func (r *testRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	_, err := r.s.db.ExecContext(ctx, `DELETE FROM tests WHERE id = ?`, id.String())
	return err
}

func (r *testRepo) List(ctx context.Context, limit, offset int) ([]*catalog.Test, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var total int
	if err := r.s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tests`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.s.db.QueryContext(ctx,
		`SELECT `+testCols+` FROM tests ORDER BY name LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*catalog.Test
	for rows.Next() {
		t, err := scanTest(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, t)
	}
	return items, total, rows.Err()
}
