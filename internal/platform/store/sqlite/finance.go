package sqlite

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/labdesk/labdesk/internal/domain/finance"
)

type expenseRepo struct{ s *Store }

// Expenses returns the expense repository view.
func (s *Store) Expenses() finance.ExpenseRepository { return &expenseRepo{s: s} }

const expenseCols = `id, name, amount, date, created_at, updated_at`

func scanExpense(row interface{ Scan(...any) error }) (*finance.Expense, error) {
	var (
		e                finance.Expense
		id, amount, date string
		created, updated string
	)
	if err := row.Scan(&id, &e.Name, &amount, &date, &created, &updated); err != nil {
		return nil, err
	}
	var err error
	if e.ID, err = uuid.Parse(id); err != nil {
		return nil, err
	}
	if e.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	e.Date = parseTime(date)
	e.CreatedAt = parseTime(created)
	e.UpdatedAt = parseTime(updated)
	return &e, nil
}

func (r *expenseRepo) Create(ctx context.Context, e *finance.Expense) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	_, err := r.s.db.ExecContext(ctx, `
		INSERT INTO expenses (id, name, amount, date, created_at, updated_at)
		VALUES (?,?,?,?,?,?)`,
		e.ID.String(), e.Name, e.Amount.String(), fmtTime(e.Date), now(), now())
	return err
}

func (r *expenseRepo) GetByID(ctx context.Context, id uuid.UUID) (*finance.Expense, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return scanExpense(r.s.db.QueryRowContext(ctx,
		`SELECT `+expenseCols+` FROM expenses WHERE id = ?`, id.String()))
}

func (r *expenseRepo) Update(ctx context.Context, e *finance.Expense) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	_, err := r.s.db.ExecContext(ctx, `
		UPDATE expenses SET name=?, amount=?, date=?, updated_at=?
		WHERE id = ?`,
		e.Name, e.Amount.String(), fmtTime(e.Date), now(), e.ID.String())
	return err
}

func (r *expenseRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	_, err := r.s.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id.String())
	return err
}

func (r *expenseRepo) DeleteAll(ctx context.Context) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	_, err := r.s.db.ExecContext(ctx, `DELETE FROM expenses`)
	return err
}

func (r *expenseRepo) List(ctx context.Context, date string, limit, offset int) ([]*finance.Expense, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	query := `SELECT ` + expenseCols + ` FROM expenses WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM expenses WHERE 1=1`
	var args []any

	if date != "" {
		query += ` AND DATE(date) = ?`
		countQuery += ` AND DATE(date) = ?`
		args = append(args, date)
	}

	var total int
	if err := r.s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY date DESC, created_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := r.s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*finance.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, e)
	}
	return items, total, rows.Err()
}
