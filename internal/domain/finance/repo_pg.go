package finance

import (
	"context"
	"fmt"

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

type expenseRepoPG struct{ pool *pgxpool.Pool }

func NewExpenseRepoPG(pool *pgxpool.Pool) ExpenseRepository { return &expenseRepoPG{pool: pool} }

func (r *expenseRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const expenseCols = `id, name, amount, date, created_at, updated_at`

func (r *expenseRepoPG) scanExpense(row pgx.Row) (*Expense, error) {
	var e Expense
	err := row.Scan(&e.ID, &e.Name, &e.Amount, &e.Date, &e.CreatedAt, &e.UpdatedAt)
	return &e, err
}

func (r *expenseRepoPG) Create(ctx context.Context, e *Expense) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO expenses (id, name, amount, date)
		VALUES ($1,$2,$3,$4)`,
		e.ID, e.Name, e.Amount, e.Date)
	return err
}

func (r *expenseRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Expense, error) {
	return r.scanExpense(r.conn(ctx).QueryRow(ctx, `SELECT `+expenseCols+` FROM expenses WHERE id = $1`, id))
}

func (r *expenseRepoPG) Update(ctx context.Context, e *Expense) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE expenses SET name=$2, amount=$3, date=$4, updated_at=NOW()
		WHERE id = $1`,
		e.ID, e.Name, e.Amount, e.Date)
	return err
}

func (r *expenseRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	return err
}

func (r *expenseRepoPG) List(ctx context.Context, date string, limit, offset int) ([]*Expense, int, error) {
	query := `SELECT ` + expenseCols + ` FROM expenses WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM expenses WHERE 1=1`
	var args []interface{}
	idx := 1

	if date != "" {
		query += fmt.Sprintf(` AND date::date = $%d`, idx)
		countQuery += fmt.Sprintf(` AND date::date = $%d`, idx)
		args = append(args, date)
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY date DESC, created_at DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Expense
	for rows.Next() {
		e, err := r.scanExpense(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, e)
	}
	return items, total, nil
}

func (r *expenseRepoPG) DeleteAll(ctx context.Context) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM expenses`)
	return err
}
