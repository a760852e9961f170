package finance

import (
	"context"

	"github.com/google/uuid"
)

type ExpenseRepository interface {
	Create(ctx context.Context, e *Expense) error
	GetByID(ctx context.Context, id uuid.UUID) (*Expense, error)
	Update(ctx context.Context, e *Expense) error
	Delete(ctx context.Context, id uuid.UUID) error
	// List returns expenses, optionally narrowed to one calendar date
	// (format 2006-01-02, empty for all).
	List(ctx context.Context, date string, limit, offset int) ([]*Expense, int, error)
	DeleteAll(ctx context.Context) error
}
