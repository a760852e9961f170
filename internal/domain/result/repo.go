package result

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, tr *TestResult) error
	GetByID(ctx context.Context, id uuid.UUID) (*TestResult, error)
	Update(ctx context.Context, tr *TestResult) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ListByVisit returns every result of one visit, in creation order.
	ListByVisit(ctx context.Context, visitID uuid.UUID) ([]*TestResult, error)
	List(ctx context.Context, limit, offset int) ([]*TestResult, int, error)
	// UpdateFieldsByTest rewrites unit and normal_range on all results that
	// reference the given catalog test.
	UpdateFieldsByTest(ctx context.Context, testID uuid.UUID, unit, normalRange *string) error
}
