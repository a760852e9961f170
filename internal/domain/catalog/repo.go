package catalog

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, t *Test) error
	GetByID(ctx context.Context, id uuid.UUID) (*Test, error)
	// GetByName matches on the normalized (lowercased, trimmed) name.
	GetByName(ctx context.Context, name string) (*Test, error)
	Update(ctx context.Context, t *Test) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Test, int, error)
}
