package dashboard

import "context"

type Repository interface {
	List(ctx context.Context) ([]*Layout, error)
	GetBySection(ctx context.Context, sectionName string) (*Layout, error)
	// Upsert inserts or replaces the row keyed by section name.
	Upsert(ctx context.Context, l *Layout) error
}
