package settings

import "context"

type Repository interface {
	Get(ctx context.Context, key string) (*Setting, error)
	// Set upserts by key.
	Set(ctx context.Context, s *Setting) error
	List(ctx context.Context) ([]*Setting, error)
}
