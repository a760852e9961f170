package sqlite

import (
	"context"

	"github.com/labdesk/labdesk/internal/domain/settings"
)

type settingsRepo struct{ s *Store }

// Settings returns the key/value settings repository view.
func (s *Store) Settings() settings.Repository { return &settingsRepo{s: s} }

func (r *settingsRepo) Get(ctx context.Context, key string) (*settings.Setting, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var (
		st      settings.Setting
		updated string
	)
	err := r.s.db.QueryRowContext(ctx,
		`SELECT key, value, updated_at FROM settings WHERE key = ?`, key).
		Scan(&st.Key, &st.Value, &updated)
	if err != nil {
		return nil, err
	}
	st.UpdatedAt = parseTime(updated)
	return &st, nil
}

func (r *settingsRepo) Set(ctx context.Context, st *settings.Setting) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	_, err := r.s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at) VALUES (?,?,?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		st.Key, st.Value, now())
	return err
}

func (r *settingsRepo) List(ctx context.Context) ([]*settings.Setting, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rows, err := r.s.db.QueryContext(ctx, `SELECT key, value, updated_at FROM settings ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*settings.Setting
	for rows.Next() {
		var (
			st      settings.Setting
			updated string
		)
		if err := rows.Scan(&st.Key, &st.Value, &updated); err != nil {
			return nil, err
		}
		st.UpdatedAt = parseTime(updated)
		items = append(items, &st)
	}
	return items, rows.Err()
}
