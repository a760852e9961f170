package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/labdesk/labdesk/internal/domain/account"
	"github.com/labdesk/labdesk/internal/platform/auth"
)

type userRepo struct{ s *Store }

// Users returns the account repository view.
func (s *Store) Users() account.Repository { return &userRepo{s: s} }

const userCols = `id, display_name, username, password_hash, permissions, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*account.User, error) {
	var (
		u                account.User
		id               string
		perms            sql.NullString
		created, updated string
	)
	if err := row.Scan(&id, &u.DisplayName, &u.Username, &u.PasswordHash,
		&perms, &created, &updated); err != nil {
		return nil, err
	}
	var err error
	if u.ID, err = uuid.Parse(id); err != nil {
		return nil, err
	}
	if perms.Valid && perms.String != "" {
		if err := json.Unmarshal([]byte(perms.String), &u.Permissions); err != nil {
			return nil, fmt.Errorf("decode permissions: %w", err)
		}
	}
	u.CreatedAt = parseTime(created)
	u.UpdatedAt = parseTime(updated)
	return &u, nil
}

// encodePermissions keeps NULL for nil sets so legacy unrestricted accounts
// stay distinguishable from accounts with an explicit empty grant.
func encodePermissions(p auth.PermissionSet) (sql.NullString, error) {
	if p == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(p)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("encode permissions: %w", err)
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func (r *userRepo) Create(ctx context.Context, u *account.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	perms, err := encodePermissions(u.Permissions)
	if err != nil {
		return err
	}
	_, err = r.s.db.ExecContext(ctx, `
		INSERT INTO users (id, display_name, username, password_hash, permissions, created_at, updated_at)
		VALUES (?,?,?,?,?,?,?)`,
		u.ID.String(), u.DisplayName, u.Username, u.PasswordHash, perms, now(), now())
	return err
}

func (r *userRepo) GetByID(ctx context.Context, id uuid.UUID) (*account.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return scanUser(r.s.db.QueryRowContext(ctx,
		`SELECT `+userCols+` FROM users WHERE id = ?`, id.String()))
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*account.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return scanUser(r.s.db.QueryRowContext(ctx,
		`SELECT `+userCols+` FROM users WHERE LOWER(username) = ?`,
		strings.ToLower(strings.TrimSpace(username))))
}

func (r *userRepo) Update(ctx context.Context, u *account.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	perms, err := encodePermissions(u.Permissions)
	if err != nil {
		return err
	}
	_, err = r.s.db.ExecContext(ctx, `
		UPDATE users SET display_name=?, username=?, password_hash=?, permissions=?, updated_at=?
		WHERE id = ?`,
		u.DisplayName, u.Username, u.PasswordHash, perms, now(), u.ID.String())
	return err
}

func (r *userRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	_, err := r.s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id.String())
	return err
}

func (r *userRepo) List(ctx context.Context) ([]*account.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rows, err := r.s.db.QueryContext(ctx, `SELECT `+userCols+` FROM users ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*account.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, u)
	}
	return items, rows.Err()
}

func (r *userRepo) Count(ctx context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var n int
	err := r.s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}
