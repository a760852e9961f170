package account

import (
	"time"

	"github.com/google/uuid"

	"github.com/labdesk/labdesk/internal/platform/auth"
)

// User is one login-capable account. Passwords are stored only as bcrypt
// hashes. Permissions is nil for legacy accounts created before per-section
// grants existed; such accounts are unrestricted.
type User struct {
	ID           uuid.UUID          `db:"id" json:"id"`
	DisplayName  string             `db:"display_name" json:"display_name"`
	Username     string             `db:"username" json:"username"`
	PasswordHash string             `db:"password_hash" json:"-"`
	Permissions  auth.PermissionSet `db:"permissions" json:"permissions,omitempty"`
	CreatedAt    time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `db:"updated_at" json:"updated_at"`
}
