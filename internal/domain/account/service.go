package account

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/labdesk/labdesk/internal/platform/auth"
)

const minPasswordLen = 8

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create adds an account with a bcrypt-hashed password. Usernames are
// stored as given but matched case-insensitively.
func (s *Service) Create(ctx context.Context, u *User, password string) error {
	u.Username = strings.TrimSpace(u.Username)
	if u.Username == "" {
		return fmt.Errorf("username is required")
	}
	if u.DisplayName == "" {
		u.DisplayName = u.Username
	}
	if len(password) < minPasswordLen {
		return fmt.Errorf("password must be at least %d characters", minPasswordLen)
	}
	if _, err := s.repo.GetByUsername(ctx, u.Username); err == nil {
		return fmt.Errorf("username already taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.PasswordHash = string(hash)
	return s.repo.Create(ctx, u)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*User, error) {
	return s.repo.List(ctx)
}

// Update changes display name, username and permissions. An empty password
// keeps the current one.
func (s *Service) Update(ctx context.Context, u *User, password string) error {
	prev, err := s.repo.GetByID(ctx, u.ID)
	if err != nil {
		return fmt.Errorf("user not found")
	}
	u.Username = strings.TrimSpace(u.Username)
	if u.Username == "" {
		u.Username = prev.Username
	}
	if !strings.EqualFold(u.Username, prev.Username) {
		if _, err := s.repo.GetByUsername(ctx, u.Username); err == nil {
			return fmt.Errorf("username already taken")
		}
	}
	if u.DisplayName == "" {
		u.DisplayName = prev.DisplayName
	}

	u.PasswordHash = prev.PasswordHash
	if password != "" {
		if len(password) < minPasswordLen {
			return fmt.Errorf("password must be at least %d characters", minPasswordLen)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		u.PasswordHash = string(hash)
	}
	return s.repo.Update(ctx, u)
}

// Delete removes an account. The last remaining account cannot be deleted,
// so the system always has a way in.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return fmt.Errorf("user not found")
	}
	n, err := s.repo.Count(ctx)
	if err != nil {
		return err
	}
	if n <= 1 {
		return fmt.Errorf("cannot delete the last account")
	}
	return s.repo.Delete(ctx, id)
}

// Authenticate verifies credentials. The error is identical for unknown
// username and wrong password.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	u, err := s.repo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, fmt.Errorf("invalid credentials")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, fmt.Errorf("invalid credentials")
	}
	return u, nil
}

// Resolve loads the principal for a session's user id. Implements the
// session middleware's resolver contract (via the adapter in main).
func (s *Service) Resolve(ctx context.Context, userID uuid.UUID) (*auth.Principal, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &auth.Principal{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Permissions: u.Permissions,
	}, nil
}

// Bootstrap creates the initial admin account when the store has no users.
// The account carries nil permissions, i.e. unrestricted.
func (s *Service) Bootstrap(ctx context.Context, username, password string) (bool, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	u := &User{Username: username, DisplayName: "Administrator"}
	if err := s.Create(ctx, u, password); err != nil {
		return false, err
	}
	return true, nil
}
