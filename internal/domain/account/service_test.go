package account

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/labdesk/labdesk/internal/platform/auth"
)

type mockRepo struct {
	items map[uuid.UUID]*User
}

func newMockRepo() *mockRepo {
	return &mockRepo{items: make(map[uuid.UUID]*User)}
}

func (m *mockRepo) Create(_ context.Context, u *User) error {
	u.ID = uuid.New()
	cp := *u
	m.items[u.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*User, error) {
	u, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	cp := *u
	return &cp, nil
}

func (m *mockRepo) GetByUsername(_ context.Context, username string) (*User, error) {
	for _, u := range m.items {
		if strings.EqualFold(u.Username, username) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("not found")
}

func (m *mockRepo) Update(_ context.Context, u *User) error {
	if _, ok := m.items[u.ID]; !ok {
		return fmt.Errorf("not found")
	}
	cp := *u
	m.items[u.ID] = &cp
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.items, id)
	return nil
}

func (m *mockRepo) List(_ context.Context) ([]*User, error) {
	var items []*User
	for _, u := range m.items {
		cp := *u
		items = append(items, &cp)
	}
	return items, nil
}

func (m *mockRepo) Count(_ context.Context) (int, error) {
	return len(m.items), nil
}

func TestService_Create_HashesPassword(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	u := &User{Username: "sara"}
	if err := svc.Create(nil, u, "letmein-please"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stored := repo.items[u.ID]
	if stored.PasswordHash == "letmein-please" {
		t.Error("password stored in plaintext")
	}
	if !strings.HasPrefix(stored.PasswordHash, "$2") {
		t.Errorf("expected a bcrypt hash, got %q", stored.PasswordHash)
	}
	if stored.DisplayName != "sara" {
		t.Errorf("expected display name to default to username, got %q", stored.DisplayName)
	}
}

func TestService_Create_ShortPassword(t *testing.T) {
	svc := NewService(newMockRepo())
	if err := svc.Create(nil, &User{Username: "sara"}, "short"); err == nil {
		t.Error("expected error for short password")
	}
}

func TestService_Create_DuplicateUsernameCaseInsensitive(t *testing.T) {
	svc := NewService(newMockRepo())
	if err := svc.Create(nil, &User{Username: "Sara"}, "letmein-please"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Create(nil, &User{Username: "sara"}, "letmein-please"); err == nil {
		t.Error("expected error for duplicate username")
	}
}

func TestService_Authenticate(t *testing.T) {
	svc := NewService(newMockRepo())
	u := &User{Username: "sara"}
	if err := svc.Create(nil, u, "letmein-please"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := svc.Authenticate(nil, "SARA", "letmein-please")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("expected user %s, got %s", u.ID, got.ID)
	}

	_, badPass := svc.Authenticate(nil, "sara", "wrong-password")
	_, badUser := svc.Authenticate(nil, "nobody", "letmein-please")
	if badPass == nil || badUser == nil {
		t.Fatal("expected both failures to error")
	}
	if badPass.Error() != badUser.Error() {
		t.Errorf("failure modes must be indistinguishable: %q vs %q", badPass, badUser)
	}
}

func TestService_Update_EmptyPasswordKeepsHash(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	u := &User{Username: "sara"}
	if err := svc.Create(nil, u, "letmein-please"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	prevHash := repo.items[u.ID].PasswordHash

	upd := &User{ID: u.ID, Username: "sara", DisplayName: "Sara K"}
	if err := svc.Update(nil, upd, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.items[u.ID].PasswordHash != prevHash {
		t.Error("expected hash to survive an update without a new password")
	}
	if repo.items[u.ID].DisplayName != "Sara K" {
		t.Errorf("expected display name update, got %q", repo.items[u.ID].DisplayName)
	}

	if err := svc.Update(nil, &User{ID: u.ID, Username: "sara"}, "fresh-password"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.items[u.ID].PasswordHash == prevHash {
		t.Error("expected a new hash after a password change")
	}
}

func TestService_Delete_LastAccountRefused(t *testing.T) {
	svc := NewService(newMockRepo())
	u := &User{Username: "sara"}
	if err := svc.Create(nil, u, "letmein-please"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Delete(nil, u.ID); err == nil {
		t.Error("expected error deleting the only account")
	}

	other := &User{Username: "omar"}
	if err := svc.Create(nil, other, "letmein-please"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Delete(nil, u.ID); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestService_Bootstrap_OnlyWhenEmpty(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	created, err := svc.Bootstrap(nil, "admin", "initial-secret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created {
		t.Fatal("expected bootstrap to create the admin")
	}
	admin, err := repo.GetByUsername(nil, "admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if admin.Permissions != nil {
		t.Error("expected the bootstrap admin to be unrestricted")
	}

	created, err = svc.Bootstrap(nil, "admin", "initial-secret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created {
		t.Error("expected bootstrap to be a no-op on a populated store")
	}
}

func TestService_Resolve(t *testing.T) {
	svc := NewService(newMockRepo())
	u := &User{
		Username:    "sara",
		Permissions: auth.PermissionSet{"patients": {View: true}},
	}
	if err := svc.Create(nil, u, "letmein-please"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p, err := svc.Resolve(nil, u.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Username != "sara" || !p.Permissions.Allows("patients", auth.ActionView) {
		t.Errorf("unexpected principal: %+v", p)
	}
	if p.Permissions.Allows("settings", auth.ActionAccess) {
		t.Error("expected restricted principal to be denied settings access")
	}

	if _, err := svc.Resolve(nil, uuid.New()); err == nil {
		t.Error("expected error for unknown user id")
	}
}
