package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func newTestManager() *SessionManager {
	return NewSessionManager([]byte("test-secret"), time.Hour)
}

func TestSessionManager_IssueAndParse(t *testing.T) {
	m := newTestManager()
	defer m.Close()

	userID := uuid.New()
	token, expires, err := m.Issue(userID, "admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}
	if !expires.After(time.Now()) {
		t.Error("expected expiry in the future")
	}

	claims, err := m.Parse(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.Subject != userID.String() {
		t.Errorf("expected subject %s, got %s", userID, claims.Subject)
	}
	if claims.Username != "admin" {
		t.Errorf("expected username admin, got %s", claims.Username)
	}
}

func TestSessionManager_ParseRejectsWrongSecret(t *testing.T) {
	m := newTestManager()
	defer m.Close()
	other := NewSessionManager([]byte("other-secret"), time.Hour)
	defer other.Close()

	token, _, err := m.Issue(uuid.New(), "admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := other.Parse(token); err == nil {
		t.Error("expected error for token signed with a different secret")
	}
}

func TestSessionManager_ParseRejectsExpired(t *testing.T) {
	m := NewSessionManager([]byte("test-secret"), -time.Minute)
	defer m.Close()

	token, _, err := m.Issue(uuid.New(), "admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := m.Parse(token); err == nil {
		t.Error("expected error for expired token")
	}
}

func TestSessionManager_Revoke(t *testing.T) {
	m := newTestManager()
	defer m.Close()

	token, _, err := m.Issue(uuid.New(), "admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := m.Parse(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m.Revoke(claims)

	if _, err := m.Parse(token); err == nil {
		t.Error("expected error for revoked token")
	}
}

func TestSessionManager_RevokeAllForUser(t *testing.T) {
	m := newTestManager()
	defer m.Close()

	userID := uuid.New()
	first, _, err := m.Issue(userID, "admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, _, err := m.Issue(userID, "admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	otherToken, _, err := m.Issue(uuid.New(), "other")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if n := m.RevokeAllForUser(userID); n != 2 {
		t.Errorf("expected 2 revoked tokens, got %d", n)
	}
	if _, err := m.Parse(first); err == nil {
		t.Error("expected first session to be revoked")
	}
	if _, err := m.Parse(second); err == nil {
		t.Error("expected second session to be revoked")
	}
	if _, err := m.Parse(otherToken); err != nil {
		t.Errorf("expected other user's session to survive: %v", err)
	}
}

func TestTokenRevocationStore_Cleanup(t *testing.T) {
	s := NewTokenRevocationStore()
	defer s.Close()

	s.RevokeForUser("expired-jti", "u1", time.Now().Add(-time.Minute))
	s.RevokeForUser("live-jti", "u1", time.Now().Add(time.Hour))

	s.cleanup()

	if s.IsRevoked("expired-jti") {
		t.Error("expected expired entry to be cleaned up")
	}
	if !s.IsRevoked("live-jti") {
		t.Error("expected live entry to survive cleanup")
	}
}
