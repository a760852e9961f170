package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionCookieName is the HttpOnly cookie carrying the signed session token.
const SessionCookieName = "labdesk_session"

// SessionClaims are the claims embedded in a session token.
type SessionClaims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
}

// SessionManager issues and validates signed session tokens. Tokens are
// HS256 JWTs carried in an HttpOnly cookie; logout revokes the token's JTI.
type SessionManager struct {
	secret  []byte
	ttl     time.Duration
	revoked *TokenRevocationStore
}

func NewSessionManager(secret []byte, ttl time.Duration) *SessionManager {
	return &SessionManager{
		secret:  secret,
		ttl:     ttl,
		revoked: NewTokenRevocationStore(),
	}
}

// Issue creates a signed session token for the user. The returned expiry is
// also used for the cookie's Expires attribute.
func (m *SessionManager) Issue(userID uuid.UUID, username string) (string, time.Time, error) {
	now := time.Now()
	expires := now.Add(m.ttl)

	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		Username: username,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}
	m.revoked.Track(claims.ID, claims.Subject, expires)
	return token, expires, nil
}

// Parse validates a session token's signature, expiry and revocation status.
func (m *SessionManager) Parse(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse session token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid session token")
	}
	if m.revoked.IsRevoked(claims.ID) {
		return nil, fmt.Errorf("session has been revoked")
	}
	return claims, nil
}

// Revoke invalidates the session identified by the claims. Used by logout.
func (m *SessionManager) Revoke(claims *SessionClaims) {
	expires := time.Now().Add(m.ttl)
	if claims.ExpiresAt != nil {
		expires = claims.ExpiresAt.Time
	}
	m.revoked.RevokeForUser(claims.ID, claims.Subject, expires)
}

// RevokeAllForUser invalidates every known session for the user, e.g. after
// an account is deleted or its password changes.
func (m *SessionManager) RevokeAllForUser(userID uuid.UUID) int {
	return m.revoked.RevokeAllForUser(userID.String())
}

// Close stops the revocation store's cleanup goroutine.
func (m *SessionManager) Close() {
	m.revoked.Close()
}
