package auth

import (
	"sync"
	"time"
)

// revocationEntry stores metadata about a tracked or revoked session token.
type revocationEntry struct {
	ExpiresAt time.Time
	UserID    string
}

// TokenRevocationStore manages session token state in memory. Issued token
// JTIs (JWT ID claims) are tracked per user so a bulk revocation can reach
// sessions that were never individually revoked; expired entries are cleaned
// up automatically. Thread-safe for concurrent access.
type TokenRevocationStore struct {
	mu       sync.RWMutex
	tracked  map[string]revocationEntry // JTI -> live entry
	entries  map[string]revocationEntry // JTI -> revoked entry
	userJTIs map[string][]string        // userID -> []JTI
	done     chan struct{}
}

// NewTokenRevocationStore creates a new store and starts a background
// goroutine that cleans up expired entries every 5 minutes.
func NewTokenRevocationStore() *TokenRevocationStore {
	s := &TokenRevocationStore{
		tracked:  make(map[string]revocationEntry),
		entries:  make(map[string]revocationEntry),
		userJTIs: make(map[string][]string),
		done:     make(chan struct{}),
	}
	go s.cleanupLoop()
	return s
}

// Track records a freshly issued token so RevokeAllForUser can find it
// later. The entry is dropped once the token's natural expiry passes.
func (s *TokenRevocationStore) Track(jti, userID string, expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tracked[jti] = revocationEntry{
		ExpiresAt: expiresAt,
		UserID:    userID,
	}
	if userID != "" {
		s.userJTIs[userID] = append(s.userJTIs[userID], jti)
	}
}

// RevokeForUser adds a token's JTI to the revocation list and associates
// it with a user ID for bulk revocation. The expiresAt time indicates when
// the token would have naturally expired; the entry is cleaned up after
// that time since an expired token needs no revocation tracking.
func (s *TokenRevocationStore) RevokeForUser(jti, userID string, expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[jti] = revocationEntry{
		ExpiresAt: expiresAt,
		UserID:    userID,
	}
	delete(s.tracked, jti)

	if userID != "" {
		s.userJTIs[userID] = append(s.userJTIs[userID], jti)
	}
}

// IsRevoked checks if a token JTI has been revoked.
func (s *TokenRevocationStore) IsRevoked(jti string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.entries[jti]
	return ok
}

// RevokeAllForUser revokes every JTI associated with the user, tracked live
// sessions included. Returns the number of tokens newly revoked.
func (s *TokenRevocationStore) RevokeAllForUser(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	jtis, ok := s.userJTIs[userID]
	if !ok {
		return 0
	}

	count := 0
	for _, jti := range jtis {
		if _, exists := s.entries[jti]; exists {
			continue
		}
		entry, live := s.tracked[jti]
		if !live {
			continue
		}
		s.entries[jti] = entry
		delete(s.tracked, jti)
		count++
	}
	return count
}

// Count returns the number of currently revoked tokens.
func (s *TokenRevocationStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Close stops the background cleanup goroutine.
func (s *TokenRevocationStore) Close() {
	close(s.done)
}

func (s *TokenRevocationStore) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.done:
			return
		}
	}
}

func (s *TokenRevocationStore) cleanup() {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for jti, entry := range s.entries {
		if now.After(entry.ExpiresAt) {
			delete(s.entries, jti)
		}
	}
	for jti, entry := range s.tracked {
		if now.After(entry.ExpiresAt) {
			delete(s.tracked, jti)
		}
	}

	for userID, jtis := range s.userJTIs {
		kept := jtis[:0]
		for _, jti := range jtis {
			_, revoked := s.entries[jti]
			_, live := s.tracked[jti]
			if revoked || live {
				kept = append(kept, jti)
			}
		}
		if len(kept) == 0 {
			delete(s.userJTIs, userID)
		} else {
			s.userJTIs[userID] = kept
		}
	}
}
