package auth

import (
	"sort"
	"sync"
	"time"
)

type revocationEntry struct {
	expiresAt time.Time
	userID    string
}

// RevocationInfo describes one signed-out token.
type RevocationInfo struct {
	JTI       string    `json:"jti"`
	UserID    string    `json:"userId,omitempty"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// RevocationList remembers tokens that were signed out before they expired.
// An entry is dropped once the token would have expired anyway.
type RevocationList struct {
	mu      sync.Mutex
	entries map[string]revocationEntry
	now     func() time.Time
}

func NewRevocationList() *RevocationList {
	return &RevocationList{
		entries: make(map[string]revocationEntry),
		now:     time.Now,
	}
}

// Revoke marks jti as signed out until expiresAt. A zero expiresAt keeps the
// entry for an hour.
func (l *RevocationList) Revoke(jti, userID string, expiresAt time.Time) {
	if jti == "" {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if expiresAt.IsZero() {
		expiresAt = l.now().Add(time.Hour)
	}
	l.entries[jti] = revocationEntry{expiresAt: expiresAt, userID: userID}
}

func (l *RevocationList) IsRevoked(jti string) bool {
	if jti == "" {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[jti]
	if !ok {
		return false
	}
	if l.now().After(e.expiresAt) {
		delete(l.entries, jti)
		return false
	}
	return true
}

// Entries returns the live entries ordered by expiry, sweeping expired ones.
func (l *RevocationList) Entries() []RevocationInfo {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	out := make([]RevocationInfo, 0, len(l.entries))
	for jti, e := range l.entries {
		if now.After(e.expiresAt) {
			delete(l.entries, jti)
			continue
		}
		out = append(out, RevocationInfo{JTI: jti, UserID: e.userID, ExpiresAt: e.expiresAt})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ExpiresAt.Equal(out[j].ExpiresAt) {
			return out[i].JTI < out[j].JTI
		}
		return out[i].ExpiresAt.Before(out[j].ExpiresAt)
	})
	return out
}

func (l *RevocationList) Len() int {
	return len(l.Entries())
}
