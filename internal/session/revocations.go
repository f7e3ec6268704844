// Package session tracks sessions that ended before their access tokens expired.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	ReasonSignOut       = "sign_out"
	ReasonPasswordReset = "password_reset"
)

// Ended announces that a session is over.
type Ended struct {
	SessionID uuid.UUID `json:"sessionId"`
	AccountID uuid.UUID `json:"accountId"`
	Reason    string    `json:"reason"`
	At        time.Time `json:"at"`
	// Until is when the session's last access token expires; the entry can be dropped after it.
	Until time.Time `json:"until"`
}

// Revocations is consulted on every authenticated request.
type Revocations struct {
	mu    sync.RWMutex
	ended map[uuid.UUID]time.Time
	now   func() time.Time
}

func NewRevocations() *Revocations {
	return &Revocations{
		ended: make(map[uuid.UUID]time.Time),
		now:   time.Now,
	}
}

// Apply records an Ended event. Applying the same event twice is harmless.
func (r *Revocations) Apply(e Ended) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cur, ok := r.ended[e.SessionID]; !ok || e.Until.After(cur) {
		r.ended[e.SessionID] = e.Until
	}
}

func (r *Revocations) IsRevoked(sessionID uuid.UUID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.ended[sessionID]
	return ok
}

// Prune forgets sessions whose tokens have all expired and returns how many were removed.
func (r *Revocations) Prune() int {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, until := range r.ended {
		if now.After(until) {
			delete(r.ended, id)
			removed++
		}
	}
	return removed
}

func (r *Revocations) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ended)
}
