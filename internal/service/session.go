package service

import (
	"sync"
	"time"
)

const defaultSessionTTL = 30 * time.Minute

// SessionRegistry tracks bot-client logins in process-local memory.
// Admin sessions expire lazily after the TTL: no sweeper runs, the expiry
// predicate is evaluated on every check. User sessions live until an
// explicit logout. Sessions are lost on restart, which is acceptable for
// this liveness-only authorization.
type SessionRegistry struct {
	mu     sync.Mutex
	admins map[string]time.Time // client id -> expires at
	users  map[string]struct{}
	ttl    time.Duration
	now    func() time.Time
}

func NewSessionRegistry(ttl time.Duration) *SessionRegistry {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &SessionRegistry{
		admins: make(map[string]time.Time),
		users:  make(map[string]struct{}),
		ttl:    ttl,
		now:    time.Now,
	}
}

// LoginUser records a standard session with no expiry.
func (r *SessionRegistry) LoginUser(clientID string) {
	r.mu.Lock()
	r.users[clientID] = struct{}{}
	r.mu.Unlock()
}

// LoginAdmin records an elevated session and returns its expiry.
func (r *SessionRegistry) LoginAdmin(clientID string) time.Time {
	expiresAt := r.now().Add(r.ttl)
	r.mu.Lock()
	r.admins[clientID] = expiresAt
	r.mu.Unlock()
	return expiresAt
}

// Logout removes any session for the client.
func (r *SessionRegistry) Logout(clientID string) {
	r.mu.Lock()
	delete(r.admins, clientID)
	delete(r.users, clientID)
	r.mu.Unlock()
}

// IsAuthorizedAdmin reports whether the client holds a live elevated
// session, expiring it on the spot if the TTL has passed.
func (r *SessionRegistry) IsAuthorizedAdmin(clientID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	expiresAt, ok := r.admins[clientID]
	if !ok {
		return false
	}
	if r.now().After(expiresAt) {
		delete(r.admins, clientID)
		return false
	}
	return true
}

// IsAuthorizedAny reports whether the client holds any live session.
func (r *SessionRegistry) IsAuthorizedAny(clientID string) bool {
	r.mu.Lock()
	_, isUser := r.users[clientID]
	r.mu.Unlock()
	if isUser {
		return true
	}
	return r.IsAuthorizedAdmin(clientID)
}
