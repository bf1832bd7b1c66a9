package usecase

import "sync"

// activeRegistry is the only mutable shared state of the sync engine: the
// single-flight map (account -> active session) and the stop-flag map
// (session -> stop requested). All access goes through these methods; the raw
// maps are never exposed or iterated.
type activeRegistry struct {
	mu     sync.Mutex
	active map[string]string // accountID -> sessionID
	stop   map[string]bool   // sessionID -> stop requested
}

func newActiveRegistry() *activeRegistry {
	return &activeRegistry{
		active: make(map[string]string),
		stop:   make(map[string]bool),
	}
}

// acquire registers a session for the account. Returns false when another
// session already holds the slot.
func (r *activeRegistry) acquire(accountID, sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.active[accountID]; exists {
		return false
	}
	r.active[accountID] = sessionID
	r.stop[sessionID] = false
	return true
}

// release clears the account's slot and the session's stop flag. Safe to call
// when the slot is already held by a different session.
func (r *activeRegistry) release(accountID, sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, exists := r.active[accountID]; exists && current == sessionID {
		delete(r.active, accountID)
	}
	delete(r.stop, sessionID)
}

// requestStop flags the account's active session for cooperative stop.
// Returns whether an active session was found.
func (r *activeRegistry) requestStop(accountID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	sessionID, exists := r.active[accountID]
	if !exists {
		return false
	}
	r.stop[sessionID] = true
	return true
}

func (r *activeRegistry) stopRequested(sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stop[sessionID]
}

func (r *activeRegistry) activeSession(accountID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sessionID, exists := r.active[accountID]
	return sessionID, exists
}
