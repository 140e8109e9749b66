package session

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/semanticpay/shopagent/checkout"
)

// ErrSessionNotFound is returned by Get for an unknown session id.
var ErrSessionNotFound = errors.New("session not found")

// Manager maps user ids to their single long-lived session. Resolve always
// returns the same *Session for the same user; callers hold the session lock
// while running a turn against it.
type Manager struct {
	mu        sync.RWMutex
	byUser    map[string]*Session
	bySession map[string]*Session
}

func NewManager() *Manager {
	return &Manager{
		byUser:    map[string]*Session{},
		bySession: map[string]*Session{},
	}
}

// Resolve returns the session for a user id, creating one with empty checkout
// and scratch state on first contact.
func (m *Manager) Resolve(userID string) *Session {
	m.mu.RLock()
	existing, ok := m.byUser[userID]
	m.mu.RUnlock()
	if ok {
		return existing
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.byUser[userID]; ok {
		return existing
	}

	created := &Session{
		id:       uuid.NewString(),
		userID:   userID,
		checkout: checkout.NewState(),
		scratch:  map[string]any{},
	}
	m.byUser[userID] = created
	m.bySession[created.id] = created
	return created
}

// Create registers a fresh anonymous session under a generated id, for
// callers that supply neither a user id nor a session id. Follow-up turns
// reach it through Get with the returned id.
func (m *Manager) Create() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	created := &Session{
		id:       uuid.NewString(),
		checkout: checkout.NewState(),
		scratch:  map[string]any{},
	}
	m.bySession[created.id] = created
	return created
}

// Get returns the session registered under a session id. Unlike Resolve it
// never fabricates a session: an unknown id is the caller's decision to
// handle, not the manager's.
func (m *Manager) Get(sessionID string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	existing, ok := m.bySession[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return existing, nil
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.bySession)
}
