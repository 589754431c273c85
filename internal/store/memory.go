package store

import (
	"sync"

	"cardflow-backend/internal/chat"
)

// Session owns one conversation and the lock that keeps its turns serial.
type Session struct {
	mu   sync.Mutex
	conv *chat.Conversation
}

// Do runs fn with exclusive access to the conversation. State-machine
// transitions always execute to completion before the next turn.
func (s *Session) Do(fn func(c *chat.Conversation)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.conv)
}

// MemoryStore keeps per-session conversations and the OAuth state needed to
// resolve callbacks. Conversations are never shared across sessions.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	factory  func() *chat.Conversation

	oauthStateBySession map[string]string
	sessionByOAuthState map[string]string
	accountBySession    map[string]string
}

func NewMemoryStore(factory func() *chat.Conversation) *MemoryStore {
	return &MemoryStore{
		sessions:            make(map[string]*Session),
		factory:             factory,
		oauthStateBySession: make(map[string]string),
		sessionByOAuthState: make(map[string]string),
		accountBySession:    make(map[string]string),
	}
}

// Session returns the session for the id, creating it on first use.
func (m *MemoryStore) Session(sessionID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		s = &Session{conv: m.factory()}
		m.sessions[sessionID] = s
	}
	return s
}

// Drop discards a session and its conversation.
func (m *MemoryStore) Drop(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
}

// OAuth state helpers (CSRF protection for the Atlassian flow).

func (m *MemoryStore) SetOAuthState(sessionID, state string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.oauthStateBySession[sessionID] = state
	m.sessionByOAuthState[state] = sessionID
}

func (m *MemoryStore) GetOAuthState(sessionID string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.oauthStateBySession[sessionID]
}

func (m *MemoryStore) ClearOAuthState(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if st, ok := m.oauthStateBySession[sessionID]; ok {
		delete(m.sessionByOAuthState, st)
		delete(m.oauthStateBySession, sessionID)
	}
}

func (m *MemoryStore) GetSessionByOAuthState(state string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessionByOAuthState[state]
}

// SetAccount records the Jira display name associated with a session after
// a successful connection test or OAuth exchange.
func (m *MemoryStore) SetAccount(sessionID, displayName string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accountBySession[sessionID] = displayName
}

func (m *MemoryStore) GetAccount(sessionID string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.accountBySession[sessionID]
}
