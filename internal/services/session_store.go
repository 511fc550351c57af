package services

import (
	"sync"

	"query-genie/internal/models"
)

// SessionStore keeps per-session pipeline state in memory. Nothing here is
// persisted, so a restart forgets pending confirmations.
type SessionStore struct {
	sessions map[string]*models.Session
	mu       sync.RWMutex
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*models.Session),
	}
}

// Reset replaces the session wholesale. Any pending confirmation is dropped.
func (s *SessionStore) Reset(sessionID string, conn models.Connection) {
	session := models.NewSession(sessionID)
	session.Connection = &conn

	s.mu.Lock()
	s.sessions[sessionID] = session
	s.mu.Unlock()
}

func (s *SessionStore) Delete(sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
}

// Connection returns a copy of the session's database target.
func (s *SessionStore) Connection(sessionID string) (models.Connection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[sessionID]
	if !ok || session.Connection == nil {
		return models.Connection{}, ErrSessionNotFound
	}
	return *session.Connection, nil
}

// SetPending overwrites the session's confirmation slot.
func (s *SessionStore) SetPending(sessionID string, pending *models.PendingConfirmation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return ErrSessionNotFound
	}
	session.Pending = pending
	session.Touch()
	return nil
}

// Pending returns the statement awaiting confirmation, if any.
func (s *SessionStore) Pending(sessionID string) (*models.PendingConfirmation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[sessionID]
	if !ok || session.Pending == nil {
		return nil, false
	}
	pending := *session.Pending
	return &pending, true
}

// TakePending clears the confirmation slot and returns what it held.
func (s *SessionStore) TakePending(sessionID string) (*models.PendingConfirmation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok || session.Pending == nil {
		return nil, false
	}
	pending := session.Pending
	session.Pending = nil
	session.Touch()
	return pending, true
}

func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
