package memory

import (
	"sync"

	"github.com/google/uuid"

	"trivia-room-service/internal/app"
	"trivia-room-service/internal/domain"
)

// SessionStore is an in-memory implementation of app.SessionRepository.
// Identifiers are random UUIDs and never reused.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*app.Session),
	}
}

func (s *SessionStore) Create(topic, difficulty string, questions []domain.Question) *app.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	session := app.NewSession(uuid.NewString(), topic, difficulty, questions)
	s.sessions[session.ID()] = session
	return session
}

func (s *SessionStore) Get(id string) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	return session, ok
}

func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}
