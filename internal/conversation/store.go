// internal/conversation/store.go
package conversation

import (
	"sync"
	"time"

	stderrors "abiturbot/internal/common/errors"
	"abiturbot/internal/models"

	"github.com/google/uuid"
)

// SessionStore keeps in-flight sessions in memory, keyed by chat id.
// Losing them on restart is accepted; pending payments are reconciled
// through the gateway status poll instead.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*models.Session),
	}
}

func (s *SessionStore) Create(session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session.ChatID == "" {
		return stderrors.NewSessionNotFoundError("")
	}
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	now := time.Now()
	session.CreatedAt = now
	session.LastActivity = now
	s.sessions[session.ChatID] = session
	return nil
}

func (s *SessionStore) Get(chatID string) (*models.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[chatID]
	return session, ok
}

func (s *SessionStore) Update(session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[session.ChatID]; !ok {
		return stderrors.NewSessionNotFoundError(session.ChatID)
	}
	session.UpdateActivity()
	s.sessions[session.ChatID] = session
	return nil
}

func (s *SessionStore) Delete(chatID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, chatID)
}
