package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/tenant-stock-api/internal/domain/repository"
)

var _ repository.ScopeSessionStore = (*SessionStore)(nil)

// SessionStore selección de scope por sesión, sin expiración.
type SessionStore struct {
	mu   sync.RWMutex
	sels map[string]repository.ScopeSelection
}

// NewSessionStore crea el almacén vacío.
func NewSessionStore() *SessionStore {
	return &SessionStore{sels: make(map[string]repository.ScopeSelection)}
}

func (s *SessionStore) Load(_ context.Context, sessionID string) (*repository.ScopeSelection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sel, ok := s.sels[sessionID]
	if !ok {
		return nil, nil
	}
	return &sel, nil
}

func (s *SessionStore) Save(_ context.Context, sessionID string, sel repository.ScopeSelection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sels[sessionID] = sel
	return nil
}

func (s *SessionStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sels, sessionID)
	return nil
}
