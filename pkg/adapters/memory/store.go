// Package memory provides an in-process SessionStore, used by single-node
// deployments and tests.
package memory

import (
	"context"
	"sync"

	"github.com/dunehq/dune/pkg/domain"
	"github.com/dunehq/dune/pkg/ports"
)

// Store implements ports.SessionStore using an in-memory map.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
}

var _ ports.SessionStore = (*Store)(nil)

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]domain.Session)}
}

// Save persists the session under the given ID.
func (s *Store) Save(ctx context.Context, id string, sess domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = sess
	return nil
}

// Load retrieves the session for a given ID.
func (s *Store) Load(ctx context.Context, id string) (domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	return sess, nil
}

// Delete removes the session for a given ID. Deleting a missing session
// is a no-op.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}
