package ports

import (
	"context"

	"github.com/dunehq/dune/pkg/domain"
)

// SessionStore defines the interface for persisting conversation sessions.
// It exists for hosts that drive the state machine one step at a time
// across requests; the core itself holds no session state.
type SessionStore interface {
	// Save persists the session under the given ID.
	Save(ctx context.Context, id string, sess domain.Session) error

	// Load retrieves the session for a given ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, id string) (domain.Session, error)

	// Delete removes the session for a given ID.
	Delete(ctx context.Context, id string) error
}
