package persistence

import (
	"context"

	"github.com/dunehq/dune/pkg/audit"
	"github.com/dunehq/dune/pkg/domain"
	"github.com/dunehq/dune/pkg/ports"
)

// Middleware allows wrapping a SessionStore to add behavior.
type Middleware func(ports.SessionStore) ports.SessionStore

// Chain applies middlewares left to right around the store.
func Chain(store ports.SessionStore, mws ...Middleware) ports.SessionStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}

type scrubMiddleware struct {
	next ports.SessionStore
}

// NewScrubMiddleware creates a middleware that masks the untrusted raw
// input before a session is persisted, for deployments whose store must
// never hold user free text. Structured identifiers pass through
// unchanged. Note that a scrubbed session loses its input for stages that
// still echo it.
func NewScrubMiddleware() Middleware {
	return func(next ports.SessionStore) ports.SessionStore {
		return &scrubMiddleware{next: next}
	}
}

func (m *scrubMiddleware) Save(ctx context.Context, id string, sess domain.Session) error {
	if sess.RawInput != "" {
		sess.RawInput = audit.RedactedMarker
	}
	return m.next.Save(ctx, id, sess)
}

func (m *scrubMiddleware) Load(ctx context.Context, id string) (domain.Session, error) {
	return m.next.Load(ctx, id)
}

func (m *scrubMiddleware) Delete(ctx context.Context, id string) error {
	return m.next.Delete(ctx, id)
}
