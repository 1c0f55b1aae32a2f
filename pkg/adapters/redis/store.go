// Package redis provides a Redis-backed SessionStore for multi-replica
// deployments where stepwise conversations must survive process restarts.
package redis

import (
	"context"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/dunehq/dune/pkg/domain"
	"github.com/dunehq/dune/pkg/persistence"
	"github.com/dunehq/dune/pkg/ports"
)

// Store implements ports.SessionStore using Redis.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
	codec  persistence.Codec
}

var _ ports.SessionStore = (*Store)(nil)

// Option configures the Store.
type Option func(*Store)

// WithTTL sets the expiration for sessions. Zero means no expiration.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for sessions.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// WithCodec sets the session serialization (e.g., the encrypting AES
// codec). Defaults to plain JSON.
func WithCodec(codec persistence.Codec) Option {
	return func(s *Store) {
		s.codec = codec
	}
}

// New creates a Redis store connecting to the given address.
func New(address, password string, db int, opts ...Option) *Store {
	client := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(client, opts...)
}

// NewFromClient creates a Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "dune:session:",
		codec:  persistence.JSONCodec{},
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *Store) key(id string) string {
	return s.prefix + id
}

// Save persists the session to Redis through the configured codec.
func (s *Store) Save(ctx context.Context, id string, sess domain.Session) error {
	data, err := s.codec.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := s.client.Set(ctx, s.key(id), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Load retrieves the session from Redis.
func (s *Store) Load(ctx context.Context, id string) (domain.Session, error) {
	val, err := s.client.Get(ctx, s.key(id)).Result()
	if err != nil {
		if err == backend.Nil {
			return domain.Session{}, domain.ErrSessionNotFound
		}
		return domain.Session{}, fmt.Errorf("failed to get from redis: %w", err)
	}

	sess, err := s.codec.Unmarshal([]byte(val))
	if err != nil {
		return domain.Session{}, err
	}
	return sess, nil
}

// Delete removes the session.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, s.key(id)).Err()
}
