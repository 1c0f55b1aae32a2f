package redis_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dunehq/dune/pkg/adapters/redis"
	"github.com/dunehq/dune/pkg/domain"
	"github.com/dunehq/dune/pkg/persistence"
)

func newTestStore(t *testing.T, opts ...redis.Option) (*redis.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return redis.NewFromClient(client, opts...), mr
}

func TestStore_SaveLoadDelete(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	sess := domain.Session{TenantID: "t1", RawInput: "hi", Current: domain.NodePersuade, LastOutput: "ok"}
	require.NoError(t, store.Save(ctx, "s1", sess))

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, sess, loaded)

	require.NoError(t, store.Delete(ctx, "s1"))
	_, err = store.Load(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestStore_LoadMissing(t *testing.T) {
	store, _ := newTestStore(t)
	_, err := store.Load(context.Background(), "unknown")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestStore_KeyPrefix(t *testing.T) {
	store, mr := newTestStore(t, redis.WithPrefix("custom:"))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "s1", domain.Session{TenantID: "t1", Current: domain.NodeProbe}))
	assert.True(t, mr.Exists("custom:s1"))
}

func TestStore_TTL(t *testing.T) {
	store, mr := newTestStore(t, redis.WithTTL(time.Minute))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "s1", domain.Session{TenantID: "t1", Current: domain.NodeProbe}))
	assert.Equal(t, time.Minute, mr.TTL("dune:session:s1"))

	mr.FastForward(2 * time.Minute)
	_, err := store.Load(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestStore_EncryptedCodec(t *testing.T) {
	key := bytes.Repeat([]byte{0x42}, 32)
	codec, err := persistence.NewAESCodec(key)
	require.NoError(t, err)

	store, mr := newTestStore(t, redis.WithCodec(codec))
	ctx := context.Background()

	sess := domain.Session{TenantID: "t1", RawInput: "sensitive text", Current: domain.NodeProbe}
	require.NoError(t, store.Save(ctx, "s1", sess))

	// The stored value is opaque; the raw input never hits Redis in clear.
	raw, err := mr.Get("dune:session:s1")
	require.NoError(t, err)
	assert.NotContains(t, raw, "sensitive text")

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, sess, loaded)
}
