package idempotency

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type fakeRedis struct {
	data   map[string]string
	ttls   map[string]time.Duration
	getErr error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) SetNX(_ context.Context, key string, value any, ttl time.Duration) *redis.BoolCmd {
	if _, ok := f.data[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	f.data[key], _ = value.(string)
	f.ttls[key] = ttl
	return redis.NewBoolResult(true, nil)
}

func TestRedisStore_GetSetNX(t *testing.T) {
	t.Parallel()

	fr := newFakeRedis()
	s := NewRedisStore(fr, "idem:")
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok, "redis.Nil is absence, not an error")

	set, err := s.SetNX(ctx, "k", "v1", time.Hour)
	require.NoError(t, err)
	require.True(t, set)
	require.Equal(t, "v1", fr.data["idem:k"])
	require.Equal(t, time.Hour, fr.ttls["idem:k"])

	set, err = s.SetNX(ctx, "k", "v2", time.Hour)
	require.NoError(t, err)
	require.False(t, set)

	v, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "v1", v)
}

func TestRedisStore_GetError(t *testing.T) {
	t.Parallel()

	fr := newFakeRedis()
	fr.getErr = errors.New("connection refused")
	s := NewRedisStore(fr, "")

	_, _, err := s.Get(context.Background(), "k")
	require.ErrorContains(t, err, "connection refused")
}

func TestMemoryStore_Expiry(t *testing.T) {
	t.Parallel()

	now := time.Unix(1000, 0)
	s := NewMemoryStore()
	s.now = func() time.Time { return now }
	ctx := context.Background()

	set, err := s.SetNX(ctx, "k", "v", time.Minute)
	require.NoError(t, err)
	require.True(t, set)

	set, _ = s.SetNX(ctx, "k", "other", time.Minute)
	require.False(t, set)

	v, ok, _ := s.Get(ctx, "k")
	require.True(t, ok)
	require.Equal(t, "v", v)

	now = now.Add(time.Minute)
	_, ok, _ = s.Get(ctx, "k")
	require.False(t, ok)

	set, _ = s.SetNX(ctx, "k", "again", 0)
	require.True(t, set)
}
