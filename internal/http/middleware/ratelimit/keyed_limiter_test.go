package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(t time.Time) *fakeClock { return &fakeClock{now: t} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Add(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestKeyedLimiter_BurstThenBlocksThenRefills(t *testing.T) {
	t.Parallel()

	clk := newFakeClock(time.Unix(1000, 0))
	l := NewKeyedLimiter(clk, Config{Rate: 1, Burst: 2})

	require.True(t, l.Allow("u1"))
	require.True(t, l.Allow("u1"))
	require.False(t, l.Allow("u1"), "bucket drained")

	clk.Add(time.Second)
	require.True(t, l.Allow("u1"), "one token refilled")
	require.False(t, l.Allow("u1"))
}

func TestKeyedLimiter_KeysAreIndependent(t *testing.T) {
	t.Parallel()

	clk := newFakeClock(time.Unix(1000, 0))
	l := NewKeyedLimiter(clk, Config{Rate: 1, Burst: 1})

	require.True(t, l.Allow("a"))
	require.False(t, l.Allow("a"))
	require.True(t, l.Allow("b"))
}

func TestKeyedLimiter_MaxKeysRefusesNewcomers(t *testing.T) {
	t.Parallel()

	clk := newFakeClock(time.Unix(1000, 0))
	l := NewKeyedLimiter(clk, Config{Rate: 10, Burst: 10, MaxKeys: 1})

	require.True(t, l.Allow("a"))
	require.False(t, l.Allow("b"))
	require.True(t, l.Allow("a"), "known key still served")
}

func TestKeyedLimiter_IdleKeysExpire(t *testing.T) {
	t.Parallel()

	clk := newFakeClock(time.Unix(1000, 0))
	l := NewKeyedLimiter(clk, Config{Rate: 1, Burst: 1, TTL: 2 * time.Minute, MaxKeys: 1})

	require.True(t, l.Allow("a"))
	require.Equal(t, 1, l.Len())

	clk.Add(3 * time.Minute)
	require.True(t, l.Allow("b"), "a was swept, b fits")
	require.Equal(t, 1, l.Len())
}

func TestKeyedLimiter_Defaults(t *testing.T) {
	t.Parallel()

	l := NewKeyedLimiter(nil, Config{Rate: -1, Burst: 0, MaxKeys: -5})
	require.True(t, l.Allow("x"))
	require.False(t, l.Allow("x"))
}
