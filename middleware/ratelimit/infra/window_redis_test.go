package infra

import (
	"context"
	"testing"
	"time"

	"leadfinder/middleware/ratelimit/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestRedisWindowStore_AllowsLimitThenRejects(t *testing.T) {
	_, rdb := newTestRedis(t)
	clock := newFakeClock()
	s := NewRedisWindowStore(rdb, WithRedisClock(clock.Now), WithRedisInterval(time.Minute))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		dec, err := s.Check(ctx, 3, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, dec.Allowed)
		assert.Equal(t, i+1, dec.Count)
		clock.Advance(10 * time.Second)
	}

	dec, err := s.Check(ctx, 3, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, dec.Allowed)
	assert.Equal(t, 3, dec.Count)
	assert.Equal(t, 30*time.Second, dec.RetryAfter)

	clock.Advance(31 * time.Second)
	dec, err = s.Check(ctx, 3, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, dec.Allowed)
}

func TestRedisWindowStore_SameInstantGetsDistinctMembers(t *testing.T) {
	_, rdb := newTestRedis(t)
	clock := newFakeClock()
	s := NewRedisWindowStore(rdb, WithRedisClock(clock.Now))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		dec, err := s.Check(ctx, 5, "k")
		require.NoError(t, err)
		require.True(t, dec.Allowed)
	}
	dec, err := s.Check(ctx, 5, "k")
	require.NoError(t, err)
	assert.False(t, dec.Allowed)
}

func TestRedisWindowStore_KeysArePrefixedAndExpire(t *testing.T) {
	mr, rdb := newTestRedis(t)
	s := NewRedisWindowStore(rdb, WithWindowPrefix("leads:rl:"))

	_, err := s.Check(context.Background(), 1, domain.Key("ip").Scoped("autocomplete"))
	require.NoError(t, err)

	assert.True(t, mr.Exists("leads:rl:ip_autocomplete"))
	assert.Equal(t, time.Minute, mr.TTL("leads:rl:ip_autocomplete"))
}

func TestRedisWindowStore_InvalidLimit(t *testing.T) {
	_, rdb := newTestRedis(t)
	s := NewRedisWindowStore(rdb)

	_, err := s.Check(context.Background(), -1, "k")
	assert.ErrorIs(t, err, domain.ErrInvalidLimit)
}
