package infra

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"leadfinder/middleware/ratelimit/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestWindowStore(t *testing.T, clock *fakeClock, opts ...WindowOption) *WindowStore {
	t.Helper()
	opts = append([]WindowOption{WithClock(clock.Now), WithInterval(time.Minute)}, opts...)
	s, err := NewWindowStore(opts...)
	require.NoError(t, err)
	return s
}

func TestWindowStore_AllowsLimitThenRejects(t *testing.T) {
	clock := newFakeClock()
	s := newTestWindowStore(t, clock)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		dec, err := s.Check(ctx, 10, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, dec.Allowed, "call %d should pass", i+1)
		assert.Equal(t, 10-i-1, dec.Remaining)
		clock.Advance(time.Second)
	}

	dec, err := s.Check(ctx, 10, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, dec.Allowed)
	assert.Equal(t, 10, dec.Count)
	// primeira chamada foi há 10s; sai da janela em 50s
	assert.Equal(t, 50*time.Second, dec.RetryAfter)
}

func TestWindowStore_RejectionDoesNotConsume(t *testing.T) {
	clock := newFakeClock()
	s := newTestWindowStore(t, clock)
	ctx := context.Background()

	_, err := s.Check(ctx, 1, "k")
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		dec, err := s.Check(ctx, 1, "k")
		require.NoError(t, err)
		assert.False(t, dec.Allowed)
		assert.Equal(t, 1, dec.Count)
	}
}

func TestWindowStore_SlidesPastFirstCall(t *testing.T) {
	clock := newFakeClock()
	s := newTestWindowStore(t, clock)
	ctx := context.Background()

	_, err := s.Check(ctx, 2, "k")
	require.NoError(t, err)
	clock.Advance(30 * time.Second)
	_, err = s.Check(ctx, 2, "k")
	require.NoError(t, err)

	dec, err := s.Check(ctx, 2, "k")
	require.NoError(t, err)
	assert.False(t, dec.Allowed)

	// exatamente em now-interval a primeira ainda conta? não: precisa ser estritamente maior.
	clock.Advance(30 * time.Second)
	dec, err = s.Check(ctx, 2, "k")
	require.NoError(t, err)
	assert.True(t, dec.Allowed, "first stamp sits on windowStart and must be purged")

	dec, err = s.Check(ctx, 2, "k")
	require.NoError(t, err)
	assert.False(t, dec.Allowed)
}

func TestWindowStore_IndependentKeys(t *testing.T) {
	clock := newFakeClock()
	s := newTestWindowStore(t, clock)
	ctx := context.Background()
	key := domain.Key("10.0.0.1")

	for i := 0; i < 10; i++ {
		_, err := s.Check(ctx, 10, key)
		require.NoError(t, err)
	}
	dec, err := s.Check(ctx, 10, key)
	require.NoError(t, err)
	require.False(t, dec.Allowed)

	dec, err = s.Check(ctx, 60, key.Scoped("autocomplete"))
	require.NoError(t, err)
	assert.True(t, dec.Allowed)
}

func TestWindowStore_InvalidLimit(t *testing.T) {
	s := newTestWindowStore(t, newFakeClock())

	_, err := s.Check(context.Background(), 0, "k")
	assert.ErrorIs(t, err, domain.ErrInvalidLimit)
}

func TestWindowStore_MaxKeysEvictsLeastRecentlyUsed(t *testing.T) {
	clock := newFakeClock()
	s := newTestWindowStore(t, clock, WithMaxKeys(2))
	ctx := context.Background()

	_, _ = s.Check(ctx, 1, "a")
	_, _ = s.Check(ctx, 1, "b")
	// toca "a" para que "b" seja o menos recente
	dec, _ := s.Check(ctx, 1, "a")
	require.False(t, dec.Allowed)

	_, _ = s.Check(ctx, 1, "c")
	assert.Equal(t, 2, s.Len())

	dec, err := s.Check(ctx, 1, "b")
	require.NoError(t, err)
	assert.True(t, dec.Allowed, "evicted key starts a fresh window")

	dec, err = s.Check(ctx, 1, "c")
	require.NoError(t, err)
	assert.False(t, dec.Allowed)
}

func TestWindowStore_SweepRemovesEmptyWindows(t *testing.T) {
	clock := newFakeClock()
	s := newTestWindowStore(t, clock)
	ctx := context.Background()

	_, _ = s.Check(ctx, 5, "old")
	clock.Advance(45 * time.Second)
	_, _ = s.Check(ctx, 5, "recent")
	clock.Advance(20 * time.Second)

	removed := s.Sweep()
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, s.Len())

	dec, err := s.Check(ctx, 5, "recent")
	require.NoError(t, err)
	assert.Equal(t, 2, dec.Count)
}

func TestWindowStore_ConcurrentSameKeyNeverOvercommits(t *testing.T) {
	s := newTestWindowStore(t, newFakeClock())
	ctx := context.Background()

	const limit = 10
	var allowed atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			dec, err := s.Check(ctx, limit, "shared")
			if err == nil && dec.Allowed {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(limit), allowed.Load())
}

func TestWindowStore_ConcurrentSweepKeepsCounts(t *testing.T) {
	clock := newFakeClock()
	s := newTestWindowStore(t, clock, WithMaxKeys(1000))
	ctx := context.Background()

	var allowed atomic.Int64
	var wg sync.WaitGroup
	stop := make(chan struct{})
	go func() {
		for {
			select {
			case <-stop:
				return
			default:
				s.Sweep()
			}
		}
	}()

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := domain.Key(fmt.Sprintf("k%d", i%5))
			for j := 0; j < 10; j++ {
				dec, err := s.Check(ctx, 4, key)
				if err == nil && dec.Allowed {
					allowed.Add(1)
				}
			}
		}(i)
	}
	wg.Wait()
	close(stop)

	// 5 chaves x 4 vagas; o relógio não anda, então nada expira
	assert.Equal(t, int64(20), allowed.Load())
}

func TestWindowStore_StartJanitorStopsWithContext(t *testing.T) {
	clock := newFakeClock()
	s := newTestWindowStore(t, clock, WithSweepEvery(time.Millisecond))

	_, _ = s.Check(context.Background(), 1, "k")
	clock.Advance(2 * time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	s.StartJanitor(ctx)

	assert.Eventually(t, func() bool { return s.Len() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
}
