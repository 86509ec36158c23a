package infra

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"leadfinder/middleware/ratelimit/domain"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// slidingWindowScript aplica purge + contagem + append numa única operação no servidor.
// Scores em microssegundos Unix. Retorna {allowed, count, score_limitante}.
var slidingWindowScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window_start = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local ttl_ms = tonumber(ARGV[4])
local member = ARGV[5]

redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)
local count = redis.call('ZCARD', key)
if count >= limit then
  local edge = redis.call('ZRANGE', key, count - limit, count - limit, 'WITHSCORES')
  return {0, count, edge[2]}
end
redis.call('ZADD', key, now, member)
redis.call('PEXPIRE', key, ttl_ms)
return {1, count + 1, '0'}
`)

// RedisWindowStore é a janela deslizante compartilhada entre instâncias do servidor.
// A chave no Redis expira sozinha após um intervalo sem requisições, o que limita
// o crescimento do conjunto de chaves.
type RedisWindowStore struct {
	rdb      redis.Scripter
	prefix   string
	interval time.Duration
	now      func() time.Time
}

type RedisWindowOption func(*RedisWindowStore)

func WithWindowPrefix(prefix string) RedisWindowOption {
	return func(s *RedisWindowStore) { s.prefix = strings.Trim(prefix, ":") }
}

func WithRedisInterval(d time.Duration) RedisWindowOption {
	return func(s *RedisWindowStore) { s.interval = d }
}

func WithRedisClock(now func() time.Time) RedisWindowOption {
	return func(s *RedisWindowStore) { s.now = now }
}

func NewRedisWindowStore(rdb redis.Scripter, opts ...RedisWindowOption) *RedisWindowStore {
	s := &RedisWindowStore{
		rdb:      rdb,
		prefix:   "ratelimit:window",
		interval: DefaultInterval,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.interval <= 0 {
		s.interval = DefaultInterval
	}
	return s
}

func (s *RedisWindowStore) Interval() time.Duration { return s.interval }

// Check implementa domain.Limiter.
func (s *RedisWindowStore) Check(ctx context.Context, limit int, key domain.Key) (domain.Decision, error) {
	if limit <= 0 {
		return domain.Decision{}, domain.ErrInvalidLimit
	}

	now := s.now()
	windowStart := now.Add(-s.interval)

	res, err := slidingWindowScript.Run(ctx, s.rdb,
		[]string{s.prefix + ":" + string(key)},
		now.UnixMicro(),
		windowStart.UnixMicro(),
		limit,
		s.interval.Milliseconds(),
		uuid.NewString(),
	).Slice()
	if err != nil {
		return domain.Decision{}, fmt.Errorf("redis sliding window: %w", err)
	}
	if len(res) != 3 {
		return domain.Decision{}, fmt.Errorf("redis sliding window: unexpected reply %v", res)
	}

	allowed, _ := res[0].(int64)
	count, _ := res[1].(int64)

	if allowed == 1 {
		return domain.Decision{
			Allowed:   true,
			Count:     int(count),
			Limit:     limit,
			Remaining: limit - int(count),
		}, nil
	}

	edge, err := replyInt(res[2])
	if err != nil {
		return domain.Decision{}, fmt.Errorf("redis sliding window: %w", err)
	}
	return domain.Decision{
		Allowed:    false,
		Count:      int(count),
		Limit:      limit,
		RetryAfter: time.UnixMicro(edge).Sub(windowStart),
	}, nil
}

func replyInt(v interface{}) (int64, error) {
	switch t := v.(type) {
	case int64:
		return t, nil
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0, err
		}
		return int64(f), nil
	default:
		return 0, fmt.Errorf("unexpected score type %T", v)
	}
}
