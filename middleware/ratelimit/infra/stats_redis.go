package infra

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"leadfinder/middleware/ratelimit/domain"

	"github.com/redis/go-redis/v9"
)

const (
	fieldAllowed = "allowed"
	fieldDenied  = "denied"

	// BucketMinute agrupa os contadores por minuto UTC; BucketNone desliga a série temporal.
	BucketMinute = "minute"
	BucketNone   = "none"
)

// RedisStatsStore grava contadores allow/deny em hashes:
//
//	{prefix}:total                  allowed|denied
//	{prefix}:scope                  {scope}:allowed|{scope}:denied
//	{prefix}:minute:{yyyymmddhhmm}  allowed|denied (com TTL)
//	{prefix}:key:{key}              allowed|denied (opcional, com TTL)
//
// Um *RedisStatsStore nil é um no-op.
type RedisStatsStore struct {
	rdb redis.Cmdable

	prefix string
	// ttl vale só para minuto e chave; total e scope são cumulativos.
	ttl       time.Duration
	bucket    string
	trackKeys bool
}

type RedisStatsOption func(*RedisStatsStore)

func WithStatsPrefix(prefix string) RedisStatsOption {
	return func(s *RedisStatsStore) { s.prefix = strings.Trim(prefix, ":") }
}

func WithStatsTTL(d time.Duration) RedisStatsOption {
	return func(s *RedisStatsStore) { s.ttl = d }
}

func WithStatsBucket(bucket string) RedisStatsOption {
	return func(s *RedisStatsStore) { s.bucket = strings.ToLower(strings.TrimSpace(bucket)) }
}

func WithStatsTrackKeys(track bool) RedisStatsOption {
	return func(s *RedisStatsStore) { s.trackKeys = track }
}

func NewRedisStatsStore(rdb redis.Cmdable, opts ...RedisStatsOption) *RedisStatsStore {
	s := &RedisStatsStore{
		rdb:    rdb,
		prefix: "ratelimit:stats",
		ttl:    24 * time.Hour,
		bucket: BucketMinute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// incr é um HINCRBY num hash, com expiração opcional.
type incr struct {
	key    string
	field  string
	expire time.Duration
}

func (s *RedisStatsStore) increments(ev domain.StatsEvent) []incr {
	field := fieldDenied
	if ev.Allowed {
		field = fieldAllowed
	}
	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}

	out := []incr{{key: s.prefix + ":total", field: field}}
	if scope := strings.TrimSpace(ev.Scope); scope != "" {
		out = append(out, incr{key: s.prefix + ":scope", field: scope + ":" + field})
	}
	if s.bucket == BucketMinute {
		out = append(out, incr{
			key:    s.prefix + ":minute:" + at.UTC().Format("200601021504"),
			field:  field,
			expire: s.ttl,
		})
	}
	if s.trackKeys {
		if k := strings.TrimSpace(string(ev.Key)); k != "" {
			out = append(out, incr{key: s.prefix + ":key:" + k, field: field, expire: s.ttl})
		}
	}
	return out
}

func (s *RedisStatsStore) Record(ctx context.Context, ev domain.StatsEvent) error {
	if s == nil || s.rdb == nil {
		return nil
	}

	pipe := s.rdb.Pipeline()
	for _, in := range s.increments(ev) {
		pipe.HIncrBy(ctx, in.key, in.field, 1)
		if in.expire > 0 {
			pipe.Expire(ctx, in.key, in.expire)
		}
	}
	_, err := pipe.Exec(ctx)
	return err
}

// Summary lê os hashes cumulativos (total e scope).
func (s *RedisStatsStore) Summary(ctx context.Context) (StatsSummary, error) {
	sum := StatsSummary{ByScope: map[string]Counters{}}
	if s == nil || s.rdb == nil {
		return sum, nil
	}

	total, err := s.rdb.HGetAll(ctx, s.prefix+":total").Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return sum, err
	}
	sum.Total = countersFrom(total, "")

	scoped, err := s.rdb.HGetAll(ctx, s.prefix+":scope").Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return sum, err
	}
	for f := range scoped {
		scope, _, ok := cutLast(f, ":")
		if !ok {
			continue
		}
		if _, seen := sum.ByScope[scope]; !seen {
			sum.ByScope[scope] = countersFrom(scoped, scope+":")
		}
	}
	return sum, nil
}

func countersFrom(h map[string]string, prefix string) Counters {
	a, _ := strconv.ParseInt(h[prefix+fieldAllowed], 10, 64)
	d, _ := strconv.ParseInt(h[prefix+fieldDenied], 10, 64)
	return Counters{Allowed: a, Denied: d}
}

func cutLast(s, sep string) (string, string, bool) {
	i := strings.LastIndex(s, sep)
	if i < 0 {
		return s, "", false
	}
	return s[:i], s[i+len(sep):], true
}
