package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	rlinfra "leadfinder/middleware/ratelimit/infra"
	appplaces "leadfinder/places/application"
	"leadfinder/places/infra"
)

const (
	backendMemory = "memory"
	backendRedis  = "redis"
)

type config struct {
	listenAddr    string
	apiKey        string
	placesBaseURL string
	placesRPS     float64

	searchLimit       int
	autocompleteLimit int
	rateWindow        time.Duration
	rateMaxKeys       int
	rateSweepEvery    time.Duration
	rateKeyHeader     string
	trustXFF          bool
	addKeyHeader      bool
	rateBackend       string
	rateWindowPrefix  string

	concurrencyMax     int
	concurrencyTimeout time.Duration

	redisAddr     string
	redisPassword string
	redisDB       int

	rateStatsEnabled   bool
	rateStatsPrefix    string
	rateStatsTTL       time.Duration
	rateStatsBucket    string
	rateStatsTrackKeys bool

	logLevel  slog.Level
	logFormat string
}

func readConfig() (config, error) {
	cfg := config{}
	cfg.listenAddr = getenvDefault("LISTEN_ADDR", ":8080")
	// a ausência da chave não impede o start: cada busca falha com erro de configuração
	cfg.apiKey = strings.TrimSpace(os.Getenv("GOOGLE_MAPS_API_KEY"))
	cfg.placesBaseURL = getenvDefault("PLACES_BASE_URL", infra.DefaultBaseURL)
	cfg.placesRPS = getenvFloatDefault("PLACES_RPS", infra.DefaultRateLimit)

	cfg.searchLimit = getenvIntDefault("SEARCH_LIMIT", appplaces.DefaultSearchLimit)
	cfg.autocompleteLimit = getenvIntDefault("AUTOCOMPLETE_LIMIT", appplaces.DefaultAutocompleteLimit)
	cfg.rateWindow = getenvDurationDefault("RATE_WINDOW", rlinfra.DefaultInterval)
	cfg.rateMaxKeys = getenvIntDefault("RATE_MAX_KEYS", rlinfra.DefaultMaxKeys)
	cfg.rateSweepEvery = getenvDurationDefault("RATE_SWEEP_EVERY", rlinfra.DefaultSweepEvery)
	cfg.rateKeyHeader = os.Getenv("RATE_KEY_HEADER")
	cfg.trustXFF = getenvBoolDefault("TRUST_XFF", false)
	cfg.addKeyHeader = getenvBoolDefault("ADD_RATELIMIT_KEY_HEADER", false)
	cfg.rateBackend = strings.ToLower(getenvDefault("RATE_BACKEND", backendMemory))
	cfg.rateWindowPrefix = getenvDefault("RATE_WINDOW_PREFIX", "ratelimit:window")

	cfg.concurrencyMax = getenvIntDefault("CONCURRENCY_MAX", 100)
	cfg.concurrencyTimeout = getenvDurationDefault("CONCURRENCY_TIMEOUT", 0)

	cfg.redisAddr = os.Getenv("REDIS_ADDR")
	cfg.redisPassword = os.Getenv("REDIS_PASSWORD")
	cfg.redisDB = getenvIntDefault("REDIS_DB", 0)

	cfg.rateStatsEnabled = getenvBoolDefault("RATE_STATS_ENABLED", false)
	cfg.rateStatsPrefix = getenvDefault("RATE_STATS_PREFIX", "ratelimit:stats")
	cfg.rateStatsTTL = getenvDurationDefault("RATE_STATS_TTL", 24*time.Hour)
	cfg.rateStatsBucket = getenvDefault("RATE_STATS_BUCKET", "minute")
	cfg.rateStatsTrackKeys = getenvBoolDefault("RATE_STATS_TRACK_KEYS", false)

	level, err := parseLevel(getenvDefault("LOG_LEVEL", "info"))
	if err != nil {
		return config{}, err
	}
	cfg.logLevel = level
	cfg.logFormat = strings.ToLower(getenvDefault("LOG_FORMAT", "json"))

	switch cfg.rateBackend {
	case backendMemory:
	case backendRedis:
		if strings.TrimSpace(cfg.redisAddr) == "" {
			return config{}, errors.New("REDIS_ADDR is required when RATE_BACKEND=redis")
		}
	default:
		return config{}, fmt.Errorf("RATE_BACKEND must be %q or %q, got %q", backendMemory, backendRedis, cfg.rateBackend)
	}
	if cfg.searchLimit <= 0 {
		return config{}, errors.New("SEARCH_LIMIT must be > 0")
	}
	if cfg.autocompleteLimit <= 0 {
		return config{}, errors.New("AUTOCOMPLETE_LIMIT must be > 0")
	}
	if cfg.rateWindow <= 0 {
		return config{}, errors.New("RATE_WINDOW must be > 0")
	}
	if cfg.rateMaxKeys <= 0 {
		return config{}, errors.New("RATE_MAX_KEYS must be > 0")
	}
	if cfg.concurrencyMax < 0 {
		return config{}, errors.New("CONCURRENCY_MAX must be >= 0")
	}
	if cfg.logFormat != "json" && cfg.logFormat != "text" {
		return config{}, errors.New("LOG_FORMAT must be json or text")
	}
	return cfg, nil
}

// usesRedis diz se o processo precisa de uma conexão redis.
func (c config) usesRedis() bool {
	return c.rateBackend == backendRedis || (c.rateStatsEnabled && c.redisAddr != "")
}

func parseLevel(v string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(v)); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL %q: %w", v, err)
	}
	return l, nil
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvIntDefault(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getenvFloatDefault(k string, def float64) float64 {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func getenvBoolDefault(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getenvDurationDefault(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
