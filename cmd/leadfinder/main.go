package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"leadfinder/middleware/ratelimit"
	rldomain "leadfinder/middleware/ratelimit/domain"
	rlinfra "leadfinder/middleware/ratelimit/infra"
	appplaces "leadfinder/places/application"
	"leadfinder/places/httpapi"
	"leadfinder/places/infra"
)

func main() {
	cfg, err := readConfig()
	if err != nil {
		slog.Error("config error", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func newLogger(cfg config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.logLevel}
	if cfg.logFormat == "text" {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}

func run(cfg config, logger *slog.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var rdb *redis.Client
	if cfg.usesRedis() {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.redisAddr,
			Password: cfg.redisPassword,
			DB:       cfg.redisDB,
		})
		defer func() { _ = rdb.Close() }()

		pingCtx, pingCancel := context.WithTimeout(ctx, 2*time.Second)
		_, err := rdb.Ping(pingCtx).Result()
		pingCancel()
		if err != nil {
			return fmt.Errorf("redis ping: %w", err)
		}
	}

	var (
		limiter rldomain.Limiter
		janitor func(context.Context) error
	)
	switch cfg.rateBackend {
	case backendRedis:
		limiter = rlinfra.NewRedisWindowStore(rdb,
			rlinfra.WithWindowPrefix(cfg.rateWindowPrefix),
			rlinfra.WithRedisInterval(cfg.rateWindow),
		)
	default:
		store, err := rlinfra.NewWindowStore(
			rlinfra.WithInterval(cfg.rateWindow),
			rlinfra.WithMaxKeys(cfg.rateMaxKeys),
			rlinfra.WithSweepEvery(cfg.rateSweepEvery),
		)
		if err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}
		limiter = store
		janitor = store.RunJanitor
	}

	var stats statsStore
	if cfg.rateStatsEnabled {
		if rdb != nil {
			stats = rlinfra.NewRedisStatsStore(rdb,
				rlinfra.WithStatsPrefix(cfg.rateStatsPrefix),
				rlinfra.WithStatsTTL(cfg.rateStatsTTL),
				rlinfra.WithStatsBucket(cfg.rateStatsBucket),
				rlinfra.WithStatsTrackKeys(cfg.rateStatsTrackKeys),
			)
		} else {
			stats = rlinfra.NewMemoryStatsStore(rlinfra.WithTrackKeys(cfg.rateStatsTrackKeys))
		}
	}

	client := infra.NewClient(cfg.apiKey,
		infra.WithBaseURL(cfg.placesBaseURL),
		infra.WithRateLimit(cfg.placesRPS),
		infra.WithLogger(logger),
	)
	if !client.Configured() {
		logger.Warn("GOOGLE_MAPS_API_KEY is not set; searches will fail until it is configured")
	}

	orch := appplaces.NewOrchestrator(appplaces.Config{
		Finder:    client,
		Suggester: client,
		Limiter:   limiter,
		Stats:     stats,
		Quotas:    appplaces.Quotas{Search: cfg.searchLimit, Autocomplete: cfg.autocompleteLimit},
		Logger:    logger,
	})

	h := httpapi.New(orch, httpapi.Options{
		Identify: ratelimit.IdentifyOptions{
			KeyHeader:          cfg.rateKeyHeader,
			TrustXForwardedFor: cfg.trustXFF,
			AddKeyHeader:       cfg.addKeyHeader,
		},
		Concurrency: ratelimit.ConcurrencyOptions{
			Max:            cfg.concurrencyMax,
			RejectStatus:   http.StatusServiceUnavailable,
			AcquireTimeout: cfg.concurrencyTimeout,
		},
		Logger: logger,
	})

	srv := &http.Server{
		Addr:              cfg.listenAddr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	logger.Info("leadfinder listening", "addr", cfg.listenAddr, "places", cfg.placesBaseURL)
	logger.Info("rate",
		"backend", cfg.rateBackend, "window", cfg.rateWindow,
		"search_limit", cfg.searchLimit, "autocomplete_limit", cfg.autocompleteLimit,
		"max_keys", cfg.rateMaxKeys, "key_header", cfg.rateKeyHeader, "trust_xff", cfg.trustXFF)
	logger.Info("rate-stats", "enabled", cfg.rateStatsEnabled, "redis", rdb != nil, "track_keys", cfg.rateStatsTrackKeys)
	logger.Info("concurrency", "max", cfg.concurrencyMax, "acquire_timeout", cfg.concurrencyTimeout)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if janitor != nil {
		g.Go(func() error { return janitor(gctx) })
	}

	err := g.Wait()
	if stats != nil {
		summaryCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		sum, serr := stats.Summary(summaryCtx)
		cancel()
		if serr != nil {
			logger.Warn("rate-stats summary unavailable", "error", serr)
		} else {
			logger.Info("rate-stats summary",
				"allowed", sum.Total.Allowed, "denied", sum.Total.Denied, "by_scope", sum.ByScope)
		}
	}
	return err
}

// statsStore é um StatsStore que também sabe se resumir no shutdown.
type statsStore interface {
	rldomain.StatsStore
	Summary(ctx context.Context) (rlinfra.StatsSummary, error)
}

