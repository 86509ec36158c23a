// Package application é o ponto de entrada de "fazer uma busca": aplica a cota do cliente
// e delega ao gateway. Não guarda estado próprio; o estado compartilhado fica no limiter.
package application

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"leadfinder/middleware/ratelimit"
	rlapp "leadfinder/middleware/ratelimit/application"
	rldomain "leadfinder/middleware/ratelimit/domain"
	"leadfinder/places/domain"
)

const (
	DefaultSearchLimit       = 10
	DefaultAutocompleteLimit = 60

	ScopeSearch       = "search"
	ScopeAutocomplete = "autocomplete"
)

// Quotas são requisições por janela do limiter, por cliente.
type Quotas struct {
	Search       int
	Autocomplete int
}

type Config struct {
	Finder    domain.PlaceFinder
	Suggester domain.LocationSuggester
	Limiter   rldomain.Limiter
	Stats     rldomain.StatsStore
	Quotas    Quotas
	Logger    *slog.Logger
}

type Orchestrator struct {
	finder    domain.PlaceFinder
	suggester domain.LocationSuggester
	search    rlapp.Service
	complete  rlapp.Service
	quotas    Quotas
	logger    *slog.Logger
}

func NewOrchestrator(cfg Config) *Orchestrator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Quotas.Search <= 0 {
		cfg.Quotas.Search = DefaultSearchLimit
	}
	if cfg.Quotas.Autocomplete <= 0 {
		cfg.Quotas.Autocomplete = DefaultAutocompleteLimit
	}

	return &Orchestrator{
		finder:    cfg.Finder,
		suggester: cfg.Suggester,
		search:    rlapp.Service{Limiter: cfg.Limiter, Stats: cfg.Stats, Scope: ScopeSearch, Logger: logger},
		complete:  rlapp.Service{Limiter: cfg.Limiter, Stats: cfg.Stats, Scope: ScopeAutocomplete, Logger: logger},
		quotas:    cfg.Quotas,
		logger:    logger,
	}
}

// Search valida, aplica a cota de busca do cliente e delega ao PlaceFinder.
// O resultado ou a falha do gateway é devolvido sem alteração.
func (o *Orchestrator) Search(ctx context.Context, query, location, pageToken string) (domain.SearchResult, error) {
	q := domain.Query{Text: strings.TrimSpace(query), Location: strings.TrimSpace(location)}
	if q.Text == "" {
		return domain.SearchResult{}, domain.ErrEmptyQuery
	}

	key := rldomain.Key(ratelimit.ClientKey(ctx))
	if err := o.search.Check(ctx, o.quotas.Search, key); err != nil {
		o.logger.InfoContext(ctx, "search rejected", "key", string(key), "error", err)
		return domain.SearchResult{}, err
	}

	res, err := o.finder.FindPlaces(ctx, q, pageToken)
	if err != nil {
		o.logger.ErrorContext(ctx, "search failed",
			"key", string(key), "query", q.Combined(), "paged", pageToken != "", "error", err)
		return domain.SearchResult{}, err
	}

	o.logger.DebugContext(ctx, "search done",
		"key", string(key), "query", q.Combined(), "places", len(res.Places), "has_more", res.HasMore())
	return res, nil
}

// Suggest é best-effort: qualquer falha (inclusive cota) vira lista vazia.
func (o *Orchestrator) Suggest(ctx context.Context, input string) []domain.Suggestion {
	input = strings.TrimSpace(input)
	if input == "" || o.suggester == nil {
		return []domain.Suggestion{}
	}

	key := rldomain.Key(ratelimit.ClientKey(ctx)).Scoped(ScopeAutocomplete)
	if err := o.complete.Check(ctx, o.quotas.Autocomplete, key); err != nil {
		if !errors.Is(err, rldomain.ErrRateLimitExceeded) {
			o.logger.WarnContext(ctx, "autocomplete quota check failed", "key", string(key), "error", err)
		}
		return []domain.Suggestion{}
	}

	out, err := o.suggester.SuggestLocations(ctx, input)
	if err != nil {
		o.logger.WarnContext(ctx, "autocomplete failed", "key", string(key), "error", err)
		return []domain.Suggestion{}
	}
	if out == nil {
		out = []domain.Suggestion{}
	}
	return out
}
