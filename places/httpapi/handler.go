// Package httpapi expõe o orquestrador de busca como JSON sobre HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"leadfinder/middleware/ratelimit"
	rldomain "leadfinder/middleware/ratelimit/domain"
	"leadfinder/places/domain"
)

// maxBodyBytes limita o corpo de /api/search.
const maxBodyBytes = 64 << 10

// Searcher é o que o handler precisa do orquestrador.
type Searcher interface {
	Search(ctx context.Context, query, location, pageToken string) (domain.SearchResult, error)
	Suggest(ctx context.Context, input string) []domain.Suggestion
}

type SearchRequest struct {
	Query     string `json:"query"`
	Location  string `json:"location"`
	PageToken string `json:"pageToken,omitempty"`
}

type Options struct {
	Identify    ratelimit.IdentifyOptions
	Concurrency ratelimit.ConcurrencyOptions
	Logger      *slog.Logger
}

type Handler struct {
	searcher Searcher
	logger   *slog.Logger
}

// New monta as rotas e a cadeia de middlewares.
func New(searcher Searcher, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Concurrency.Logger == nil {
		opts.Concurrency.Logger = logger
	}
	h := &Handler{searcher: searcher, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/search", h.search)
	mux.HandleFunc("GET /api/autocomplete", h.autocomplete)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	return Chain(mux,
		Recovery(logger),
		RequestID,
		Logger(logger),
		ratelimit.IdentifyMiddleware(opts.Identify),
		ratelimit.ConcurrencyMiddleware(opts.Concurrency),
	)
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		RenderError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	res, err := h.searcher.Search(r.Context(), req.Query, req.Location, req.PageToken)
	if err != nil {
		h.renderSearchError(w, r, err)
		return
	}
	if res.Places == nil {
		res.Places = []domain.Business{}
	}
	RenderJSON(w, http.StatusOK, res)
}

func (h *Handler) renderSearchError(w http.ResponseWriter, r *http.Request, err error) {
	msg := domain.UserMessage(err)

	var exceeded *rldomain.ExceededError
	var upstream *domain.UpstreamError
	var transport *domain.TransportError
	switch {
	case errors.As(err, &exceeded):
		ratelimit.WriteRetryAfter(w, exceeded.RetryAfter)
		RenderError(w, http.StatusTooManyRequests, msg)
	case errors.Is(err, domain.ErrRateLimitExceeded):
		RenderError(w, http.StatusTooManyRequests, msg)
	case errors.Is(err, domain.ErrEmptyQuery):
		RenderError(w, http.StatusBadRequest, msg)
	case errors.As(err, &upstream), errors.As(err, &transport):
		RenderError(w, http.StatusBadGateway, msg)
	default:
		h.logger.ErrorContext(r.Context(), "search error", "error", err, "request_id", RequestIDFrom(r.Context()))
		RenderError(w, http.StatusInternalServerError, msg)
	}
}

func (h *Handler) autocomplete(w http.ResponseWriter, r *http.Request) {
	out := h.searcher.Suggest(r.Context(), r.URL.Query().Get("input"))
	if out == nil {
		out = []domain.Suggestion{}
	}
	RenderJSON(w, http.StatusOK, out)
}
