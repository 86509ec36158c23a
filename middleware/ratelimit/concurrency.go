package ratelimit

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"leadfinder/middleware/ratelimit/application"
	"leadfinder/middleware/ratelimit/infra"
)

// MessageBusy é o texto devolvido quando não há vaga.
const MessageBusy = "Server is busy. Please try again shortly."

type ConcurrencyOptions struct {
	// Max <= 0 desliga o limite.
	Max            int
	RejectStatus   int
	AcquireTimeout time.Duration
	Logger         *slog.Logger
}

// ConcurrencyMiddleware limita requisições simultâneas no processo.
// A rejeição usa o mesmo corpo JSON {"code","message"} dos handlers e Retry-After: 1.
func ConcurrencyMiddleware(opts ConcurrencyOptions) func(next http.Handler) http.Handler {
	if opts.Max <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if opts.RejectStatus == 0 {
		opts.RejectStatus = http.StatusServiceUnavailable
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	pool := infra.NewChanPool(opts.Max)
	svc := application.ConcurrencyService{Pool: pool, AcquireTimeout: opts.AcquireTimeout}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			release, err := svc.Acquire(r.Context())
			if err != nil {
				logger.WarnContext(r.Context(), "concurrency limit reached",
					"path", r.URL.Path, "in_use", pool.InUse(), "max", pool.Cap(), "key", ClientKey(r.Context()))
				WriteRetryAfter(w, time.Second)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(opts.RejectStatus)
				_ = json.NewEncoder(w).Encode(map[string]any{"code": opts.RejectStatus, "message": MessageBusy})
				return
			}
			defer release()

			next.ServeHTTP(w, r)
		})
	}
}
