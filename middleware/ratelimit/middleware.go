package ratelimit

import (
	"context"
	"net"
	"net/http"
	"strings"
)

// Anonymous é a chave usada quando o cliente não pode ser identificado.
const Anonymous = "anonymous"

type KeyFunc func(r *http.Request) string

type ctxKey struct{}

type IdentifyOptions struct {
	KeyFn              KeyFunc
	KeyHeader          string
	TrustXForwardedFor bool
	// AddKeyHeader devolve a chave em X-RateLimit-Key (debug).
	AddKeyHeader bool
}

func DefaultKeyFunc(keyHeader string, trustXFF bool) KeyFunc {
	return func(r *http.Request) string {
		if keyHeader != "" {
			if v := strings.TrimSpace(r.Header.Get(keyHeader)); v != "" {
				return v
			}
		}

		if trustXFF {
			// pega o primeiro IP do X-Forwarded-For (cliente original)
			if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
				first, _, _ := strings.Cut(xff, ",")
				if ip := strings.TrimSpace(first); ip != "" {
					return ip
				}
			}
		}

		// fallback: RemoteAddr
		remote := strings.TrimSpace(r.RemoteAddr)
		host, _, err := net.SplitHostPort(remote)
		if err == nil && host != "" {
			return host
		}
		if remote != "" {
			return remote
		}
		return Anonymous
	}
}

// IdentifyMiddleware resolve a chave do cliente uma vez por requisição e a coloca no contexto.
func IdentifyMiddleware(opts IdentifyOptions) func(next http.Handler) http.Handler {
	if opts.KeyFn == nil {
		opts.KeyFn = DefaultKeyFunc(opts.KeyHeader, opts.TrustXForwardedFor)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := strings.TrimSpace(opts.KeyFn(r))
			if key == "" {
				key = Anonymous
			}
			if opts.AddKeyHeader {
				w.Header().Set("X-RateLimit-Key", key)
			}
			next.ServeHTTP(w, r.WithContext(WithClientKey(r.Context(), key)))
		})
	}
}

func WithClientKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, ctxKey{}, key)
}

// ClientKey devolve a chave guardada por IdentifyMiddleware, ou Anonymous.
func ClientKey(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKey{}).(string); ok && v != "" {
		return v
	}
	return Anonymous
}
