package application

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"leadfinder/middleware/ratelimit/domain"
)

// Service aplica uma cota (limit por janela) a uma chave e registra a decisão.
//
// Ele não sabe nada sobre HTTP (headers/status), apenas retorna erro ou nil.
// Uma falha do backend do limiter (ex: Redis fora) libera a requisição com log de aviso;
// limite inválido é erro de programação e é devolvido.
type Service struct {
	Limiter domain.Limiter
	Stats   domain.StatsStore
	// Scope nomeia a cota nas estatísticas ("search", "autocomplete").
	Scope  string
	Logger *slog.Logger
}

func (s Service) Check(ctx context.Context, limit int, key domain.Key) error {
	if s.Limiter == nil {
		return nil
	}
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}

	dec, err := s.Limiter.Check(ctx, limit, key)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidLimit) {
			return err
		}
		logger.WarnContext(ctx, "rate limiter unavailable, allowing request",
			"scope", s.Scope, "key", string(key), "error", err)
		return nil
	}

	if s.Stats != nil {
		ev := domain.StatsEvent{Key: key, Scope: s.Scope, Allowed: dec.Allowed, At: time.Now()}
		if err := s.Stats.Record(ctx, ev); err != nil {
			logger.DebugContext(ctx, "rate limit stats not recorded", "scope", s.Scope, "error", err)
		}
	}

	if !dec.Allowed {
		return &domain.ExceededError{Key: key, Limit: limit, RetryAfter: dec.RetryAfter}
	}
	return nil
}
