package application

import (
	"context"
	"time"

	"leadfinder/middleware/ratelimit/domain"
)

// ConcurrencyService aplica a política de espera por vaga, sem saber nada sobre HTTP.
//
//   - AcquireTimeout == 0: espera até o ctx da requisição acabar
//   - AcquireTimeout > 0: espera no máximo o timeout
//   - AcquireTimeout < 0: não espera; só passa se houver vaga livre agora
//
// Em caso de erro (domain.ErrNoSlot) nenhuma vaga foi adquirida.
type ConcurrencyService struct {
	Pool           domain.SlotPool
	AcquireTimeout time.Duration
}

func (s ConcurrencyService) Acquire(ctx context.Context) (func(), error) {
	if s.Pool == nil {
		return func() {}, nil
	}

	switch {
	case s.AcquireTimeout == 0:
		return s.Pool.Acquire(ctx)
	case s.AcquireTimeout < 0:
		// ctx já cancelado: o pool só tenta a vaga imediata
		now, cancel := context.WithCancel(ctx)
		cancel()
		return s.Pool.Acquire(now)
	default:
		acqCtx, cancel := context.WithTimeout(ctx, s.AcquireTimeout)
		defer cancel()
		return s.Pool.Acquire(acqCtx)
	}
}
