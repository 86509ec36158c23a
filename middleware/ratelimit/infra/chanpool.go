package infra

import (
	"context"
	"fmt"
	"sync"

	"leadfinder/middleware/ratelimit/domain"
)

// ChanPool é um semáforo sobre channel com capacidade fixa.
type ChanPool struct {
	sem chan struct{}
}

func NewChanPool(max int) *ChanPool {
	if max < 1 {
		max = 1
	}
	return &ChanPool{sem: make(chan struct{}, max)}
}

// Acquire espera uma vaga. O release devolvido pode ser chamado mais de uma vez;
// só a primeira chamada libera.
func (p *ChanPool) Acquire(ctx context.Context) (func(), error) {
	select {
	case p.sem <- struct{}{}:
	default:
		select {
		case p.sem <- struct{}{}:
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", domain.ErrNoSlot, ctx.Err())
		}
	}

	var once sync.Once
	return func() { once.Do(func() { <-p.sem }) }, nil
}

func (p *ChanPool) InUse() int { return len(p.sem) }
func (p *ChanPool) Cap() int   { return cap(p.sem) }
