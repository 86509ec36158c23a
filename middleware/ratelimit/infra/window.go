package infra

import (
	"context"
	"sync"
	"time"

	"leadfinder/middleware/ratelimit/domain"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	DefaultInterval   = time.Minute
	DefaultMaxKeys    = 10000
	DefaultSweepEvery = 2 * time.Minute
)

// WindowStore é um contador de janela deslizante por chave: guarda os instantes
// das requisições aceitas nos últimos `interval` e rejeita quando já há `limit` deles.
//
// O conjunto de chaves é limitado por um cache LRU; uma chave despejada perde a janela.
type WindowStore struct {
	// mu serializa apenas lookup/criação/remoção de janelas no cache.
	mu         sync.Mutex
	windows    *lru.Cache[domain.Key, *window]
	interval   time.Duration
	maxKeys    int
	sweepEvery time.Duration
	now        func() time.Time
}

type window struct {
	mu     sync.Mutex
	stamps []time.Time
	// dead marca janela removida do cache; quem a segurava refaz o lookup.
	dead bool
}

type WindowOption func(*WindowStore)

func WithInterval(d time.Duration) WindowOption {
	return func(s *WindowStore) { s.interval = d }
}

func WithMaxKeys(n int) WindowOption {
	return func(s *WindowStore) { s.maxKeys = n }
}

func WithSweepEvery(d time.Duration) WindowOption {
	return func(s *WindowStore) { s.sweepEvery = d }
}

// WithClock troca o relógio (testes).
func WithClock(now func() time.Time) WindowOption {
	return func(s *WindowStore) { s.now = now }
}

func NewWindowStore(opts ...WindowOption) (*WindowStore, error) {
	s := &WindowStore{
		interval:   DefaultInterval,
		maxKeys:    DefaultMaxKeys,
		sweepEvery: DefaultSweepEvery,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.interval <= 0 {
		s.interval = DefaultInterval
	}
	if s.maxKeys <= 0 {
		s.maxKeys = DefaultMaxKeys
	}

	cache, err := lru.NewWithEvict(s.maxKeys, func(_ domain.Key, w *window) {
		w.mu.Lock()
		w.dead = true
		w.mu.Unlock()
	})
	if err != nil {
		return nil, err
	}
	s.windows = cache
	return s, nil
}

func (s *WindowStore) Interval() time.Duration   { return s.interval }
func (s *WindowStore) SweepEvery() time.Duration  { return s.sweepEvery }
func (s *WindowStore) Len() int                  { return s.windows.Len() }

// Check implementa domain.Limiter.
//
//  1. windowStart = now - interval
//  2. descarta instantes <= windowStart (única forma de expiração)
//  3. se restam >= limit, rejeita sem registrar a requisição
//  4. senão registra now
func (s *WindowStore) Check(_ context.Context, limit int, key domain.Key) (domain.Decision, error) {
	if limit <= 0 {
		return domain.Decision{}, domain.ErrInvalidLimit
	}

	for {
		w := s.lookup(key)

		w.mu.Lock()
		if w.dead {
			w.mu.Unlock()
			continue
		}

		now := s.now()
		windowStart := now.Add(-s.interval)
		w.purge(windowStart)

		count := len(w.stamps)
		if count >= limit {
			// a vaga abre quando stamps[count-limit] sair da janela
			retry := w.stamps[count-limit].Sub(windowStart)
			w.mu.Unlock()
			return domain.Decision{
				Allowed:    false,
				Count:      count,
				Limit:      limit,
				RetryAfter: retry,
			}, nil
		}

		w.stamps = append(w.stamps, now)
		w.mu.Unlock()
		return domain.Decision{
			Allowed:   true,
			Count:     count + 1,
			Limit:     limit,
			Remaining: limit - count - 1,
		}, nil
	}
}

func (s *WindowStore) lookup(key domain.Key) *window {
	s.mu.Lock()
	defer s.mu.Unlock()

	if w, ok := s.windows.Get(key); ok {
		return w
	}
	w := &window{}
	s.windows.Add(key, w)
	return w
}

// purge mantém só instantes estritamente maiores que windowStart.
// Os instantes são crescentes, então basta achar o primeiro válido.
func (w *window) purge(windowStart time.Time) {
	i := 0
	for i < len(w.stamps) && !w.stamps[i].After(windowStart) {
		i++
	}
	if i == 0 {
		return
	}
	w.stamps = append(w.stamps[:0], w.stamps[i:]...)
}

// Sweep remove chaves cuja janela atual está vazia.
// Não altera nenhuma decisão futura: janela vazia e chave inexistente são equivalentes.
func (s *WindowStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	windowStart := s.now().Add(-s.interval)
	removed := 0
	for _, key := range s.windows.Keys() {
		w, ok := s.windows.Peek(key)
		if !ok {
			continue
		}
		w.mu.Lock()
		w.purge(windowStart)
		empty := len(w.stamps) == 0
		if empty {
			w.dead = true
		}
		w.mu.Unlock()

		if empty {
			s.windows.Remove(key)
			removed++
		}
	}
	return removed
}

// StartJanitor inicia uma goroutine que executa Sweep periodicamente.
// Pare cancelando o contexto.
func (s *WindowStore) StartJanitor(ctx context.Context) {
	go func() { _ = s.RunJanitor(ctx) }()
}

// RunJanitor é a versão bloqueante de StartJanitor (para errgroup). Retorna nil quando ctx acaba.
func (s *WindowStore) RunJanitor(ctx context.Context) error {
	if s.sweepEvery <= 0 {
		<-ctx.Done()
		return nil
	}

	t := time.NewTicker(s.sweepEvery)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			s.Sweep()
		}
	}
}
