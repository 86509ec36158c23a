package domain

// Camada de domínio do rate limit.
//
// Regras e contratos (interfaces/tipos) sem dependência de net/http.

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrRateLimitExceeded é um resultado esperado (controle de fluxo), não um defeito.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	// ErrInvalidLimit indica limite <= 0 passado para Check.
	ErrInvalidLimit = errors.New("rate limit must be > 0")
)

// Key é o identificador de partição do limiter (IP do cliente, IP+sufixo, API key...).
type Key string

// Scoped devolve a chave com sufixo de propósito, ex: "10.0.0.1_autocomplete".
// Cotas diferentes precisam de chaves diferentes para não compartilhar o mesmo contador.
func (k Key) Scoped(suffix string) Key {
	if suffix == "" {
		return k
	}
	return k + Key("_"+suffix)
}

// Decision é o resultado de uma verificação.
type Decision struct {
	Allowed bool
	// Count é o número de requisições dentro da janela após a decisão.
	Count     int
	Limit     int
	Remaining int
	// RetryAfter é quanto falta para a requisição mais antiga sair da janela.
	// Só faz sentido quando Allowed == false.
	RetryAfter time.Duration
}

// Limiter decide se uma requisição de `key` cabe em `limit` requisições por janela.
//
// A implementação deve aplicar filtro + comparação + append de forma atômica por chave.
type Limiter interface {
	Check(ctx context.Context, limit int, key Key) (Decision, error)
}

// ExceededError carrega o Retry-After de uma rejeição; errors.Is(err, ErrRateLimitExceeded) == true.
type ExceededError struct {
	Key        Key
	Limit      int
	RetryAfter time.Duration
}

func (e *ExceededError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %q (limit %d)", e.Key, e.Limit)
}

func (e *ExceededError) Unwrap() error { return ErrRateLimitExceeded }
