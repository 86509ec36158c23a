package domain

import (
	"errors"
	"fmt"

	rldomain "leadfinder/middleware/ratelimit/domain"
)

var (
	// ErrConfiguration indica credencial do diretório ausente. Não é recuperável sem operador.
	ErrConfiguration = errors.New("places: API key is not configured")
	// ErrEmptyQuery indica busca sem categoria.
	ErrEmptyQuery = errors.New("places: query is required")
	// ErrRateLimitExceeded é o mesmo sentinel do rate limiter, para errors.Is nos chamadores.
	ErrRateLimitExceeded = rldomain.ErrRateLimitExceeded
)

// UpstreamError é uma resposta não-2xx do diretório. Message é o detalhe para log.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("places: upstream error %d: %s", e.Status, e.Message)
}

// TransportError é uma falha de rede (ou de decodificação) ao falar com o diretório.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("places: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

const (
	MessageRateLimited  = "Too many requests. Please wait a moment and try again."
	MessageEmptyQuery   = "Please enter a business type to search for."
	MessageFetchFailure = "Failed to fetch results. Please check your API key and try again."
)

// UserMessage traduz qualquer erro da busca na única mensagem mostrada ao usuário.
// Detalhes internos (status, payload) ficam só no log.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrRateLimitExceeded):
		return MessageRateLimited
	case errors.Is(err, ErrEmptyQuery):
		return MessageEmptyQuery
	default:
		return MessageFetchFailure
	}
}
