package domain

import (
	"context"
	"time"
)

// StatsEvent representa um evento de decisão do rate limit.
//
// Scope identifica a cota ("search", "autocomplete") e substitui Method/Path:
// a decisão acontece no orquestrador, não no roteador HTTP.
//
// Observação: cuidado com cardinalidade (salvar Key sem controle pode
// explodir o número de chaves no Redis).
type StatsEvent struct {
	Key     Key
	Scope   string
	Allowed bool

	At time.Time
}

// StatsStore é a estratégia de persistência para estatísticas do rate limit.
//
// O chamador trata erro como best-effort (não derruba a busca).
type StatsStore interface {
	Record(ctx context.Context, ev StatsEvent) error
}
