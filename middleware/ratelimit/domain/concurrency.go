package domain

import (
	"context"
	"errors"
)

// ErrNoSlot indica que nenhuma vaga foi liberada antes do ctx encerrar.
var ErrNoSlot = errors.New("no concurrency slot available")

// SlotPool representa um recurso com capacidade finita (ex: requisições concorrentes).
//
// Acquire bloqueia até conseguir uma vaga ou até o ctx encerrar (ErrNoSlot).
// Ao adquirir, retorna uma função de release que deve ser chamada exatamente uma vez.
type SlotPool interface {
	Acquire(ctx context.Context) (release func(), err error)
}
