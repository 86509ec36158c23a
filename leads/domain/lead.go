// Package domain define os leads salvos no cliente e os contadores do painel.
package domain

import (
	"context"
	"errors"

	places "leadfinder/places/domain"
)

// Chaves do armazenamento local.
const (
	KeySavedLeads      = "savedLeads"
	KeyTotalSearches   = "totalSearches"
	KeyTotalLeadsFound = "totalLeadsFound"
)

var ErrKeyNotFound = errors.New("leads: key not found")

// KVStore guarda strings por chave. Implementações: BadgerKV, MemoryKV.
type KVStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// Lead é uma cópia independente de um estabelecimento salvo.
type Lead = places.Business

// SavedLeads é um conjunto ordenado de leads, sem repetição de ID.
// Não é seguro para uso concorrente; quem compartilha protege.
type SavedLeads struct {
	items []Lead
}

func NewSavedLeads(leads []Lead) *SavedLeads {
	s := &SavedLeads{}
	for _, l := range leads {
		if !s.Contains(l.ID) {
			s.items = append(s.items, l.Clone())
		}
	}
	return s
}

func (s *SavedLeads) index(id string) int {
	for i, l := range s.items {
		if l.ID == id {
			return i
		}
	}
	return -1
}

func (s *SavedLeads) Contains(id string) bool { return s.index(id) >= 0 }

// Toggle salva b se ainda não estiver salvo, senão remove. Devolve true quando salvou.
func (s *SavedLeads) Toggle(b Lead) bool {
	if s.Remove(b.ID) {
		return false
	}
	s.items = append(s.items, b.Clone())
	return true
}

func (s *SavedLeads) Remove(id string) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return true
}

func (s *SavedLeads) Get(id string) (Lead, bool) {
	i := s.index(id)
	if i < 0 {
		return Lead{}, false
	}
	return s.items[i].Clone(), true
}

func (s *SavedLeads) Len() int { return len(s.items) }

// All devolve cópias, na ordem em que foram salvos.
func (s *SavedLeads) All() []Lead {
	out := make([]Lead, len(s.items))
	for i, l := range s.items {
		out[i] = l.Clone()
	}
	return out
}

type Counters struct {
	TotalSearches   int
	TotalLeadsFound int
}

// Stats é o que o painel mostra.
type Stats struct {
	TotalSearches   int `json:"totalSearches"`
	TotalLeadsFound int `json:"totalLeadsFound"`
	SavedLeads      int `json:"savedLeads"`
}
