// Package application guarda o estado do cliente: leads salvos, contadores do painel,
// a sessão de busca paginada e o autocomplete com debounce.
package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"leadfinder/leads/domain"
)

// Book mantém os leads salvos e os contadores, gravando no KVStore a cada mudança.
type Book struct {
	mu       sync.Mutex
	kv       domain.KVStore
	saved    *domain.SavedLeads
	counters domain.Counters
	logger   *slog.Logger
}

func NewBook(kv domain.KVStore, logger *slog.Logger) *Book {
	if logger == nil {
		logger = slog.Default()
	}
	return &Book{kv: kv, saved: domain.NewSavedLeads(nil), logger: logger}
}

// Load lê o estado salvo. Conteúdo malformado é registrado e ignorado;
// só falhas do próprio armazenamento viram erro.
func (b *Book) Load(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	raw, err := b.get(ctx, domain.KeySavedLeads)
	if err != nil {
		return err
	}
	var leads []domain.Lead
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &leads); err != nil {
			b.logger.WarnContext(ctx, "failed to parse saved leads, starting empty", "error", err)
			leads = nil
		}
	}
	b.saved = domain.NewSavedLeads(leads)

	searches, err := b.getInt(ctx, domain.KeyTotalSearches)
	if err != nil {
		return err
	}
	found, err := b.getInt(ctx, domain.KeyTotalLeadsFound)
	if err != nil {
		return err
	}
	b.counters = domain.Counters{TotalSearches: searches, TotalLeadsFound: found}
	return nil
}

func (b *Book) get(ctx context.Context, key string) (string, error) {
	v, err := b.kv.Get(ctx, key)
	if errors.Is(err, domain.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load %s: %w", key, err)
	}
	return v, nil
}

func (b *Book) getInt(ctx context.Context, key string) (int, error) {
	raw, err := b.get(ctx, key)
	if err != nil || raw == "" {
		return 0, err
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		b.logger.WarnContext(ctx, "failed to parse counter, using 0", "key", key, "value", raw)
		return 0, nil
	}
	return n, nil
}

// Toggle salva ou remove o lead e devolve a mensagem de confirmação.
func (b *Book) Toggle(ctx context.Context, lead domain.Lead) (bool, string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	saved := b.saved.Toggle(lead)
	msg := fmt.Sprintf("Removed %s from saved leads", lead.Name)
	if saved {
		msg = fmt.Sprintf("Saved %s to your leads", lead.Name)
	}
	return saved, msg, b.persistLeads(ctx)
}

// Remove devolve false quando o id não estava salvo.
func (b *Book) Remove(ctx context.Context, id string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.saved.Remove(id) {
		return false, nil
	}
	return true, b.persistLeads(ctx)
}

func (b *Book) persistLeads(ctx context.Context) error {
	data, err := json.Marshal(b.saved.All())
	if err != nil {
		return err
	}
	return b.kv.Set(ctx, domain.KeySavedLeads, string(data))
}

func (b *Book) IsSaved(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.saved.Contains(id)
}

func (b *Book) Saved() []domain.Lead {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.saved.All()
}

func (b *Book) RecordSearch(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.counters.TotalSearches++
	return b.kv.Set(ctx, domain.KeyTotalSearches, strconv.Itoa(b.counters.TotalSearches))
}

func (b *Book) RecordFound(ctx context.Context, n int) error {
	if n <= 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.counters.TotalLeadsFound += n
	return b.kv.Set(ctx, domain.KeyTotalLeadsFound, strconv.Itoa(b.counters.TotalLeadsFound))
}

func (b *Book) Stats() domain.Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return domain.Stats{
		TotalSearches:   b.counters.TotalSearches,
		TotalLeadsFound: b.counters.TotalLeadsFound,
		SavedLeads:      b.saved.Len(),
	}
}
