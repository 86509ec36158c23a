package application

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
	"unicode/utf8"

	places "leadfinder/places/domain"
)

const (
	DefaultDebounce = 500 * time.Millisecond
	MinInputLength  = 3
)

// ErrSuperseded indica que uma chamada mais nova chegou durante o debounce.
var ErrSuperseded = errors.New("leads: autocomplete superseded")

type Autocompleter struct {
	suggester places.LocationSuggester
	delay     time.Duration
	minLen    int
	logger    *slog.Logger
	seq       atomic.Uint64
}

type AutocompleteOption func(*Autocompleter)

func WithDebounce(d time.Duration) AutocompleteOption {
	return func(a *Autocompleter) { a.delay = d }
}

func WithAutocompleteLogger(l *slog.Logger) AutocompleteOption {
	return func(a *Autocompleter) { a.logger = l }
}

func NewAutocompleter(s places.LocationSuggester, opts ...AutocompleteOption) *Autocompleter {
	a := &Autocompleter{suggester: s, delay: DefaultDebounce, minLen: MinInputLength, logger: slog.Default()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Suggest espera o debounce e consulta o servidor. Cada chamada cancela a pendente
// anterior (que recebe ErrSuperseded). Entradas curtas devolvem lista vazia sem consulta.
// Falhas do servidor também viram lista vazia.
func (a *Autocompleter) Suggest(ctx context.Context, input string) ([]places.Suggestion, error) {
	mine := a.seq.Add(1)

	input = strings.TrimSpace(input)
	if utf8.RuneCountInString(input) < a.minLen {
		return []places.Suggestion{}, nil
	}

	if a.delay > 0 {
		t := time.NewTimer(a.delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-t.C:
		}
	}
	if a.seq.Load() != mine {
		return nil, ErrSuperseded
	}

	out, err := a.suggester.SuggestLocations(ctx, input)
	if a.seq.Load() != mine {
		return nil, ErrSuperseded
	}
	if err != nil {
		a.logger.DebugContext(ctx, "autocomplete failed", "input", input, "error", err)
		return []places.Suggestion{}, nil
	}
	if out == nil {
		out = []places.Suggestion{}
	}
	return out, nil
}
