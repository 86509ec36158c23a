package application

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"leadfinder/leads/domain"
	places "leadfinder/places/domain"
)

// ErrStale indica uma resposta que chegou depois de uma busca mais nova; o estado não muda.
var ErrStale = errors.New("leads: response superseded by a newer search")

type State int

const (
	Idle State = iota
	Searching
	Results
	LoadingMore
)

func (s State) String() string {
	switch s {
	case Searching:
		return "searching"
	case Results:
		return "results"
	case LoadingMore:
		return "loading_more"
	default:
		return "idle"
	}
}

// Searcher é o servidor visto do cliente (infra.SearchClient, ou o orquestrador direto).
type Searcher interface {
	Search(ctx context.Context, query, location, pageToken string) (places.SearchResult, error)
}

// Snapshot é uma cópia do que está visível.
type Snapshot struct {
	State    State
	Query    string
	Location string
	Results  []domain.Lead
	HasMore  bool
	Err      string
}

// Session é a busca corrente do cliente: uma query, seus resultados acumulados e o
// token da próxima página. A chamada ao Searcher acontece fora do lock.
type Session struct {
	searcher Searcher
	book     *Book
	logger   *slog.Logger

	mu       sync.Mutex
	gen      uint64
	state    State
	query    string
	location string
	token    string
	results  []domain.Lead
	errMsg   string
}

// NewSession cria uma sessão. book pode ser nil (sem contadores).
func NewSession(searcher Searcher, book *Book, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{searcher: searcher, book: book, logger: logger}
}

// Submit começa uma busca nova: descarta resultados e token anteriores.
func (s *Session) Submit(ctx context.Context, query, location string) (Snapshot, error) {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.state = Searching
	s.query, s.location = query, location
	s.token = ""
	s.results = nil
	s.errMsg = ""
	s.mu.Unlock()

	if s.book != nil {
		if err := s.book.RecordSearch(ctx); err != nil {
			s.logger.WarnContext(ctx, "failed to persist search counter", "error", err)
		}
	}

	res, err := s.searcher.Search(ctx, query, location, "")

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return s.snapshotLocked(), ErrStale
	}
	if err != nil {
		s.logger.DebugContext(ctx, "search failed", "query", query, "location", location, "error", err)
		s.state = Idle
		s.errMsg = MessageFor(err)
		return s.snapshotLocked(), err
	}

	s.results = cloneLeads(res.Places)
	s.token = res.NextPageToken
	s.state = Results
	s.recordFound(ctx, len(res.Places))
	return s.snapshotLocked(), nil
}

// LoadMore busca a próxima página da query corrente e acrescenta aos resultados.
// Devolve false sem chamar o servidor quando não há token ou já há requisição em curso.
// Em caso de falha os resultados ficam como estavam e a paginação para.
func (s *Session) LoadMore(ctx context.Context) (bool, error) {
	s.mu.Lock()
	if s.state != Results || s.token == "" {
		s.mu.Unlock()
		return false, nil
	}
	gen := s.gen
	query, location, token := s.query, s.location, s.token
	s.state = LoadingMore
	s.mu.Unlock()

	res, err := s.searcher.Search(ctx, query, location, token)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return true, ErrStale
	}
	s.state = Results
	if err != nil {
		s.logger.DebugContext(ctx, "load more failed", "query", query, "error", err)
		s.token = ""
		s.errMsg = MessageFor(err)
		return true, err
	}

	s.results = append(s.results, cloneLeads(res.Places)...)
	s.token = res.NextPageToken
	s.errMsg = ""
	s.recordFound(ctx, len(res.Places))
	return true, nil
}

func (s *Session) recordFound(ctx context.Context, n int) {
	if s.book == nil {
		return
	}
	if err := s.book.RecordFound(ctx, n); err != nil {
		s.logger.WarnContext(ctx, "failed to persist leads counter", "error", err)
	}
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		State:    s.state,
		Query:    s.query,
		Location: s.location,
		Results:  cloneLeads(s.results),
		HasMore:  s.token != "",
		Err:      s.errMsg,
	}
}

// Result devolve o n-ésimo resultado visível (base 1), como o shell mostra.
func (s *Session) Result(n int) (domain.Lead, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n < 1 || n > len(s.results) {
		return domain.Lead{}, false
	}
	return s.results[n-1].Clone(), true
}

func cloneLeads(in []places.Business) []domain.Lead {
	if in == nil {
		return nil
	}
	out := make([]domain.Lead, len(in))
	for i, b := range in {
		out[i] = b.Clone()
	}
	return out
}

// MessageFor é a mensagem mostrada ao usuário para um erro de busca.
func MessageFor(err error) string {
	var um interface{ UserMessage() string }
	if errors.As(err, &um) {
		if msg := um.UserMessage(); msg != "" {
			return msg
		}
	}
	return places.UserMessage(err)
}
