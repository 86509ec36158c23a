package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	places "leadfinder/places/domain"
)

const DefaultServerURL = "http://localhost:8080"

// APIError é uma resposta não-2xx do servidor. Message já é o texto para o usuário.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

func (e *APIError) UserMessage() string { return e.Message }

// SearchClient fala com /api/search e /api/autocomplete do leadfinder.
type SearchClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

type SearchClientOption func(*SearchClient)

func WithServerHTTPClient(c *http.Client) SearchClientOption {
	return func(s *SearchClient) { s.httpClient = c }
}

func WithClientLogger(l *slog.Logger) SearchClientOption {
	return func(s *SearchClient) { s.logger = l }
}

func NewSearchClient(baseURL string, opts ...SearchClientOption) *SearchClient {
	if baseURL == "" {
		baseURL = DefaultServerURL
	}
	s := &SearchClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SearchClient) Search(ctx context.Context, query, location, pageToken string) (places.SearchResult, error) {
	body, err := json.Marshal(map[string]string{"query": query, "location": location, "pageToken": pageToken})
	if err != nil {
		return places.SearchResult{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/search", bytes.NewReader(body))
	if err != nil {
		return places.SearchResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	var out places.SearchResult
	if err := s.do(req, &out); err != nil {
		return places.SearchResult{}, err
	}
	return out, nil
}

func (s *SearchClient) SuggestLocations(ctx context.Context, input string) ([]places.Suggestion, error) {
	u := s.baseURL + "/api/autocomplete?input=" + url.QueryEscape(input)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	var out []places.Suggestion
	if err := s.do(req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SearchClient) do(req *http.Request, out any) error {
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		var body struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(raw, &body) != nil || body.Message == "" {
			body.Message = http.StatusText(resp.StatusCode)
		}
		s.logger.Debug("server error", "path", req.URL.Path, "status", resp.StatusCode, "body", string(raw))
		return &APIError{Status: resp.StatusCode, Message: body.Message}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", req.URL.Path, err)
	}
	return nil
}
