package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"leadfinder/places/domain"

	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://places.googleapis.com/v1"

	DefaultTimeout = 15 * time.Second

	// DefaultRateLimit limita as chamadas de saída (req/s) deste processo ao diretório.
	DefaultRateLimit = 10

	searchFieldMask = "places.id,places.displayName,places.formattedAddress," +
		"places.nationalPhoneNumber,places.websiteUri,places.rating,places.userRatingCount," +
		"places.googleMapsUri,places.types,places.location,nextPageToken"

	// corpo de erro guardado no log; o resto é descartado
	maxErrorBody = 4 << 10
)

// Client fala com o diretório. Não faz retry: a política é do chamador.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
	limiter    *rate.Limiter
}

type ClientOption func(*Client)

func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) { c.baseURL = strings.TrimRight(baseURL, "/") }
}

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = httpClient }
}

func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) { c.logger = logger }
}

// WithRateLimit define o ritmo de saída; <= 0 desliga.
func WithRateLimit(requestsPerSecond float64) ClientOption {
	return func(c *Client) {
		if requestsPerSecond <= 0 {
			c.limiter = nil
			return
		}
		burst := int(requestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
	}
}

// NewClient cria o client. apiKey vazio é aceito aqui e vira ErrConfiguration em cada chamada.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		apiKey:     strings.TrimSpace(apiKey),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     slog.Default(),
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Configured() bool { return c.apiKey != "" }

// post envia body como JSON para {base}/{method} e decodifica a resposta em out.
func (c *Client) post(ctx context.Context, op, method, fieldMask string, body, out interface{}) error {
	if c.apiKey == "" {
		return domain.ErrConfiguration
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &domain.TransportError{Op: op, Err: err}
		}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("places: encode %s request: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+method, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("places: build %s request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.apiKey)
	if fieldMask != "" {
		req.Header.Set("X-Goog-FieldMask", fieldMask)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domain.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	c.logger.DebugContext(ctx, "places request",
		"op", op, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		upErr := &domain.UpstreamError{Status: resp.StatusCode, Message: upstreamMessage(raw, resp.Status)}
		c.logger.ErrorContext(ctx, "places API error",
			"op", op, "status", resp.StatusCode, "body", string(raw))
		return upErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &domain.TransportError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// upstreamMessage extrai error.message do corpo padrão do Google; senão usa o status HTTP.
func upstreamMessage(raw []byte, status string) string {
	var body struct {
		Error struct {
			Message string `json:"message"`
			Status  string `json:"status"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Error.Message != "" {
		if body.Error.Status != "" {
			return body.Error.Status + ": " + body.Error.Message
		}
		return body.Error.Message
	}
	return status
}
