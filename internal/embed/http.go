package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	DefaultHTTPHost    = "http://localhost:11434"
	DefaultHTTPModel   = "nomic-embed-text"
	DefaultHTTPTimeout = 30 * time.Second
	httpMaxRetries     = 3
)

// HTTPConfig configures the Ollama-style HTTP embedding backend.
type HTTPConfig struct {
	Host            string
	Model           string
	Timeout         time.Duration
	SkipHealthCheck bool // for tests against a fake server
	Dimensions      int
}

func DefaultHTTPConfig() HTTPConfig {
	return HTTPConfig{
		Host:    DefaultHTTPHost,
		Model:   DefaultHTTPModel,
		Timeout: DefaultHTTPTimeout,
	}
}

type httpEmbedRequest struct {
	Model string `json:"model"`
	Input any    `json:"input"`
}

type httpEmbedResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
}

// HTTPEmbedder calls an Ollama-compatible /api/embed endpoint.
type HTTPEmbedder struct {
	client *http.Client
	cfg    HTTPConfig
	dims   int

	mu     sync.RWMutex
	closed bool
}

var _ Embedder = (*HTTPEmbedder)(nil)

// NewHTTPEmbedder dials the backend and (unless SkipHealthCheck) probes
// it once to discover the embedding dimension.
func NewHTTPEmbedder(ctx context.Context, cfg HTTPConfig) (*HTTPEmbedder, error) {
	if cfg.Host == "" {
		cfg.Host = DefaultHTTPHost
	}
	if cfg.Model == "" {
		cfg.Model = DefaultHTTPModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultHTTPTimeout
	}

	e := &HTTPEmbedder{
		client: &http.Client{Timeout: cfg.Timeout},
		cfg:    cfg,
		dims:   cfg.Dimensions,
	}

	if !cfg.SkipHealthCheck {
		embeddings, err := e.doEmbed(ctx, []string{"dimension probe"})
		if err != nil {
			return nil, fmt.Errorf("embedding backend unavailable at %s: %w", cfg.Host, err)
		}
		if len(embeddings) == 0 || len(embeddings[0]) == 0 {
			return nil, fmt.Errorf("embedding backend at %s returned an empty vector", cfg.Host)
		}
		e.dims = len(embeddings[0])
	}
	if e.dims == 0 {
		e.dims = DefaultDimensions
	}
	return e, nil
}

func (e *HTTPEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.mu.RLock()
	closed := e.closed
	e.mu.RUnlock()
	if closed {
		return nil, fmt.Errorf("embedder is closed")
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return make([]float32, e.dims), nil
	}
	embeddings, err := e.doEmbedWithRetry(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}
	return embeddings[0], nil
}

func (e *HTTPEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	e.mu.RLock()
	closed := e.closed
	e.mu.RUnlock()
	if closed {
		return nil, fmt.Errorf("embedder is closed")
	}
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	results := make([][]float32, len(texts))
	var nonEmptyIdx []int
	var nonEmptyTexts []string
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			results[i] = make([]float32, e.dims)
		} else {
			nonEmptyIdx = append(nonEmptyIdx, i)
			nonEmptyTexts = append(nonEmptyTexts, text)
		}
	}
	if len(nonEmptyTexts) == 0 {
		return results, nil
	}

	for start := 0; start < len(nonEmptyTexts); start += DefaultBatchSize {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		end := start + DefaultBatchSize
		if end > len(nonEmptyTexts) {
			end = len(nonEmptyTexts)
		}
		embeddings, err := e.doEmbedWithRetry(ctx, nonEmptyTexts[start:end])
		if err != nil {
			return nil, fmt.Errorf("embedding batch: %w", err)
		}
		for i, emb := range embeddings {
			results[nonEmptyIdx[start+i]] = emb
		}
	}
	return results, nil
}

func (e *HTTPEmbedder) doEmbedWithRetry(ctx context.Context, texts []string) ([][]float32, error) {
	var lastErr error
	for attempt := 0; attempt < httpMaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		if attempt > 0 {
			backoff := time.Duration(100<<attempt) * time.Millisecond
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}
		embeddings, err := e.doEmbed(ctx, texts)
		if err == nil {
			return embeddings, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	return nil, fmt.Errorf("failed after %d attempts: %w", httpMaxRetries, lastErr)
}

func (e *HTTPEmbedder) doEmbed(ctx context.Context, texts []string) ([][]float32, error) {
	url := e.cfg.Host + "/api/embed"

	var input any = texts
	if len(texts) == 1 {
		input = texts[0]
	}

	body, err := json.Marshal(httpEmbedRequest{Model: e.cfg.Model, Input: input})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("connecting to embedding backend: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("embedding request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var result httpEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	embeddings := make([][]float32, len(result.Embeddings))
	for i, emb := range result.Embeddings {
		v := make([]float32, len(emb))
		for j, val := range emb {
			v[j] = float32(val)
		}
		embeddings[i] = normalizeVector(v)
	}
	return embeddings, nil
}

func (e *HTTPEmbedder) Dimensions() int  { return e.dims }
func (e *HTTPEmbedder) ModelName() string { return e.cfg.Model }

func (e *HTTPEmbedder) Available(ctx context.Context) bool {
	e.mu.RLock()
	closed := e.closed
	e.mu.RUnlock()
	if closed {
		return false
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.cfg.Host+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	return resp.StatusCode == http.StatusOK
}

func (e *HTTPEmbedder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}
