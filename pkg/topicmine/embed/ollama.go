package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/cognicore/topicmine/pkg/topicmine/internalerr"
)

// Ollama defaults
const (
	DefaultOllamaEndpoint = "http://localhost:11434"
	DefaultOllamaModel    = "all-minilm"
)

// OllamaEmbedder generates embeddings via a local Ollama server.
type OllamaEmbedder struct {
	endpoint string       // e.g., "http://localhost:11434"
	model    string       // e.g., "all-minilm"
	client   *http.Client // HTTP client for requests
	limiter  *rate.Limiter
}

// OllamaOptions configures an OllamaEmbedder
type OllamaOptions struct {
	Endpoint string
	Model    string
	Timeout  time.Duration
	// RequestsPerSecond paces calls to the server; 0 means unlimited.
	RequestsPerSecond float64
}

// ollamaTagsResponse represents the response from GET /api/tags.
type ollamaTagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// ollamaEmbedRequest represents the request body for POST /api/embed.
type ollamaEmbedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// ollamaEmbedResponse represents the response from POST /api/embed.
type ollamaEmbedResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
}

// NewOllamaEmbedder creates a new OllamaEmbedder.
func NewOllamaEmbedder(opts OllamaOptions) *OllamaEmbedder {
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultOllamaEndpoint
	}
	if opts.Model == "" {
		opts.Model = DefaultOllamaModel
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}
	return &OllamaEmbedder{
		endpoint: opts.Endpoint,
		model:    opts.Model,
		client:   &http.Client{Timeout: opts.Timeout},
		limiter:  limiter,
	}
}

// Available returns true if the Ollama server is reachable and has the model.
func (e *OllamaEmbedder) Available(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.endpoint+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false
	}

	var tags ollamaTagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return false
	}
	// "all-minilm" should match "all-minilm:latest"
	for _, m := range tags.Models {
		if m.Name == e.model || m.Name == e.model+":latest" {
			return true
		}
	}
	return false
}

// Embed implements Embedder.
func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	vecs, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch implements BatchEmbedder with a single /api/embed call.
func (e *OllamaEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("embed: rate limit wait: %w", err)
	}

	body, err := json.Marshal(ollamaEmbedRequest{Model: e.model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("embed: failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint+"/api/embed", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("embed: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("embed: request cancelled: %w", ctx.Err())
		}
		return nil, fmt.Errorf("embed: request failed: %v: %w", err, internalerr.ErrBackendUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("embed: ollama returned status %d: %s: %w", resp.StatusCode, string(msg), internalerr.ErrBackendUnavailable)
	}

	var out ollamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("embed: failed to parse response: %w", err)
	}
	if len(out.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embed: ollama returned %d embeddings for %d inputs", len(out.Embeddings), len(texts))
	}
	return out.Embeddings, nil
}

// Close releases idle connections.
func (e *OllamaEmbedder) Close() error {
	e.client.CloseIdleConnections()
	return nil
}
