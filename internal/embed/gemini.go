// Package embed provides text embedding clients for the vector index.
package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/pai-labs/engine/internal/vector"
)

const (
	// defaultBaseURL is the Gemini generative language API endpoint.
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	// DefaultModel is the embedding model used when none is configured.
	DefaultModel = "text-embedding-004"

	// DefaultDimensions is the output dimensionality of text-embedding-004.
	DefaultDimensions = 768

	requestTimeout = 30 * time.Second
)

// GeminiEmbedder produces text embeddings via the Gemini embedContent API.
// It implements vector.Embedder.
type GeminiEmbedder struct {
	apiKey     string
	model      string
	baseURL    string
	dimensions int
	client     *http.Client
	logger     *slog.Logger
}

// GeminiOption configures a GeminiEmbedder.
type GeminiOption func(*GeminiEmbedder)

// WithModel overrides the embedding model.
func WithModel(model string) GeminiOption {
	return func(e *GeminiEmbedder) {
		if model != "" {
			e.model = model
		}
	}
}

// WithBaseURL overrides the API endpoint. Used in tests.
func WithBaseURL(url string) GeminiOption {
	return func(e *GeminiEmbedder) {
		if url != "" {
			e.baseURL = url
		}
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) GeminiOption {
	return func(e *GeminiEmbedder) {
		if client != nil {
			e.client = client
		}
	}
}

// NewGeminiEmbedder creates an embedder backed by the Gemini API.
func NewGeminiEmbedder(apiKey string, logger *slog.Logger, opts ...GeminiOption) *GeminiEmbedder {
	e := &GeminiEmbedder{
		apiKey:     apiKey,
		model:      DefaultModel,
		baseURL:    defaultBaseURL,
		dimensions: DefaultDimensions,
		client:     &http.Client{Timeout: requestTimeout},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type embedContentRequest struct {
	Model   string       `json:"model"`
	Content embedContent `json:"content"`
}

type embedContent struct {
	Parts []embedPart `json:"parts"`
}

type embedPart struct {
	Text string `json:"text"`
}

type embedContentResponse struct {
	Embedding struct {
		Values []float32 `json:"values"`
	} `json:"embedding"`
}

type geminiErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Embed returns the embedding vector for text. Failures are wrapped so
// callers can distinguish embedding errors from index errors.
func (e *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, vector.EmbeddingError(fmt.Errorf("empty text"))
	}

	body, err := json.Marshal(embedContentRequest{
		Model:   "models/" + e.model,
		Content: embedContent{Parts: []embedPart{{Text: text}}},
	})
	if err != nil {
		return nil, vector.EmbeddingError(fmt.Errorf("encode request: %w", err))
	}

	url := fmt.Sprintf("%s/models/%s:embedContent", e.baseURL, e.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, vector.EmbeddingError(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, vector.EmbeddingError(fmt.Errorf("call embedding api: %w", err))
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, vector.EmbeddingError(fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr geminiErrorResponse
		if json.Unmarshal(payload, &apiErr) == nil && apiErr.Error.Message != "" {
			return nil, vector.EmbeddingError(fmt.Errorf("embedding api status %d: %s", resp.StatusCode, apiErr.Error.Message))
		}
		return nil, vector.EmbeddingError(fmt.Errorf("embedding api status %d", resp.StatusCode))
	}

	var parsed embedContentResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return nil, vector.EmbeddingError(fmt.Errorf("decode response: %w", err))
	}
	if len(parsed.Embedding.Values) == 0 {
		return nil, vector.EmbeddingError(fmt.Errorf("empty embedding in response"))
	}

	return parsed.Embedding.Values, nil
}

// Dimensions returns the embedding dimensionality.
func (e *GeminiEmbedder) Dimensions() int {
	return e.dimensions
}
