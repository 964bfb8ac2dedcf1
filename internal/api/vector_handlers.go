package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/pai-labs/engine/internal/validate"
	"github.com/pai-labs/engine/internal/vector"
)

// previewLength is the number of vector elements returned by /vectorize.
const previewLength = 5

// VectorHandlers holds dependencies for embedding HTTP handlers.
type VectorHandlers struct {
	embedder vector.Embedder
}

// NewVectorHandlers creates a new VectorHandlers instance.
func NewVectorHandlers(embedder vector.Embedder) *VectorHandlers {
	return &VectorHandlers{embedder: embedder}
}

// TextRequest is the shared request body for text-input endpoints.
type TextRequest struct {
	Text string `json:"text"`
}

// VectorizeResponse represents the response for POST /api/v1/vectorize.
// Preview carries the first few vector elements; the full vector is never
// returned to keep responses small.
type VectorizeResponse struct {
	Dimension int       `json:"dimension"`
	Preview   []float32 `json:"preview"`
}

// Vectorize handles POST /api/v1/vectorize - embeds text and returns the
// vector dimension plus a short preview.
func (h *VectorHandlers) Vectorize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteError(w, r, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
		return
	}

	text, ok := decodeTextRequest(w, r)
	if !ok {
		return
	}

	vec, err := h.embedder.Embed(r.Context(), text)
	if err != nil {
		slog.ErrorContext(r.Context(), "embedding failed", "error", err)
		WriteError(w, r, http.StatusBadGateway, ErrCodeEmbedding, "Failed to generate embedding")
		return
	}

	preview := vec
	if len(preview) > previewLength {
		preview = preview[:previewLength]
	}

	writeJSON(w, r, http.StatusOK, VectorizeResponse{
		Dimension: len(vec),
		Preview:   preview,
	})
}

// decodeTextRequest decodes and sanitizes the {"text": ...} request body.
// On failure it writes a validation_error response and returns ok=false.
func decodeTextRequest(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req TextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, ErrCodeValidation, "Invalid JSON body")
		return "", false
	}

	text, err := validate.TextInput(req.Text)
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, ErrCodeValidation, "text must be 1-10000 characters")
		return "", false
	}
	return text, true
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.ErrorContext(r.Context(), "failed to encode response", "error", err)
	}
}

// errorStatusFor maps collaborator failures to an API error code and status.
// The status always follows from the code via StatusCodeMapping.
func errorStatusFor(err error) (int, string, string) {
	var code, message string
	switch {
	case errors.Is(err, vector.ErrEmbedding):
		code, message = ErrCodeEmbedding, "Failed to generate embedding"
	case errors.Is(err, vector.ErrIndex):
		code, message = ErrCodeVectorDB, "Vector index operation failed"
	default:
		code, message = ErrCodeInternal, "Internal server error"
	}
	return StatusCodeMapping(code), code, message
}
