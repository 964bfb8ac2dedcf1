package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/pai-labs/engine/internal/memory"
	"github.com/pai-labs/engine/internal/validate"
)

// MemoryHandlers holds dependencies for user context memory HTTP handlers.
type MemoryHandlers struct {
	store *memory.Store
}

// NewMemoryHandlers creates a new MemoryHandlers instance.
func NewMemoryHandlers(store *memory.Store) *MemoryHandlers {
	return &MemoryHandlers{store: store}
}

// SaveContextResponse represents the response for POST /api/v1/context.
type SaveContextResponse struct {
	ID string `json:"id"`
}

// SearchRequest represents the request body for POST /api/v1/search.
type SearchRequest struct {
	Text string `json:"text"`
	TopK int    `json:"top_k"`
}

// SearchResponse represents the response for POST /api/v1/search.
type SearchResponse struct {
	Results []memory.Memory `json:"results"`
	Count   int             `json:"count"`
}

// SaveContext handles POST /api/v1/context - embeds and stores a user memory.
func (h *MemoryHandlers) SaveContext(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteError(w, r, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
		return
	}

	text, ok := decodeTextRequest(w, r)
	if !ok {
		return
	}

	id, err := h.store.Save(r.Context(), text)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to save context", "error", err)
		status, code, message := errorStatusFor(err)
		WriteError(w, r, status, code, message)
		return
	}

	writeJSON(w, r, http.StatusCreated, SaveContextResponse{ID: id})
}

// Search handles POST /api/v1/search - retrieves similar stored memories.
func (h *MemoryHandlers) Search(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteError(w, r, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
		return
	}

	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, ErrCodeValidation, "Invalid JSON body")
		return
	}

	text, err := validate.TextInput(req.Text)
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, ErrCodeValidation, "text must be 1-10000 characters")
		return
	}

	// Explicit out-of-range top_k is rejected; absent (zero) falls back to
	// the store's default.
	if req.TopK < 0 || req.TopK > memory.MaxSearchTopK {
		WriteError(w, r, http.StatusBadRequest, ErrCodeValidation, "top_k must be between 1 and 20")
		return
	}

	results, err := h.store.Search(r.Context(), text, req.TopK)
	if err != nil {
		slog.ErrorContext(r.Context(), "memory search failed", "error", err)
		status, code, message := errorStatusFor(err)
		WriteError(w, r, status, code, message)
		return
	}

	writeJSON(w, r, http.StatusOK, SearchResponse{
		Results: results,
		Count:   len(results),
	})
}
