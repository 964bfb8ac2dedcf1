package api

import (
	"log/slog"
	"net/http"

	"github.com/pai-labs/engine/internal/insight"
)

// InsightHandlers holds dependencies for AI insight HTTP handlers.
type InsightHandlers struct {
	service *insight.Service
}

// NewInsightHandlers creates a new InsightHandlers instance.
func NewInsightHandlers(service *insight.Service) *InsightHandlers {
	return &InsightHandlers{service: service}
}

// Insight handles POST /api/v1/insight - generates an AI insight for the
// current input, referencing relevant stored memories.
func (h *InsightHandlers) Insight(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteError(w, r, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
		return
	}

	text, ok := decodeTextRequest(w, r)
	if !ok {
		return
	}

	result, err := h.service.Generate(r.Context(), text)
	if err != nil {
		slog.ErrorContext(r.Context(), "insight generation failed", "error", err)
		WriteError(w, r, http.StatusBadGateway, ErrCodeGeneration, "Failed to generate insight")
		return
	}

	writeJSON(w, r, http.StatusOK, result)
}
