// Package insight generates AI feedback on user input, enriched with
// retrieved past contexts (RAG).
package insight

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pai-labs/engine/internal/memory"
)

const (
	// ragTopK is how many past contexts are retrieved per insight.
	ragTopK = 3

	// ragMinSimilarity filters retrieved contexts; below this they add noise.
	ragMinSimilarity = 0.7

	systemPrompt = "You are PAI, an AI partner who deeply understands the user's context."
)

// ErrGeneration marks failures of the text generation provider.
var ErrGeneration = errors.New("insight generation failed")

// GenerationError wraps err as a generation failure.
func GenerationError(err error) error {
	return fmt.Errorf("%w: %w", ErrGeneration, err)
}

// TextGenerator produces a completion for a prompt. Implemented by the
// Anthropic client; tests substitute fakes.
type TextGenerator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
	Model() string
}

// Insight is the result of one RAG generation.
type Insight struct {
	Insight     string   `json:"insight"`
	ContextUsed []string `json:"context_used"`
	ModelUsed   string   `json:"model_used"`
}

// Service retrieves relevant memories and generates contextual insights.
type Service struct {
	memories  *memory.Store
	generator TextGenerator
	logger    *slog.Logger
}

// NewService creates an insight service.
func NewService(memories *memory.Store, generator TextGenerator, logger *slog.Logger) *Service {
	return &Service{memories: memories, generator: generator, logger: logger}
}

// Generate searches past contexts similar to input, builds the RAG prompt,
// and generates an insight. A memory search failure degrades to generation
// without memories; a generator failure is returned as ErrGeneration.
func (s *Service) Generate(ctx context.Context, input string) (Insight, error) {
	var contexts []string
	memories, err := s.memories.Search(ctx, input, ragTopK)
	if err != nil {
		s.logger.Warn("memory search failed, generating without context", "error", err)
	} else {
		for _, m := range memories {
			if m.Similarity > ragMinSimilarity && m.Text != "" {
				contexts = append(contexts, m.Text)
			}
		}
	}

	prompt := buildPrompt(input, contexts)
	text, err := s.generator.Generate(ctx, systemPrompt, prompt)
	if err != nil {
		return Insight{}, GenerationError(err)
	}

	s.logger.Info("insight generated",
		"context_references", len(contexts),
		"model", s.generator.Model(),
	)
	if contexts == nil {
		contexts = []string{}
	}
	return Insight{
		Insight:     text,
		ContextUsed: contexts,
		ModelUsed:   s.generator.Model(),
	}, nil
}

func buildPrompt(input string, contexts []string) string {
	memoryText := "No relevant past memories found."
	if len(contexts) > 0 {
		memoryText = strings.Join(contexts, "\n")
	}

	var b strings.Builder
	b.WriteString("[User's Past Concerns/Interests (Memory)]\n")
	b.WriteString(memoryText)
	b.WriteString("\n\n[Current Input]\n")
	b.WriteString(input)
	b.WriteString("\n\n[Instructions]\n")
	b.WriteString("Please provide insightful feedback on the current input, referencing the 'past memories' above.\n")
	b.WriteString("If there are connections to previous concerns, mention those relationships.")
	return b.String()
}
