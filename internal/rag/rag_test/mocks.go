package rag_test

import (
	"context"
	"strings"

	"github.com/akolanti/DocChat/internal/rag/llm"
)

// MockLLM implements llm.Provider
type MockLLM struct {
	OnGenerate func(ctx context.Context, model string, prompt llm.Prompt) (string, error)
}

func (m *MockLLM) Supports(model string) bool { return true }

func (m *MockLLM) Generate(ctx context.Context, model string, prompt llm.Prompt) (string, error) {
	if m.OnGenerate != nil {
		return m.OnGenerate(ctx, model, prompt)
	}
	// echo the first retrieved chunk so tests can see what was grounded
	_, rest, _ := strings.Cut(prompt.System, "Context:\n")
	lines := strings.Split(strings.TrimSpace(rest), "\n")
	if len(lines) > 1 {
		return strings.Join(lines[1:], " "), nil
	}
	return "I don't know", nil
}
