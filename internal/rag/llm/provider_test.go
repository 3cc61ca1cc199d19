package llm

import (
	"context"
	"testing"
)

type stubProvider struct {
	models map[string]bool
	reply  string
}

func (s stubProvider) Supports(model string) bool { return s.models[model] }

func (s stubProvider) Generate(ctx context.Context, model string, prompt Prompt) (string, error) {
	return s.reply + ":" + model, nil
}

func TestRouter(t *testing.T) {
	r := NewRouter(
		stubProvider{models: map[string]bool{"gpt-4o": true}, reply: "openai"},
		nil,
		stubProvider{models: map[string]bool{"gemini": true}, reply: "google"},
	)

	tests := []struct {
		model string
		want  string
		ok    bool
	}{
		{"gpt-4o", "openai:gpt-4o", true},
		{"gemini", "google:gemini", true},
		{"llama", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			if r.Supports(tt.model) != tt.ok {
				t.Fatalf("Supports(%q) = %v", tt.model, !tt.ok)
			}
			got, err := r.Generate(context.Background(), tt.model, Prompt{User: "hi"})
			if tt.ok && (err != nil || got != tt.want) {
				t.Fatalf("Generate = %q, %v", got, err)
			}
			if !tt.ok && err == nil {
				t.Fatal("expected error for unsupported model")
			}
		})
	}
}
