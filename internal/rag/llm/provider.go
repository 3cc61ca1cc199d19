package llm

import (
	"context"
	"fmt"

	"github.com/akolanti/DocChat/internal/domain/chatModel"
)

// Prompt is a provider-neutral chat request: a system instruction, prior messages and the new user turn.
type Prompt struct {
	System  string
	History []chatModel.Message
	User    string
}

type Provider interface {
	Generate(ctx context.Context, model string, prompt Prompt) (string, error)
	Supports(model string) bool
}

// Router sends each request to the first provider that serves the model.
type Router struct {
	providers []Provider
}

func NewRouter(providers ...Provider) *Router {
	return &Router{providers: providers}
}

func (r *Router) Supports(model string) bool {
	return r.pick(model) != nil
}

func (r *Router) Generate(ctx context.Context, model string, prompt Prompt) (string, error) {
	p := r.pick(model)
	if p == nil {
		return "", fmt.Errorf("no provider configured for model %q", model)
	}
	return p.Generate(ctx, model, prompt)
}

func (r *Router) pick(model string) Provider {
	for _, p := range r.providers {
		if p != nil && p.Supports(model) {
			return p
		}
	}
	return nil
}
