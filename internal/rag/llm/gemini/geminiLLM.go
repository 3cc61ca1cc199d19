package gemini

import (
	"context"
	"errors"
	"fmt"

	"github.com/akolanti/DocChat/internal/config"
	"github.com/akolanti/DocChat/internal/customHttpClient"
	"github.com/akolanti/DocChat/internal/domain/chatModel"
	"github.com/akolanti/DocChat/internal/rag/llm"
	"github.com/akolanti/DocChat/pkg/logger_i"
	"google.golang.org/genai"
)

var logger = logger_i.NewLogger("llm_gemini")

type llmClient struct {
	client *genai.Client
	models map[string]bool
}

func NewGeminiClient(ctx context.Context, apikey string, models ...string) (llm.Provider, error) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apikey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: customHttpClient.Shared(),
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	served := make(map[string]bool, len(models))
	for _, m := range models {
		served[m] = true
	}
	logger.Info("Gemini client created", "models", models)
	return &llmClient{client: c, models: served}, nil
}

func (c *llmClient) Supports(model string) bool {
	return c.models[model]
}

func (c *llmClient) Generate(ctx context.Context, model string, prompt llm.Prompt) (string, error) {
	log := logger.WithTrace(ctx, config.TRACE_ID_KEY).With("model", model)

	contentConfig := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(config.ModelTemperature),
	}
	if prompt.System != "" {
		contentConfig.SystemInstruction = genai.NewContentFromText(prompt.System, genai.RoleUser)
	}

	result, err := c.client.Models.GenerateContent(ctx, model, toContents(prompt), contentConfig)
	if err != nil {
		log.Error("Gemini generation failed", "error", err)
		return "", err
	}
	if result == nil {
		return "", errors.New("gemini returned no result")
	}
	text := result.Text()
	if text == "" {
		return "", errors.New("gemini returned an empty answer")
	}
	return text, nil
}

func toContents(prompt llm.Prompt) []*genai.Content {
	contents := make([]*genai.Content, 0, len(prompt.History)+1)
	for _, m := range prompt.History {
		role := genai.Role(genai.RoleUser)
		if m.Role == chatModel.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}
	return append(contents, genai.NewContentFromText(prompt.User, genai.RoleUser))
}
