package openaiLLM

import (
	"context"
	"errors"

	"github.com/akolanti/DocChat/internal/config"
	"github.com/akolanti/DocChat/internal/customHttpClient"
	"github.com/akolanti/DocChat/internal/domain/chatModel"
	"github.com/akolanti/DocChat/internal/rag/llm"
	"github.com/akolanti/DocChat/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

var logger = logger_i.NewLogger("llm_openai")

type llmClient struct {
	api    openai.Client
	models map[string]bool
}

func NewOpenAIClient(apikey string, models []string, opts ...option.RequestOption) llm.Provider {
	opts = append([]option.RequestOption{
		option.WithAPIKey(apikey),
		option.WithHTTPClient(customHttpClient.Shared()),
	}, opts...)
	served := make(map[string]bool, len(models))
	for _, m := range models {
		served[m] = true
	}
	logger.Info("OpenAI client created", "models", models)
	return &llmClient{api: openai.NewClient(opts...), models: served}
}

func (c *llmClient) Supports(model string) bool {
	return c.models[model]
}

func (c *llmClient) Generate(ctx context.Context, model string, prompt llm.Prompt) (string, error) {
	log := logger.WithTrace(ctx, config.TRACE_ID_KEY).With("model", model)

	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(model),
		Messages:    toMessages(prompt),
		Temperature: openai.Float(float64(config.ModelTemperature)),
	})
	if err != nil {
		log.Error("OpenAI generation failed", "error", err)
		return "", err
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", errors.New("openai returned an empty answer")
	}
	return resp.Choices[0].Message.Content, nil
}

func toMessages(prompt llm.Prompt) []openai.ChatCompletionMessageParamUnion {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(prompt.History)+2)
	if prompt.System != "" {
		messages = append(messages, openai.SystemMessage(prompt.System))
	}
	for _, m := range prompt.History {
		if m.Role == chatModel.RoleAssistant {
			messages = append(messages, openai.AssistantMessage(m.Content))
		} else {
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}
	return append(messages, openai.UserMessage(prompt.User))
}
