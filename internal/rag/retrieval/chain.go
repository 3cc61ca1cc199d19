package retrieval

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/akolanti/DocChat/internal/config"
	"github.com/akolanti/DocChat/internal/domain/chatModel"
	"github.com/akolanti/DocChat/internal/domain/commonModels"
	"github.com/akolanti/DocChat/internal/metrics"
	"github.com/akolanti/DocChat/internal/rag/index"
	"github.com/akolanti/DocChat/internal/rag/llm"
	"github.com/akolanti/DocChat/pkg/logger_i"
	"github.com/google/uuid"
)

var logger = logger_i.NewLogger("Retrieval Chain")

type Options struct {
	TopK          int
	HistoryWindow int
	DefaultModel  string
	// Models is the allow-list a request may name; empty allows anything the provider supports.
	Models       []string
	SystemPrompt string
}

// Chain answers questions against the index, keeping one append-only turn log per session.
type Chain struct {
	index   index.EmbeddingIndex
	history chatModel.HistoryStore
	llm     llm.Provider
	opts    Options
	locks   *sessionLocks
	newId   func() string
}

func NewChain(idx index.EmbeddingIndex, history chatModel.HistoryStore, provider llm.Provider, opts Options) *Chain {
	if opts.TopK <= 0 {
		opts.TopK = config.DefaultTopK
	}
	if opts.DefaultModel == "" {
		opts.DefaultModel = config.DefaultModel
	}
	if opts.SystemPrompt == "" {
		opts.SystemPrompt = config.ModelContext
	}
	return &Chain{
		index:   idx,
		history: history,
		llm:     provider,
		opts:    opts,
		locks:   newSessionLocks(),
		newId:   uuid.NewString,
	}
}

// ResolveModel applies the default and checks the model against the allow-list.
func (c *Chain) ResolveModel(model string) (string, error) {
	model = strings.TrimSpace(model)
	if model == "" {
		model = c.opts.DefaultModel
	}
	if len(c.opts.Models) > 0 && !slices.Contains(c.opts.Models, model) {
		return "", commonModels.Invalid("chat", "unsupported model %q, allowed models are %s", model, strings.Join(c.opts.Models, ", "))
	}
	if !c.llm.Supports(model) {
		return "", commonModels.Invalid("chat", "model %q has no configured provider", model)
	}
	return model, nil
}

// Answer runs one chat exchange. Calls on the same session run one at a time in arrival
// order; a failed call appends nothing.
func (c *Chain) Answer(ctx context.Context, question, sessionId, model string) (chatModel.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return chatModel.Answer{}, commonModels.Invalid("chat", "question is empty")
	}
	model, err := c.ResolveModel(model)
	if err != nil {
		return chatModel.Answer{}, err
	}
	if sessionId == "" {
		sessionId = c.newId()
	}
	log := logger.WithTrace(ctx, config.TRACE_ID_KEY).With("sessionId", sessionId, "model", model)

	release, err := c.locks.acquire(ctx, sessionId)
	if err != nil {
		return chatModel.Answer{}, commonModels.SessionError(commonModels.ErrGeneration, "chat.wait", sessionId, err)
	}
	defer release()

	turns, err := c.history.GetHistory(ctx, sessionId)
	if err != nil {
		return chatModel.Answer{}, err
	}
	history := chatModel.Flatten(window(turns, c.opts.HistoryWindow))

	query := question
	if len(history) > 0 {
		query, err = c.rewrite(ctx, model, history, question)
		if err != nil {
			return chatModel.Answer{}, commonModels.SessionError(commonModels.ErrGeneration, "chat.rewrite", sessionId, err)
		}
		log.Debug("question rewritten", "query", query)
	}

	hits, err := c.index.Query(ctx, query, c.opts.TopK)
	if err != nil {
		return chatModel.Answer{}, commonModels.SessionError(commonModels.ErrRetrieval, "chat.retrieve", sessionId, err)
	}

	answer, err := c.generate(ctx, model, llm.Prompt{
		System:  answerInstruction(c.opts.SystemPrompt, hits),
		History: history,
		User:    question,
	})
	if err != nil {
		return chatModel.Answer{}, commonModels.SessionError(commonModels.ErrGeneration, "chat.generate", sessionId, err)
	}

	stored, err := c.history.AppendTurn(ctx, sessionId, chatModel.Turn{Question: question, Answer: answer, Model: model})
	if err != nil {
		return chatModel.Answer{}, err
	}
	log.Info("question answered", "turn", stored.Ordinal, "sources", len(hits))

	return chatModel.Answer{Answer: answer, SessionId: sessionId, Model: model, Sources: hits}, nil
}

func (c *Chain) rewrite(ctx context.Context, model string, history []chatModel.Message, question string) (string, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("query_rewrite", time.Since(start)) }()

	query, err := c.llm.Generate(ctx, model, llm.Prompt{System: rewriteInstruction, History: history, User: question})
	if err != nil {
		return "", err
	}
	if query = strings.TrimSpace(query); query == "" {
		return question, nil
	}
	return query, nil
}

func (c *Chain) generate(ctx context.Context, model string, prompt llm.Prompt) (string, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("llm_generation", time.Since(start)) }()
	return c.llm.Generate(ctx, model, prompt)
}

// History returns a session's turns; unknown sessions have none.
func (c *Chain) History(ctx context.Context, sessionId string) ([]chatModel.Turn, error) {
	if strings.TrimSpace(sessionId) == "" {
		return nil, commonModels.Invalid("history", "session id is required")
	}
	return c.history.GetHistory(ctx, sessionId)
}

func window(turns []chatModel.Turn, size int) []chatModel.Turn {
	if size > 0 && len(turns) > size {
		return turns[len(turns)-size:]
	}
	return turns
}
