package googleEmbedding

import (
	"context"
	"fmt"
	"time"

	"github.com/akolanti/DocChat/internal/config"
	"github.com/akolanti/DocChat/internal/customHttpClient"
	"github.com/akolanti/DocChat/internal/rag/embedding"
	"github.com/akolanti/DocChat/pkg/logger_i"
	"google.golang.org/genai"
)

const (
	taskDocument = "RETRIEVAL_DOCUMENT"
	taskQuery    = "RETRIEVAL_QUERY"
)

var logger = logger_i.NewLogger("google_embedding")

type client struct {
	genAi      *genai.Client
	model      string
	dimension  int32
	retryDelay time.Duration
}

func NewGoogleEmbedder(ctx context.Context, modelName string, apikey string) (embedding.Embedder, error) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apikey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: customHttpClient.Shared(),
	})
	if err != nil {
		return nil, fmt.Errorf("creating google embedding client: %w", err)
	}
	logger.Info("Google Embedding client created", "model", modelName)
	return &client{
		genAi:      c,
		model:      modelName,
		dimension:  config.EmbeddingOutputDimensionality,
		retryDelay: 5 * time.Second,
	}, nil
}

func (c *client) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	log := logger.WithTrace(ctx, config.TRACE_ID_KEY)
	result, err := c.doCall(ctx, genai.Text(query), taskQuery)
	if err != nil {
		log.Error("Error getting query embedding from Google", "error", err)
		return nil, err
	}
	if len(result.Embeddings) == 0 || result.Embeddings[0] == nil {
		return nil, fmt.Errorf("google returned no embedding")
	}
	return result.Embeddings[0].Values, nil
}

func (c *client) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	log := logger.WithTrace(ctx, config.TRACE_ID_KEY).With("chunks", len(chunks))

	res, err := c.doCall(ctx, getContent(chunks), taskDocument)
	if err != nil && doRetry(err, log) {
		log.Debug("Retrying after rate limit", "delay", c.retryDelay)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.retryDelay):
		}
		res, err = c.doCall(ctx, getContent(chunks), taskDocument)
	}
	if err != nil {
		log.Error("Error getting Embeddings from Google", "error", err)
		return nil, err
	}

	results := make([][]float32, 0, len(res.Embeddings))
	for _, r := range res.Embeddings {
		if r == nil {
			results = append(results, nil)
			continue
		}
		results = append(results, r.Values)
	}
	if err := embedding.CheckBatch(len(chunks), results); err != nil {
		return nil, err
	}
	return results, nil
}

func (c *client) doCall(ctx context.Context, content []*genai.Content, task string) (*genai.EmbedContentResponse, error) {
	return c.genAi.Models.EmbedContent(ctx, c.model, content, &genai.EmbedContentConfig{
		OutputDimensionality: &c.dimension,
		TaskType:             task,
	})
}
