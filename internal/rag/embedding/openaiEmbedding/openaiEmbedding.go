package openaiEmbedding

import (
	"context"
	"fmt"

	"github.com/akolanti/DocChat/internal/config"
	"github.com/akolanti/DocChat/internal/customHttpClient"
	"github.com/akolanti/DocChat/internal/rag/embedding"
	"github.com/akolanti/DocChat/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

var logger = logger_i.NewLogger("openai_embedding")

type client struct {
	api       openai.Client
	model     string
	dimension int64
}

func NewOpenAIEmbedder(modelName string, apikey string, opts ...option.RequestOption) embedding.Embedder {
	opts = append([]option.RequestOption{
		option.WithAPIKey(apikey),
		option.WithHTTPClient(customHttpClient.Shared()),
	}, opts...)
	logger.Info("OpenAI Embedding client created", "model", modelName)
	return &client{
		api:       openai.NewClient(opts...),
		model:     modelName,
		dimension: int64(config.EmbeddingOutputDimensionality),
	}
}

func (c *client) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	vectors, err := c.embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (c *client) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	return c.embed(ctx, chunks)
}

func (c *client) embed(ctx context.Context, inputs []string) ([][]float32, error) {
	log := logger.WithTrace(ctx, config.TRACE_ID_KEY)
	res, err := c.api.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input:      openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: inputs},
		Model:      openai.EmbeddingModel(c.model),
		Dimensions: openai.Int(c.dimension),
	})
	if err != nil {
		log.Error("Error getting Embeddings from OpenAI", "error", err)
		return nil, err
	}

	vectors := make([][]float32, len(inputs))
	for _, d := range res.Data {
		if d.Index < 0 || int(d.Index) >= len(inputs) {
			return nil, fmt.Errorf("openai returned embedding index %d for %d inputs", d.Index, len(inputs))
		}
		v := make([]float32, len(d.Embedding))
		for i, f := range d.Embedding {
			v[i] = float32(f)
		}
		vectors[d.Index] = v
	}
	if err := embedding.CheckBatch(len(inputs), vectors); err != nil {
		return nil, err
	}
	return vectors, nil
}
