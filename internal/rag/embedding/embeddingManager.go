package embedding

import (
	"context"
	"fmt"
)

type Embedder interface {
	// GetEmbedding embeds a search query.
	GetEmbedding(ctx context.Context, query string) ([]float32, error)
	// BatchEmbedding embeds document chunks, returning one vector per input in input order.
	BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error)
}

// CheckBatch rejects provider responses that do not line up one-to-one with the inputs.
func CheckBatch(inputs int, vectors [][]float32) error {
	if len(vectors) != inputs {
		return fmt.Errorf("embedder returned %d vectors for %d inputs", len(vectors), inputs)
	}
	for i, v := range vectors {
		if len(v) == 0 {
			return fmt.Errorf("embedder returned an empty vector at position %d", i)
		}
	}
	return nil
}
