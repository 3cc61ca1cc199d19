package index

import (
	"context"
	"hash/fnv"
	"strings"
	"unicode"
)

// HashEmbedder is a deterministic bag-of-words embedder for tests and offline runs: texts
// sharing words land close together under cosine similarity.
type HashEmbedder struct {
	Dimension int
}

func (h HashEmbedder) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return h.vector(query), nil
}

func (h HashEmbedder) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([][]float32, len(chunks))
	for i, c := range chunks {
		out[i] = h.vector(c)
	}
	return out, nil
}

func (h HashEmbedder) vector(text string) []float32 {
	dim := h.Dimension
	if dim <= 0 {
		dim = 64
	}
	v := make([]float32, dim)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		f := fnv.New32a()
		_, _ = f.Write([]byte(w))
		v[f.Sum32()%uint32(dim)]++
	}
	// keep empty text off the zero vector
	v[0] += 0.01
	return v
}
