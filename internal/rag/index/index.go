package index

import (
	"context"
	"time"

	"github.com/akolanti/DocChat/internal/config"
	"github.com/akolanti/DocChat/internal/domain/commonModels"
	"github.com/akolanti/DocChat/internal/metrics"
	"github.com/akolanti/DocChat/internal/rag/embedding"
	"github.com/akolanti/DocChat/internal/rag/vectorDB"
	"github.com/akolanti/DocChat/pkg/logger_i"
)

// EmbeddingIndex is the similarity-searchable store of document chunks, keyed for
// deletion by the file id every entry carries.
type EmbeddingIndex interface {
	// Add embeds and writes chunks batch by batch; earlier batches stay visible if a later one fails.
	Add(ctx context.Context, filename string, chunks []commonModels.Chunk) (int, error)
	Query(ctx context.Context, text string, k int) ([]commonModels.ScoredChunk, error)
	Count(ctx context.Context, fileId int64) (int, error)
	DeleteByFile(ctx context.Context, fileId int64) error
	FileIds(ctx context.Context) ([]int64, error)
}

type Index struct {
	embedder  embedding.Embedder
	store     vectorDB.Store
	batchSize int
	logger    *logger_i.Logger
}

func New(embedder embedding.Embedder, store vectorDB.Store, batchSize int) *Index {
	if batchSize <= 0 {
		batchSize = config.EmbeddingBatchSize
	}
	return &Index{
		embedder:  embedder,
		store:     store,
		batchSize: batchSize,
		logger:    logger_i.NewLogger("Embedding Index"),
	}
}

func (ix *Index) Add(ctx context.Context, filename string, chunks []commonModels.Chunk) (int, error) {
	written := 0
	for start := 0; start < len(chunks); start += ix.batchSize {
		end := min(start+ix.batchSize, len(chunks))
		batch := chunks[start:end]
		fileId := batch[0].FileId

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Text
		}

		vectors, err := ix.embedBatch(ctx, texts)
		if err == nil {
			err = embedding.CheckBatch(len(batch), vectors)
		}
		if err != nil {
			return written, commonModels.FileError(commonModels.ErrEmbedding, "index.add", fileId, err)
		}

		entries := make([]commonModels.VectorEntry, len(batch))
		for i, c := range batch {
			entries[i] = commonModels.VectorEntry{
				Id:        vectorDB.EntryId(c.FileId, c.Ordinal),
				Embedding: vectors[i],
				FileId:    c.FileId,
				Ordinal:   c.Ordinal,
				Segment:   c.Segment,
				Content:   c.Text,
				Filename:  filename,
			}
		}
		if err := ix.store.Upsert(ctx, entries); err != nil {
			return written, commonModels.FileError(commonModels.ErrIndexWrite, "index.add", fileId, err)
		}
		written += len(entries)
		ix.logger.WithTrace(ctx, config.TRACE_ID_KEY).Debug("batch indexed", "fileId", fileId, "written", written, "total", len(chunks))
	}
	return written, nil
}

func (ix *Index) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("embedding", time.Since(start)) }()
	return ix.embedder.BatchEmbedding(ctx, texts)
}

func (ix *Index) Query(ctx context.Context, text string, k int) ([]commonModels.ScoredChunk, error) {
	embedStart := time.Now()
	vector, err := ix.embedder.GetEmbedding(ctx, text)
	metrics.CaptureExecutionMetrics("embedding", time.Since(embedStart))
	if err != nil {
		return nil, &commonModels.RagError{Kind: commonModels.ErrEmbedding, Op: "index.query", Err: err}
	}

	searchStart := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("vector_search", time.Since(searchStart)) }()
	hits, err := ix.store.Search(ctx, vector, k)
	if err != nil {
		return nil, &commonModels.RagError{Kind: commonModels.ErrRetrieval, Op: "index.query", Err: err}
	}
	return hits, nil
}

func (ix *Index) Count(ctx context.Context, fileId int64) (int, error) {
	n, err := ix.store.CountByFile(ctx, fileId)
	if err != nil {
		return 0, commonModels.FileError(commonModels.ErrIndexDelete, "index.count", fileId, err)
	}
	return n, nil
}

func (ix *Index) DeleteByFile(ctx context.Context, fileId int64) error {
	if err := ix.store.DeleteByFile(ctx, fileId); err != nil {
		return commonModels.FileError(commonModels.ErrIndexDelete, "index.delete", fileId, err)
	}
	return nil
}

func (ix *Index) FileIds(ctx context.Context) ([]int64, error) {
	ids, err := ix.store.ListFileIds(ctx)
	if err != nil {
		return nil, &commonModels.RagError{Kind: commonModels.ErrRetrieval, Op: "index.file_ids", Err: err}
	}
	return ids, nil
}
