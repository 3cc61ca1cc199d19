package vectorDB

import (
	"context"
	"fmt"

	"github.com/akolanti/DocChat/internal/domain/commonModels"
	"github.com/google/uuid"
)

// Store is a vector backend. Every entry carries the FileId of the document it came from,
// which is the only key deletes and counts are scoped by.
type Store interface {
	Upsert(ctx context.Context, entries []commonModels.VectorEntry) error
	// Search returns at most limit entries ordered by descending similarity.
	Search(ctx context.Context, vector []float32, limit int) ([]commonModels.ScoredChunk, error)
	CountByFile(ctx context.Context, fileId int64) (int, error)
	// DeleteByFile removes every entry for fileId. Removing nothing is not an error.
	DeleteByFile(ctx context.Context, fileId int64) error
	// ListFileIds returns the distinct file ids that still have entries.
	ListFileIds(ctx context.Context) ([]int64, error)
	Close() error
}

var entryNamespace = uuid.MustParse("6f1c7a8e-3b0d-4c52-9a57-2d4f0e9b8c31")

// EntryId is stable for a (file, ordinal) pair so re-upserting a chunk overwrites it.
func EntryId(fileId int64, ordinal int) string {
	return uuid.NewSHA1(entryNamespace, []byte(fmt.Sprintf("%d:%d", fileId, ordinal))).String()
}
