package deletion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/akolanti/DocChat/internal/config"
	"github.com/akolanti/DocChat/internal/domain/commonModels"
	"github.com/akolanti/DocChat/internal/metrics"
	"github.com/akolanti/DocChat/internal/rag/index"
	"github.com/akolanti/DocChat/pkg/logger_i"
)

var logger = logger_i.NewLogger("Document Deletion")

// Coordinator removes a document's index entries and then its record. The record is only
// touched once the index reports zero entries for the file, so a failed delete can always
// be retried.
//
// A record with no entries at all is only removed once it is older than gracePeriod.
// Younger records may belong to an ingestion that has not written its first batch yet.
type Coordinator struct {
	docs        commonModels.MetadataStore
	index       index.EmbeddingIndex
	gracePeriod time.Duration
	now         func() time.Time
}

func NewCoordinator(docs commonModels.MetadataStore, idx index.EmbeddingIndex, gracePeriod time.Duration) *Coordinator {
	if gracePeriod <= 0 {
		gracePeriod = config.ReconcileGracePeriod
	}
	return &Coordinator{docs: docs, index: idx, gracePeriod: gracePeriod, now: time.Now}
}

func (c *Coordinator) Delete(ctx context.Context, fileId int64) (commonModels.Outcome, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("document_deletion", time.Since(start)) }()
	log := logger.WithTrace(ctx, config.TRACE_ID_KEY).With("fileId", fileId)

	count, err := c.index.Count(ctx, fileId)
	if err != nil {
		return "", err
	}
	if count == 0 {
		return c.sweepRecord(ctx, fileId, log)
	}

	if err := c.index.DeleteByFile(ctx, fileId); err != nil {
		log.Error("index delete failed, record kept", "error", err)
		return "", err
	}
	remaining, err := c.index.Count(ctx, fileId)
	if err != nil {
		return "", err
	}
	if remaining > 0 {
		log.Error("index still holds entries after delete, record kept", "remaining", remaining)
		return "", commonModels.FileError(commonModels.ErrIndexDelete, "delete", fileId,
			fmt.Errorf("%d of %d entries remain", remaining, count))
	}
	log.Debug("index entries removed", "count", count)

	if _, err := c.docs.Delete(ctx, fileId); err != nil {
		log.Error("record delete failed after index cleanup", "error", err)
		return "", err
	}
	log.Info("document deleted", "entries", count)
	return commonModels.Deleted, nil
}

// sweepRecord handles a file with nothing in the index. Only a record past the grace
// period is removed; anything younger is reported NotFound and left to its ingestion.
func (c *Coordinator) sweepRecord(ctx context.Context, fileId int64, log *logger_i.Logger) (commonModels.Outcome, error) {
	record, err := c.docs.Get(ctx, fileId)
	if errors.Is(err, commonModels.ErrNotFound) {
		log.Debug("nothing to delete")
		return commonModels.NotFound, nil
	}
	if err != nil {
		return "", err
	}
	if record.UploadedAt.After(c.now().Add(-c.gracePeriod)) {
		log.Info("record has no index entries yet, leaving it to its ingestion", "uploadedAt", record.UploadedAt)
		return commonModels.NotFound, nil
	}

	removed, err := c.docs.Delete(ctx, fileId)
	if err != nil {
		log.Error("lingering record delete failed", "error", err)
		return "", err
	}
	if !removed {
		return commonModels.NotFound, nil
	}
	log.Info("lingering record removed", "uploadedAt", record.UploadedAt)
	return commonModels.Deleted, nil
}
