package rag

import (
	"context"
	"errors"

	"github.com/akolanti/DocChat/internal/config"
	"github.com/akolanti/DocChat/internal/metrics"
)

// ReconcileReport lists what a sweep removed.
type ReconcileReport struct {
	// OrphanEntries are file ids that had index entries but no record.
	OrphanEntries []int64 `json:"orphan_entries"`
	// OrphanRecords are records past the grace period with no index entries.
	OrphanRecords []int64 `json:"orphan_records"`
}

// Reconcile removes what failed compensations and interrupted deletes left behind.
// Entries without a record are always safe to drop since ingestion writes the record first.
// Records without entries are only dropped once older than the grace period.
func (s *service) Reconcile(ctx context.Context) (ReconcileReport, error) {
	var report ReconcileReport
	log := s.logger.WithTrace(ctx, config.TRACE_ID_KEY)

	records, err := s.docs.List(ctx)
	if err != nil {
		return report, err
	}
	known := make(map[int64]bool, len(records))
	for _, r := range records {
		known[r.Id] = true
	}

	fileIds, err := s.index.FileIds(ctx)
	if err != nil {
		return report, err
	}
	indexed := make(map[int64]bool, len(fileIds))

	var errs []error
	for _, id := range fileIds {
		indexed[id] = true
		if known[id] {
			continue
		}
		if err := s.index.DeleteByFile(ctx, id); err != nil {
			errs = append(errs, err)
			continue
		}
		report.OrphanEntries = append(report.OrphanEntries, id)
	}

	cutoff := s.now().Add(-s.opts.GracePeriod)
	for _, r := range records {
		if indexed[r.Id] || r.UploadedAt.After(cutoff) {
			continue
		}
		// recheck: the file list may predate a write that finished since
		n, err := s.index.Count(ctx, r.Id)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if n > 0 {
			continue
		}
		if _, err := s.docs.Delete(ctx, r.Id); err != nil {
			errs = append(errs, err)
			continue
		}
		report.OrphanRecords = append(report.OrphanRecords, r.Id)
	}

	metrics.CaptureReconciled("index", len(report.OrphanEntries))
	metrics.CaptureReconciled("metadata", len(report.OrphanRecords))
	log.Info("reconciliation finished", "orphanEntries", len(report.OrphanEntries), "orphanRecords", len(report.OrphanRecords), "failures", len(errs))
	return report, errors.Join(errs...)
}
