package worker

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/akolanti/DocChat/internal/config"
	"github.com/akolanti/DocChat/internal/domain/jobModel"
	"github.com/akolanti/DocChat/internal/metrics"
)

func (p *Pool) executeJob(job jobModel.Job) {
	start := time.Now()
	defer func() {
		metrics.CaptureJobMetrics(string(job.Status), time.Since(start))
	}()

	ctxTrace := context.WithValue(context.Background(), config.TRACE_ID_KEY, job.TraceId)
	ctx, cancel := context.WithTimeout(ctxTrace, p.JobTimeout)
	defer cancel()
	log := p.logger.With("traceId", job.TraceId, "jobId", job.Id)
	log.Debug("Processing job")

	job.Status = jobModel.JobStatusRunning
	p.saveJobState(ctx, job)

	if job.JobType == jobModel.JobTypeIngest {
		job = p.ingester.IngestDocument(ctx, job)
	} else {
		log.Error("Unknown job type", "type", job.JobType)
		job.Error = jobModel.JobError{Code: http.StatusBadRequest, Kind: "validation error", Message: "unknown job type"}
		job.Status = jobModel.JobStatusError
	}

	if job.Status != jobModel.JobStatusError {
		job.Status = jobModel.JobStatusComplete
	}
	job.EndTime = time.Now()
	// the job outlives its own deadline in the store
	p.saveJobState(context.WithoutCancel(ctx), job)
	log.Info("Job finished", "status", job.Status, "fileId", job.JobPayload.FileId)
}

func (p *Pool) saveJobState(ctx context.Context, job jobModel.Job) {
	if err := p.jobs.JobStore.SaveJob(ctx, job); err != nil {
		p.logger.Error("Failed to update job status", "jobId", job.Id, "err", err)
	}
}

// abandonQueued fails every job still buffered when the pool stops. Without it those jobs
// would stay queued forever and their staged uploads would never be removed.
func (p *Pool) abandonQueued() {
	abandoned := 0
	for {
		select {
		case job := <-p.jobs.JobChannel:
			metrics.DecrementJobsInQueue()
			p.abandonJob(job)
			abandoned++
		default:
			if abandoned > 0 {
				p.logger.Warn("Abandoned queued jobs at shutdown", "count", abandoned)
			}
			return
		}
	}
}

func (p *Pool) abandonJob(job jobModel.Job) {
	log := p.logger.With("traceId", job.TraceId, "jobId", job.Id)
	if path := job.JobPayload.StagedPath; path != "" {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Error("Error removing staged file", "path", path, "error", err)
		}
		job.JobPayload.StagedPath = ""
	}

	job.Status = jobModel.JobStatusError
	job.CurrentStep = jobModel.Error
	job.Error = jobModel.JobError{
		Code:    http.StatusServiceUnavailable,
		Kind:    "unavailable",
		Message: "server shut down before the job ran",
		Retry:   true,
	}
	job.EndTime = time.Now()
	p.saveJobState(context.Background(), job)
	metrics.CaptureJobMetrics(string(job.Status), 0)
	log.Debug("Queued job abandoned")
}
