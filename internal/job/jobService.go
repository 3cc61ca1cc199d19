package job

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/akolanti/DocChat/internal/config"
	"github.com/akolanti/DocChat/internal/domain/jobModel"
	"github.com/akolanti/DocChat/internal/metrics"
	"github.com/akolanti/DocChat/pkg/logger_i"
)

var logger = logger_i.NewLogger("Job Service")

type Service struct {
	JobChannel        chan jobModel.Job
	RequestCount      int64
	DispatcherChannel chan bool
	JobStore          jobModel.JobStore
}

type ServiceConfig struct {
	JobChannel        chan jobModel.Job
	DispatcherChannel chan bool
	JobStore          jobModel.JobStore
}

func InitJobService(cfg ServiceConfig) *Service {
	return &Service{
		JobChannel:        cfg.JobChannel,
		DispatcherChannel: cfg.DispatcherChannel,
		JobStore:          cfg.JobStore,
	}
}

// Submit records job as queued and hands it to the worker pool. The send blocks while the
// buffer is full so a burst of uploads cannot outrun the workers.
func (s *Service) Submit(ctx context.Context, job jobModel.Job) error {
	job.Status = jobModel.JobStatusQueued
	job.CurrentStep = jobModel.IngestInit
	if err := s.JobStore.SaveJob(ctx, job); err != nil {
		return err
	}

	select {
	case s.JobChannel <- job:
	case <-ctx.Done():
		s.JobStore.DeleteJob(context.WithoutCancel(ctx), job.Id)
		return errors.Join(errors.New("job queue is full"), ctx.Err())
	}
	metrics.IncrementJobsInQueue()
	logger.WithTrace(ctx, config.TRACE_ID_KEY).Info("job queued", "jobId", job.Id, "type", job.JobType)

	// ingestion is slow and external, so every ingest job asks for another worker;
	// idle workers retire on their own
	count := atomic.AddInt64(&s.RequestCount, 1)
	if count%config.RequestsPerNewWorkerCount == 0 || job.JobType == jobModel.JobTypeIngest {
		select {
		case s.DispatcherChannel <- true:
			metrics.StartDispatcherSignalCount()
		default:
			// a signal is already pending
		}
	}
	return nil
}

func (s *Service) GetJob(ctx context.Context, id string) (jobModel.Job, bool) {
	if id == "" {
		return jobModel.Job{}, false
	}
	return s.JobStore.GetJob(ctx, id)
}
