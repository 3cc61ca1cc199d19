package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/akolanti/DocChat/internal/config"
	"github.com/akolanti/DocChat/internal/domain/jobModel"
	"github.com/akolanti/DocChat/internal/job"
	"github.com/akolanti/DocChat/internal/metrics"
	"github.com/akolanti/DocChat/pkg/logger_i"
)

// Ingester runs one queued ingestion job and returns it with its outcome recorded.
type Ingester interface {
	IngestDocument(ctx context.Context, job jobModel.Job) jobModel.Job
}

// Pool is a dynamic worker pool: the dispatcher adds a worker per signal up to MaxWorkers,
// and workers beyond MinWorkers retire after sitting idle.
type Pool struct {
	jobs        *job.Service
	ingester    Ingester
	stop        chan bool
	wg          *sync.WaitGroup
	count       int64
	MinWorkers  int64
	MaxWorkers  int64
	IdleTimeout time.Duration
	JobTimeout  time.Duration
	logger      *logger_i.Logger
}

func NewPool(jobService *job.Service, ingester Ingester, stop chan bool, wg *sync.WaitGroup) *Pool {
	return &Pool{
		jobs:        jobService,
		ingester:    ingester,
		stop:        stop,
		wg:          wg,
		MinWorkers:  config.MinWorkerCount,
		MaxWorkers:  config.MaxWorkerCount,
		IdleTimeout: config.IdleWorkerTimeout,
		JobTimeout:  config.JobTimeout,
		logger:      logger_i.NewLogger("WorkerPool"),
	}
}

func (p *Pool) Start() {
	p.logger.Info("Initializing worker pool")
	p.wg.Add(1)
	go p.dispatcher()
}

func (p *Pool) Count() int64 {
	return atomic.LoadInt64(&p.count)
}

// dispatcher counts against wg so a stopping pool is only done once the queue is drained.
func (p *Pool) dispatcher() {
	defer p.wg.Done()
	for i := int64(0); i < max(p.MinWorkers, 1); i++ {
		p.createWorker()
	}
	p.logger.Info("Dispatcher started")
	for {
		select {
		case <-p.jobs.DispatcherChannel:
			if p.Count() < p.MaxWorkers {
				p.createWorker()
			}
		case <-p.stop:
			p.abandonQueued()
			return
		}
	}
}

func (p *Pool) createWorker() {
	p.wg.Add(1)
	n := atomic.AddInt64(&p.count, 1)
	metrics.IncrementActiveWorkerCount()
	p.logger.Debug("Created new worker", "workerCount", n)
	go p.worker()
}

func (p *Pool) worker() {
	idle := time.NewTimer(p.IdleTimeout)
	defer idle.Stop()
	for {
		select {
		case currentJob := <-p.jobs.JobChannel:
			metrics.DecrementJobsInQueue()
			p.executeJob(currentJob)
			idle.Reset(p.IdleTimeout)

		case <-p.stop:
			atomic.AddInt64(&p.count, -1)
			p.removeWorker("stop signal received")
			return

		case <-idle.C:
			if p.tryRetire() {
				p.removeWorker("idle timeout")
				return
			}
			idle.Reset(p.IdleTimeout)
		}
	}
}

// tryRetire claims a slot above the minimum; only the winner of the swap may exit.
func (p *Pool) tryRetire() bool {
	for {
		n := atomic.LoadInt64(&p.count)
		if n <= p.MinWorkers {
			return false
		}
		if atomic.CompareAndSwapInt64(&p.count, n, n-1) {
			return true
		}
	}
}

// removeWorker runs after the worker's slot has already left the count.
func (p *Pool) removeWorker(reason string) {
	metrics.DecrementActiveWorkerCount()
	p.logger.Debug("Removed worker", "reason", reason, "workerCount", p.Count())
	p.wg.Done()
}
