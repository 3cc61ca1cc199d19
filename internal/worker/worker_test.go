package worker

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/akolanti/DocChat/internal/data/store"
	"github.com/akolanti/DocChat/internal/domain/jobModel"
	"github.com/akolanti/DocChat/internal/job"
)

// MockIngester counts executed jobs and fails the ones named "fail".
type MockIngester struct {
	ProcessedCount int32
	Delay          time.Duration
}

func (m *MockIngester) IngestDocument(ctx context.Context, j jobModel.Job) jobModel.Job {
	atomic.AddInt32(&m.ProcessedCount, 1)
	time.Sleep(m.Delay)
	if j.JobPayload.Filename == "fail" {
		j.Status = jobModel.JobStatusError
		j.Error = jobModel.JobError{Code: 422, Kind: "parse error", Message: "bad file"}
		return j
	}
	j.JobPayload.FileId = 42
	j.CurrentStep = jobModel.Complete
	return j
}

// gatedIngester holds every job until release is closed and reports which job it took.
type gatedIngester struct {
	started chan string
	release chan struct{}
}

func (g *gatedIngester) IngestDocument(ctx context.Context, j jobModel.Job) jobModel.Job {
	g.started <- j.Id
	<-g.release
	j.CurrentStep = jobModel.Complete
	return j
}

func newJobService(buffer int) *job.Service {
	return job.InitJobService(job.ServiceConfig{
		JobChannel:        make(chan jobModel.Job, buffer),
		DispatcherChannel: make(chan bool, 1),
		JobStore:          store.InitInMemoryJobStore(),
	})
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestWorkerPool_Flow(t *testing.T) {
	ctx := context.Background()
	jobSvc := newJobService(10)
	ingester := &MockIngester{}
	stop := make(chan bool)
	wg := &sync.WaitGroup{}

	pool := NewPool(jobSvc, ingester, stop, wg)
	pool.Start()

	t.Run("Completed job is recorded", func(t *testing.T) {
		if err := jobSvc.Submit(ctx, jobModel.Job{Id: "ok-1", JobType: jobModel.JobTypeIngest, JobPayload: jobModel.JobPayload{Filename: "a.pdf"}}); err != nil {
			t.Fatal(err)
		}
		waitFor(t, "job completion", func() bool {
			j, ok := jobSvc.GetJob(ctx, "ok-1")
			return ok && j.Status == jobModel.JobStatusComplete
		})
		j, _ := jobSvc.GetJob(ctx, "ok-1")
		if j.JobPayload.FileId != 42 || j.EndTime.IsZero() {
			t.Errorf("unexpected job %+v", j)
		}
	})

	t.Run("Failed job keeps its error", func(t *testing.T) {
		if err := jobSvc.Submit(ctx, jobModel.Job{Id: "bad-1", JobType: jobModel.JobTypeIngest, JobPayload: jobModel.JobPayload{Filename: "fail"}}); err != nil {
			t.Fatal(err)
		}
		waitFor(t, "job failure", func() bool {
			j, ok := jobSvc.GetJob(ctx, "bad-1")
			return ok && j.Status == jobModel.JobStatusError
		})
		j, _ := jobSvc.GetJob(ctx, "bad-1")
		if j.Error.Code != 422 {
			t.Errorf("error code = %d", j.Error.Code)
		}
	})

	t.Run("Stop signal retires workers", func(t *testing.T) {
		close(stop)
		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("workers did not stop within timeout")
		}
		if n := pool.Count(); n != 0 {
			t.Errorf("worker count after stop = %d", n)
		}
	})
}

func TestWorkerPool_GrowsAndRetiresIdleWorkers(t *testing.T) {
	ctx := context.Background()
	jobSvc := newJobService(20)
	stop := make(chan bool)
	wg := &sync.WaitGroup{}
	defer func() {
		close(stop)
		wg.Wait()
	}()

	pool := NewPool(jobSvc, &MockIngester{Delay: 20 * time.Millisecond}, stop, wg)
	pool.MaxWorkers = 3
	pool.IdleTimeout = 50 * time.Millisecond
	pool.Start()
	waitFor(t, "first worker", func() bool { return pool.Count() == 1 })

	for i := 0; i < 10; i++ {
		if err := jobSvc.Submit(ctx, jobModel.Job{Id: string(rune('a' + i)), JobType: jobModel.JobTypeIngest}); err != nil {
			t.Fatal(err)
		}
		if n := pool.Count(); n > 3 {
			t.Fatalf("pool grew past max: %d", n)
		}
		time.Sleep(5 * time.Millisecond)
	}
	if pool.Count() < 2 {
		t.Errorf("pool should grow under load, count = %d", pool.Count())
	}

	waitFor(t, "idle retirement", func() bool { return pool.Count() == 1 })
}

func TestSubmit_FullQueueRespectsContext(t *testing.T) {
	jobSvc := newJobService(0)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := jobSvc.Submit(ctx, jobModel.Job{Id: "stuck", JobType: jobModel.JobTypeIngest})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("want deadline error, got %v", err)
	}
	if _, ok := jobSvc.GetJob(context.Background(), "stuck"); ok {
		t.Error("a job that never reached the queue should not be reported")
	}
}

func TestWorkerPool_StopFailsQueuedJobs(t *testing.T) {
	ctx := context.Background()
	jobSvc := newJobService(5)
	ingester := &gatedIngester{started: make(chan string, 1), release: make(chan struct{})}
	stop := make(chan bool)
	wg := &sync.WaitGroup{}

	pool := NewPool(jobSvc, ingester, stop, wg)
	pool.MaxWorkers = 1
	pool.Start()

	staging := t.TempDir()
	staged := map[string]string{}
	for _, id := range []string{"q-0", "q-1", "q-2"} {
		path := filepath.Join(staging, id+".pdf")
		if err := os.WriteFile(path, []byte("%PDF-stub"), 0o600); err != nil {
			t.Fatal(err)
		}
		staged[id] = path
		if err := jobSvc.Submit(ctx, jobModel.Job{Id: id, JobType: jobModel.JobTypeIngest, JobPayload: jobModel.JobPayload{Filename: id + ".pdf", StagedPath: path}}); err != nil {
			t.Fatal(err)
		}
	}
	running := <-ingester.started

	close(stop)
	for id, path := range staged {
		if id == running {
			continue
		}
		waitFor(t, "queued job "+id+" to be failed", func() bool {
			j, ok := jobSvc.GetJob(ctx, id)
			return ok && j.Status == jobModel.JobStatusError
		})
		j, _ := jobSvc.GetJob(ctx, id)
		if j.Error.Code != http.StatusServiceUnavailable || !j.Error.Retry || j.CurrentStep != jobModel.Error || j.EndTime.IsZero() {
			t.Errorf("unexpected abandoned job %+v", j)
		}
		if j.JobPayload.StagedPath != "" {
			t.Errorf("abandoned job still points at %s", j.JobPayload.StagedPath)
		}
		if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("staged upload %s was not removed: %v", path, err)
		}
	}

	// the job already running finishes normally
	close(ingester.release)
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("pool did not stop within timeout")
	}
	j, _ := jobSvc.GetJob(ctx, running)
	if j.Status != jobModel.JobStatusComplete {
		t.Errorf("running job status = %s", j.Status)
	}
	if len(jobSvc.JobChannel) != 0 {
		t.Errorf("%d jobs left in the queue", len(jobSvc.JobChannel))
	}
}
