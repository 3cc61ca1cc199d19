package rag

import (
	"context"
	"errors"
	"time"

	"github.com/akolanti/DocChat/internal/config"
	"github.com/akolanti/DocChat/internal/domain/chatModel"
	"github.com/akolanti/DocChat/internal/domain/commonModels"
	"github.com/akolanti/DocChat/internal/domain/jobModel"
	"github.com/akolanti/DocChat/internal/rag/deletion"
	"github.com/akolanti/DocChat/internal/rag/index"
	"github.com/akolanti/DocChat/internal/rag/ingest"
	"github.com/akolanti/DocChat/internal/rag/llm"
	"github.com/akolanti/DocChat/internal/rag/retrieval"
	"github.com/akolanti/DocChat/pkg/logger_i"
)

/*
Service is the only surface the transports (HTTP, MCP, CLI, worker pool) see.
The private struct owns the stores and the index handle; callers get the interface so
tests and transports can swap in fakes without knowing what sits underneath.
*/

type Service interface {
	// Stage validates and writes an upload for later IngestDocument; see ingest.Coordinator.Stage.
	Stage(filename string, raw []byte) (string, error)
	Ingest(ctx context.Context, filename string, raw []byte) (int64, error)
	IngestDocument(ctx context.Context, job jobModel.Job) jobModel.Job
	Delete(ctx context.Context, fileId int64) (commonModels.Outcome, error)
	List(ctx context.Context) ([]commonModels.DocumentRecord, error)
	Chat(ctx context.Context, question, sessionId, model string) (chatModel.Answer, error)
	History(ctx context.Context, sessionId string) ([]chatModel.Turn, error)
	Reconcile(ctx context.Context) (ReconcileReport, error)
}

type Dependencies struct {
	Docs    commonModels.MetadataStore
	Index   index.EmbeddingIndex
	History chatModel.HistoryStore
	LLM     llm.Provider
}

type Options struct {
	Ingest        ingest.Options
	Retrieval     retrieval.Options
	IngestTimeout time.Duration
	ChatTimeout   time.Duration
	// GracePeriod protects young records from the reconciler while they are still being ingested.
	GracePeriod time.Duration
}

type service struct {
	docs     commonModels.MetadataStore
	index    index.EmbeddingIndex
	ingester *ingest.Coordinator
	deleter  *deletion.Coordinator
	chain    *retrieval.Chain
	opts     Options
	now      func() time.Time
	logger   *logger_i.Logger
}

func NewService(deps Dependencies, opts Options) (Service, error) {
	if deps.Docs == nil || deps.Index == nil || deps.History == nil || deps.LLM == nil {
		return nil, errors.New("rag service needs a metadata store, an index, a history store and an llm provider")
	}
	ingester, err := ingest.NewCoordinator(deps.Docs, deps.Index, opts.Ingest)
	if err != nil {
		return nil, err
	}
	if opts.IngestTimeout <= 0 {
		opts.IngestTimeout = config.IngestTimeout
	}
	if opts.ChatTimeout <= 0 {
		opts.ChatTimeout = config.ChatTimeout
	}
	if opts.GracePeriod <= 0 {
		opts.GracePeriod = config.ReconcileGracePeriod
	}
	return &service{
		docs:     deps.Docs,
		index:    deps.Index,
		ingester: ingester,
		deleter:  deletion.NewCoordinator(deps.Docs, deps.Index, opts.GracePeriod),
		chain:    retrieval.NewChain(deps.Index, deps.History, deps.LLM, opts.Retrieval),
		opts:     opts,
		now:      time.Now,
		logger:   logger_i.NewLogger("RAG Service"),
	}, nil
}

func (s *service) Stage(filename string, raw []byte) (string, error) {
	return s.ingester.Stage(filename, raw)
}

func (s *service) Ingest(ctx context.Context, filename string, raw []byte) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.IngestTimeout)
	defer cancel()
	return s.ingester.Ingest(ctx, filename, raw)
}

// IngestDocument runs a queued ingestion job and records its outcome on the job.
func (s *service) IngestDocument(ctx context.Context, job jobModel.Job) jobModel.Job {
	ctx, cancel := context.WithTimeout(ctx, s.opts.IngestTimeout)
	defer cancel()

	job.CurrentStep = jobModel.IngestProcessing
	fileId, err := s.ingester.IngestStaged(ctx, job.JobPayload.Filename, job.JobPayload.StagedPath)
	job.JobPayload.StagedPath = ""
	if err != nil {
		return s.jobError(job, err)
	}
	job.JobPayload.FileId = fileId
	job.CurrentStep = jobModel.Complete
	return job
}

func (s *service) Delete(ctx context.Context, fileId int64) (commonModels.Outcome, error) {
	if fileId <= 0 {
		return "", commonModels.Invalid("delete", "file id must be positive, got %d", fileId)
	}
	return s.deleter.Delete(ctx, fileId)
}

func (s *service) List(ctx context.Context) ([]commonModels.DocumentRecord, error) {
	return s.docs.List(ctx)
}

func (s *service) Chat(ctx context.Context, question, sessionId, model string) (chatModel.Answer, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.ChatTimeout)
	defer cancel()
	return s.chain.Answer(ctx, question, sessionId, model)
}

func (s *service) History(ctx context.Context, sessionId string) ([]chatModel.Turn, error) {
	return s.chain.History(ctx, sessionId)
}
