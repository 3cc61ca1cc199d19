package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/akolanti/DocChat/internal/config"
	"github.com/akolanti/DocChat/internal/domain/commonModels"
	"github.com/akolanti/DocChat/internal/metrics"
	"github.com/akolanti/DocChat/internal/rag/index"
	"github.com/akolanti/DocChat/pkg/logger_i"
)

var logger = logger_i.NewLogger("Document Ingestion")

type Options struct {
	ChunkSize           int
	ChunkOverlap        int
	ChunkUnit           string
	StagingDir          string
	CompensationTimeout time.Duration
	// Parsers overrides the dispatch table; nil means DefaultParsers.
	Parsers map[commonModels.DocType]Parser
}

// Coordinator turns an uploaded file into one DocumentRecord plus its indexed chunks, or into nothing.
type Coordinator struct {
	docs                commonModels.MetadataStore
	index               index.EmbeddingIndex
	parsers             map[commonModels.DocType]Parser
	splitter            *Splitter
	stagingDir          string
	compensationTimeout time.Duration
	now                 func() time.Time
}

func NewCoordinator(docs commonModels.MetadataStore, idx index.EmbeddingIndex, opts Options) (*Coordinator, error) {
	splitter, err := NewSplitter(opts.ChunkSize, opts.ChunkOverlap, opts.ChunkUnit)
	if err != nil {
		return nil, err
	}
	parsers := opts.Parsers
	if parsers == nil {
		parsers = DefaultParsers()
	}
	timeout := opts.CompensationTimeout
	if timeout <= 0 {
		timeout = config.CompensationTimeout
	}
	return &Coordinator{
		docs:                docs,
		index:               idx,
		parsers:             parsers,
		splitter:            splitter,
		stagingDir:          opts.StagingDir,
		compensationTimeout: timeout,
		now:                 time.Now,
	}, nil
}

func validateUpload(filename string) (string, commonModels.DocType, error) {
	name := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || strings.TrimSpace(name) == "" {
		return "", commonModels.ERR, commonModels.Invalid("ingest", "missing filename")
	}
	docType := commonModels.GetDocType(name)
	if docType == commonModels.ERR {
		return "", docType, commonModels.Invalid("ingest", "unsupported file type %q, allowed types are .pdf, .docx, .html", filepath.Ext(name))
	}
	return name, docType, nil
}

// Stage validates the upload and writes it to the staging directory. The caller owns the returned path.
func (c *Coordinator) Stage(filename string, raw []byte) (string, error) {
	name, _, err := validateUpload(filename)
	if err != nil {
		return "", err
	}
	if len(raw) == 0 {
		return "", commonModels.Invalid("ingest", "uploaded file %q is empty", name)
	}

	if c.stagingDir != "" {
		if err := os.MkdirAll(c.stagingDir, 0o700); err != nil {
			return "", commonModels.FileError(commonModels.ErrStore, "ingest.stage", 0, err)
		}
	}
	f, err := os.CreateTemp(c.stagingDir, "upload-*"+filepath.Ext(name))
	if err != nil {
		return "", commonModels.FileError(commonModels.ErrStore, "ingest.stage", 0, err)
	}
	_, werr := f.Write(raw)
	cerr := f.Close()
	if err := errors.Join(werr, cerr); err != nil {
		_ = os.Remove(f.Name())
		return "", commonModels.FileError(commonModels.ErrStore, "ingest.stage", 0, err)
	}
	return f.Name(), nil
}

// Ingest stages raw and indexes it. The staged copy is removed on every exit path.
func (c *Coordinator) Ingest(ctx context.Context, filename string, raw []byte) (int64, error) {
	path, err := c.Stage(filename, raw)
	if err != nil {
		return 0, err
	}
	return c.IngestStaged(ctx, filename, path)
}

// IngestStaged indexes a file already written by Stage and removes it when done.
func (c *Coordinator) IngestStaged(ctx context.Context, filename string, path string) (fileId int64, err error) {
	defer func() {
		if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			logger.Error("Error removing staged file", "path", path, "error", rmErr)
		}
	}()

	name, docType, err := validateUpload(filename)
	if err != nil {
		return 0, err
	}
	if info, statErr := os.Stat(path); statErr != nil || info.Size() == 0 {
		return 0, commonModels.Invalid("ingest", "uploaded file %q is empty or was not staged", name)
	}

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("document_ingestion", time.Since(start)) }()

	record, err := c.docs.Insert(ctx, name, c.now())
	if err != nil {
		return 0, err
	}
	log := logger.WithTrace(ctx, config.TRACE_ID_KEY).With("fileId", record.Id, "filename", name)
	log.Debug("document recorded", "type", docType)

	committed := false
	defer func() {
		if !committed {
			log.Warn("ingestion failed, compensating", "error", err)
			c.compensate(ctx, record.Id, log)
		}
	}()

	segments, perr := parse(ctx, c.parsers, docType, path)
	if perr != nil {
		return 0, commonModels.FileError(commonModels.ErrParse, "ingest.parse", record.Id, perr)
	}

	chunks := c.chunk(record.Id, segments)
	if len(chunks) == 0 {
		return 0, commonModels.FileError(commonModels.ErrEmptyDocument, "ingest.parse", record.Id,
			fmt.Errorf("%d segments produced no text", len(segments)))
	}
	log.Debug("document chunked", "segments", len(segments), "chunks", len(chunks))

	if _, err = c.index.Add(ctx, name, chunks); err != nil {
		return 0, err
	}
	// a delete may have run while the batches were being written; its entries must not outlive it
	if _, err = c.docs.Get(ctx, record.Id); err != nil {
		return 0, err
	}

	committed = true
	log.Info("document indexed", "chunks", len(chunks))
	return record.Id, nil
}

func (c *Coordinator) chunk(fileId int64, segments []Segment) []commonModels.Chunk {
	var chunks []commonModels.Chunk
	for _, seg := range segments {
		for _, text := range c.splitter.Split(seg.Content) {
			chunks = append(chunks, commonModels.Chunk{
				Text:    text,
				FileId:  fileId,
				Ordinal: len(chunks),
				Segment: seg.Number,
			})
		}
	}
	return chunks
}

// compensate removes whatever the failed attempt left behind: index entries first, then the record.
// It runs detached from the caller's cancellation so a timed-out request still cleans up.
func (c *Coordinator) compensate(ctx context.Context, fileId int64, log *logger_i.Logger) {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.compensationTimeout)
	defer cancel()

	ok := true
	if err := c.index.DeleteByFile(cctx, fileId); err != nil {
		ok = false
		log.Error("compensation could not remove index entries, left for reconciliation", "error", err)
	}
	if _, err := c.docs.Delete(cctx, fileId); err != nil {
		ok = false
		log.Error("compensation could not remove document record, left for reconciliation", "error", err)
	}
	metrics.CaptureCompensation(ok)
}
