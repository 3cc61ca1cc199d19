package rag_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/akolanti/DocChat/internal/data/store"
	"github.com/akolanti/DocChat/internal/domain/commonModels"
	"github.com/akolanti/DocChat/internal/domain/jobModel"
	"github.com/akolanti/DocChat/internal/rag"
	"github.com/akolanti/DocChat/internal/rag/index"
	"github.com/akolanti/DocChat/internal/rag/ingest"
	"github.com/akolanti/DocChat/internal/rag/retrieval"
	"github.com/akolanti/DocChat/internal/rag/vectorDB/memoryDB"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const handbook = `<html><head><title>Staff Handbook</title></head><body>
<p>Employees receive twenty days of paid vacation per year.</p>
<p>Expense reports are due by the fifth of each month.</p>
</body></html>`

type env struct {
	docs    *store.InMemoryMetadataStore
	index   *index.Index
	service rag.Service
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		docs:  store.InitInMemoryMetadataStore(),
		index: index.New(index.HashEmbedder{}, memoryDB.NewStorage(), 8),
	}
	svc, err := rag.NewService(rag.Dependencies{
		Docs:    e.docs,
		Index:   e.index,
		History: store.InitInMemoryHistoryStore(),
		LLM:     &MockLLM{},
	}, rag.Options{
		Ingest:      ingest.Options{ChunkSize: 80, ChunkOverlap: 10, StagingDir: t.TempDir()},
		Retrieval:   retrieval.Options{TopK: 1, Models: []string{"gpt-4o-mini"}},
		GracePeriod: time.Hour,
	})
	require.NoError(t, err)
	e.service = svc
	return e
}

func TestService_DocumentLifecycle(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	id, err := e.service.Ingest(ctx, "handbook.html", []byte(handbook))
	require.NoError(t, err)

	list, err := e.service.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].Id)
	assert.Equal(t, "handbook.html", list[0].Filename)

	answer, err := e.service.Chat(ctx, "How many vacation days?", "", "")
	require.NoError(t, err)
	assert.Contains(t, answer.Answer, "vacation")
	require.Len(t, answer.Sources, 1)
	assert.Equal(t, id, answer.Sources[0].Entry.FileId)

	turns, err := e.service.History(ctx, answer.SessionId)
	require.NoError(t, err)
	assert.Len(t, turns, 1)

	outcome, err := e.service.Delete(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, commonModels.Deleted, outcome)

	list, _ = e.service.List(ctx)
	assert.Empty(t, list)
	n, _ := e.index.Count(ctx, id)
	assert.Zero(t, n)

	outcome, err = e.service.Delete(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, commonModels.NotFound, outcome)
}

func TestService_DeleteRejectsBadId(t *testing.T) {
	e := newEnv(t)
	_, err := e.service.Delete(context.Background(), 0)
	assert.ErrorIs(t, err, commonModels.ErrValidation)
}

func TestService_HistoryNeedsSessionId(t *testing.T) {
	e := newEnv(t)
	_, err := e.service.History(context.Background(), "")
	assert.ErrorIs(t, err, commonModels.ErrValidation)

	turns, err := e.service.History(context.Background(), "never-seen")
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestIngestDocument_Scenarios(t *testing.T) {
	tests := []struct {
		name         string
		content      string
		expectedStep jobModel.InternalStatus
		expectedCode int
	}{
		{name: "Success", content: handbook, expectedStep: jobModel.Complete},
		{name: "Empty_Document", content: "<html><body><script>x()</script></body></html>", expectedStep: jobModel.Error, expectedCode: http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			e := newEnv(t)
			path, err := e.service.Stage("doc.html", []byte(tt.content))
			require.NoError(t, err)

			job := e.service.IngestDocument(ctx, jobModel.Job{
				Id:         "job-1",
				JobType:    jobModel.JobTypeIngest,
				JobPayload: jobModel.JobPayload{Filename: "doc.html", StagedPath: path},
			})

			assert.Equal(t, tt.expectedStep, job.CurrentStep)
			assert.Equal(t, tt.expectedCode, job.Error.Code)
			_, statErr := os.Stat(path)
			assert.True(t, errors.Is(statErr, os.ErrNotExist), "staged file must be removed")

			list, _ := e.service.List(ctx)
			if tt.expectedCode == 0 {
				require.Len(t, list, 1)
				assert.Equal(t, list[0].Id, job.JobPayload.FileId)
			} else {
				assert.Equal(t, jobModel.JobStatusError, job.Status)
				assert.Empty(t, list)
			}
		})
	}
}

func TestReconcile(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	live, err := e.service.Ingest(ctx, "live.html", []byte(handbook))
	require.NoError(t, err)

	stale, _ := e.docs.Insert(ctx, "stale.pdf", time.Now().Add(-2*time.Hour))
	young, _ := e.docs.Insert(ctx, "young.pdf", time.Now())

	const ghost int64 = 9999
	_, err = e.index.Add(ctx, "ghost.pdf", []commonModels.Chunk{{Text: "left behind", FileId: ghost, Ordinal: 0}})
	require.NoError(t, err)

	report, err := e.service.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{ghost}, report.OrphanEntries)
	assert.Equal(t, []int64{stale.Id}, report.OrphanRecords)

	n, _ := e.index.Count(ctx, ghost)
	assert.Zero(t, n)
	_, err = e.docs.Get(ctx, young.Id)
	assert.NoError(t, err, "records inside the grace period are left alone")
	_, err = e.docs.Get(ctx, live)
	assert.NoError(t, err)

	again, err := e.service.Reconcile(ctx)
	require.NoError(t, err)
	assert.Empty(t, again.OrphanEntries)
	assert.Empty(t, again.OrphanRecords)
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err   error
		code  int
		retry bool
	}{
		{commonModels.Invalid("ingest", "bad"), http.StatusBadRequest, false},
		{commonModels.FileError(commonModels.ErrParse, "ingest.parse", 1, nil), http.StatusUnprocessableEntity, false},
		{commonModels.FileError(commonModels.ErrEmptyDocument, "ingest.parse", 1, nil), http.StatusUnprocessableEntity, false},
		{commonModels.FileError(commonModels.ErrNotFound, "metadata.get", 1, nil), http.StatusNotFound, false},
		{commonModels.SessionError(commonModels.ErrGeneration, "chat.generate", "s", errors.New("x")), http.StatusBadGateway, true},
		{commonModels.SessionError(commonModels.ErrGeneration, "chat.generate", "s", context.DeadlineExceeded), http.StatusGatewayTimeout, true},
		{commonModels.FileError(commonModels.ErrIndexDelete, "index.delete", 1, nil), http.StatusServiceUnavailable, true},
		{errors.New("boom"), http.StatusInternalServerError, false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.err), func(t *testing.T) {
			code, _, retry := rag.ErrorStatus(tt.err)
			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.retry, retry)
		})
	}
}
