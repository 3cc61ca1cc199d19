package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/akolanti/DocChat/internal/api"
	"github.com/akolanti/DocChat/internal/data/store"
	"github.com/akolanti/DocChat/internal/domain/jobModel"
	"github.com/akolanti/DocChat/internal/handlers"
	"github.com/akolanti/DocChat/internal/job"
	"github.com/akolanti/DocChat/internal/middleware"
	"github.com/akolanti/DocChat/internal/rag"
	"github.com/akolanti/DocChat/internal/rag/index"
	"github.com/akolanti/DocChat/internal/rag/ingest"
	"github.com/akolanti/DocChat/internal/rag/llm"
	"github.com/akolanti/DocChat/internal/rag/retrieval"
	"github.com/akolanti/DocChat/internal/rag/vectorDB/memoryDB"
	"github.com/akolanti/DocChat/internal/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const token = "test-token"

type echoLLM struct{}

func (echoLLM) Supports(model string) bool { return true }

func (echoLLM) Generate(ctx context.Context, model string, prompt llm.Prompt) (string, error) {
	return "echo: " + prompt.User, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	svc, err := rag.NewService(rag.Dependencies{
		Docs:    store.InitInMemoryMetadataStore(),
		Index:   index.New(index.HashEmbedder{}, memoryDB.NewStorage(), 8),
		History: store.InitInMemoryHistoryStore(),
		LLM:     echoLLM{},
	}, rag.Options{
		Ingest:    ingest.Options{ChunkSize: 200, ChunkOverlap: 20, StagingDir: t.TempDir()},
		Retrieval: retrieval.Options{Models: []string{"gpt-4o", "gpt-4o-mini"}},
	})
	require.NoError(t, err)

	jobs := job.InitJobService(job.ServiceConfig{
		JobChannel:        make(chan jobModel.Job, 4),
		DispatcherChannel: make(chan bool, 1),
		JobStore:          store.InitInMemoryJobStore(),
	})
	stop := make(chan bool)
	wg := &sync.WaitGroup{}
	worker.NewPool(jobs, svc, stop, wg).Start()

	router := NewRouter(handlers.NewHandlers(svc, jobs), middleware.New(middleware.Options{AuthToken: token}), nil)
	srv := httptest.NewServer(router)
	t.Cleanup(func() {
		srv.Close()
		close(stop)
		wg.Wait()
	})
	return srv
}

func do(t *testing.T, req *http.Request, out any) *http.Response {
	t.Helper()
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func postJSON(t *testing.T, url string, body any, out any) *http.Response {
	t.Helper()
	raw, _ := json.Marshal(body)
	req, _ := http.NewRequest(http.MethodPost, url, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return do(t, req, out)
}

func upload(t *testing.T, url, filename, content string, out any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, _ := mw.CreateFormFile("file", filename)
	_, _ = part.Write([]byte(content))
	require.NoError(t, mw.Close())
	req, _ := http.NewRequest(http.MethodPost, url, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return do(t, req, out)
}

func TestAuthIsRequired(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/list_documents")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Trace-Id"))

	resp, err = http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestDocumentAndChatFlow(t *testing.T) {
	srv := newTestServer(t)

	var uploaded api.UploadResponse
	resp := upload(t, srv.URL+"/upload_doc", "faq.html", "<h1>FAQ</h1><p>Support is open on weekdays.</p>", &uploaded)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Positive(t, uploaded.FileId)

	var docs []api.DocumentInfo
	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/list_documents", nil)
	do(t, req, &docs)
	require.Len(t, docs, 1)
	assert.Equal(t, "faq.html", docs[0].Filename)

	var chat api.ChatResponse
	resp = postJSON(t, srv.URL+"/chat", api.ChatRequest{Question: "When is support open?"}, &chat)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "echo: When is support open?", chat.Answer)
	assert.Equal(t, "gpt-4o-mini", chat.Model)
	require.NotEmpty(t, chat.Sources)

	var history api.HistoryResponse
	req, _ = http.NewRequest(http.MethodGet, srv.URL+"/history/"+chat.SessionId, nil)
	do(t, req, &history)
	assert.Len(t, history.Turns, 1)

	var deleted api.DeleteResponse
	postJSON(t, srv.URL+"/delete-doc", api.DeleteFileRequest{FileId: uploaded.FileId}, &deleted)
	assert.Equal(t, "Deleted", deleted.Outcome)
	postJSON(t, srv.URL+"/delete-doc", api.DeleteFileRequest{FileId: uploaded.FileId}, &deleted)
	assert.Equal(t, "NotFound", deleted.Outcome)
}

func TestErrorStatusCodes(t *testing.T) {
	srv := newTestServer(t)

	var errResp api.ErrorResponse
	resp := upload(t, srv.URL+"/upload_doc", "notes.txt", "plain text", &errResp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "validation error", errResp.Error.Kind)

	resp = upload(t, srv.URL+"/upload_doc", "blank.html", "<script>x()</script>", &errResp)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = postJSON(t, srv.URL+"/chat", api.ChatRequest{Question: "hi", Model: "llama"}, &errResp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/chat", strings.NewReader("{not json"))
	resp = do(t, req, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	req, _ = http.NewRequest(http.MethodGet, srv.URL+"/status/missing", nil)
	resp = do(t, req, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestBackgroundIngestion(t *testing.T) {
	srv := newTestServer(t)

	var accepted api.InitJobResponse
	resp := upload(t, srv.URL+"/ingest", "faq.html", "<p>Returns are accepted within 30 days.</p>", &accepted)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, "status/"+accepted.Id, accepted.StatusURL)

	var status api.JobResponse
	require.Eventually(t, func() bool {
		req, _ := http.NewRequest(http.MethodGet, srv.URL+"/"+accepted.StatusURL, nil)
		do(t, req, &status)
		return status.Status == string(jobModel.JobStatusComplete)
	}, 3*time.Second, 20*time.Millisecond)
	assert.Positive(t, status.FileId)
	assert.Nil(t, status.Error)
}
