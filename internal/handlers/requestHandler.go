package handlers

import (
	"net/http"
	"strings"

	"github.com/akolanti/DocChat/internal/adapter"
	"github.com/akolanti/DocChat/internal/adapter/utils"
	"github.com/akolanti/DocChat/internal/api"
	"github.com/akolanti/DocChat/internal/config"
	"github.com/akolanti/DocChat/internal/job"
	"github.com/akolanti/DocChat/internal/rag"
)

// Handlers serves the HTTP surface over one rag.Service and the job queue.
type Handlers struct {
	rag           rag.Service
	jobs          *job.Service
	maxUploadSize int64
}

func NewHandlers(ragService rag.Service, jobService *job.Service) *Handlers {
	logRH.Info("Starting request handlers")
	return &Handlers{rag: ragService, jobs: jobService, maxUploadSize: config.MaxUploadSize}
}

func GetHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// ChatHandler godoc
// @Summary      Ask a question about the uploaded documents
// @Description  Answers from the most relevant document chunks. Omit session_id to start a new session; reuse the returned one to continue it.
// @Tags         Chat
// @Accept       json
// @Produce      json
// @Param        request  body      api.ChatRequest    true  "Question, optional session id and model"
// @Success      200      {object}  api.ChatResponse
// @Failure      400      {object}  api.ErrorResponse  "Empty question or unsupported model"
// @Failure      502      {object}  api.ErrorResponse  "Retrieval or generation failed"
// @Router       /chat [post]
func (h *Handlers) ChatHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	var req api.ChatRequest
	if !decodeJson(w, r, &req) {
		return
	}
	answer, err := h.rag.Chat(r.Context(), req.Question, req.SessionId, req.Model)
	if err != nil {
		writeServiceError(w, req.SessionId, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToChatResponse(answer))
}

// UploadHandler godoc
// @Summary      Upload and index a document
// @Description  Indexes a .pdf, .docx or .html file synchronously. On failure nothing is kept.
// @Tags         Documents
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "The document"
// @Success      200   {object}  api.UploadResponse
// @Failure      400   {object}  api.ErrorResponse  "Unsupported type or empty file"
// @Failure      422   {object}  api.ErrorResponse  "Document could not be parsed or has no text"
// @Failure      503   {object}  api.ErrorResponse  "Index unavailable"
// @Router       /upload_doc [post]
func (h *Handlers) UploadHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	filename, raw, ok := readUpload(w, r, h.maxUploadSize)
	if !ok {
		return
	}
	fileId, err := h.rag.Ingest(r.Context(), filename, raw)
	if err != nil {
		writeServiceError(w, filename, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, api.UploadResponse{
		FileId:  fileId,
		Message: "File " + filename + " has been successfully uploaded and indexed",
	})
}

// ListDocumentsHandler godoc
// @Summary      List indexed documents
// @Tags         Documents
// @Produce      json
// @Success      200  {array}   api.DocumentInfo  "Newest first"
// @Router       /list_documents [get]
func (h *Handlers) ListDocumentsHandler(w http.ResponseWriter, r *http.Request) {
	records, err := h.rag.List(r.Context())
	if err != nil {
		writeServiceError(w, "", err)
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToDocumentInfos(records))
}

// DeleteDocumentHandler godoc
// @Summary      Delete a document
// @Description  Removes the document's chunks from the index, then its record. Deleting an unknown id succeeds with outcome NotFound.
// @Tags         Documents
// @Accept       json
// @Produce      json
// @Param        request  body      api.DeleteFileRequest  true  "File id"
// @Success      200      {object}  api.DeleteResponse
// @Failure      503      {object}  api.ErrorResponse  "Index delete failed, record kept"
// @Router       /delete-doc [post]
func (h *Handlers) DeleteDocumentHandler(w http.ResponseWriter, r *http.Request) {
	var req api.DeleteFileRequest
	if !decodeJson(w, r, &req) {
		return
	}
	outcome, err := h.rag.Delete(r.Context(), req.FileId)
	if err != nil {
		writeServiceError(w, "", err)
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToDeleteResponse(req.FileId, outcome))
}

// HistoryHandler godoc
// @Summary      Get a session's turns
// @Tags         Chat
// @Produce      json
// @Param        sessionId  path      string  true  "Session id"
// @Success      200        {object}  api.HistoryResponse
// @Router       /history/{sessionId} [get]
func (h *Handlers) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	sessionId := strings.TrimSpace(utils.GetChiURLParam(r, "sessionId"))
	turns, err := h.rag.History(r.Context(), sessionId)
	if err != nil {
		writeServiceError(w, sessionId, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToHistoryResponse(sessionId, turns))
}
