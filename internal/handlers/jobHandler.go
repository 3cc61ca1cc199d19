package handlers

import (
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/akolanti/DocChat/internal/adapter"
	"github.com/akolanti/DocChat/internal/adapter/utils"
	"github.com/akolanti/DocChat/internal/config"
	"github.com/akolanti/DocChat/internal/domain/jobModel"
	"github.com/akolanti/DocChat/pkg/logger_i"
)

var logJH = logger_i.NewLogger("JobHandler")

// PostIngestHandler godoc
// @Summary      Queue a document for ingestion
// @Description  Stages the upload and indexes it in the background. Poll the returned status url.
// @Tags         Ingestion
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "The .pdf, .docx or .html file"
// @Success      202   {object}  api.InitJobResponse
// @Failure      400   {object}  api.ErrorResponse  "Unsupported type, empty or too large"
// @Failure      503   {object}  api.ErrorResponse  "Job queue full"
// @Router       /ingest [post]
func (h *Handlers) PostIngestHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	filename, raw, ok := readUpload(w, r, h.maxUploadSize)
	if !ok {
		return
	}
	path, err := h.rag.Stage(filename, raw)
	if err != nil {
		writeServiceError(w, filename, err)
		return
	}

	traceId, _ := r.Context().Value(config.TRACE_ID_KEY).(string)
	newJob := jobModel.Job{
		Id:          utils.GetNewUUID(),
		TraceId:     traceId,
		JobType:     jobModel.JobTypeIngest,
		CreatedTime: time.Now(),
		JobPayload:  jobModel.JobPayload{Filename: filename, StagedPath: path},
	}
	if err := h.jobs.Submit(r.Context(), newJob); err != nil {
		if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			logJH.Error("Couldn't remove staged upload", "path", path, "error", rmErr)
		}
		logJH.Error("Couldn't queue ingestion", "error", err)
		WriteErrorResponse(w, http.StatusServiceUnavailable, newJob.Id, "Ingestion queue unavailable")
		return
	}
	logJH.Info("Created new job", "jobId", newJob.Id, "traceId", traceId)
	writeJsonResponse(w, http.StatusAccepted, adapter.ToInitJobResponse(newJob.Id))
}

// GetStatusHandler godoc
// @Summary      Get job status
// @Description  Retrieves the current status of an ingestion job.
// @Tags         Ingestion
// @Produce      json
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  api.JobResponse    "The current status of the job"
// @Failure      404  {object}  api.ErrorResponse  "Job not found"
// @Router       /status/{id} [get]
func (h *Handlers) GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	id := utils.GetChiURLParam(r, "id")
	result, isFound := h.jobs.GetJob(r.Context(), id)
	if !isFound {
		WriteErrorResponse(w, http.StatusNotFound, id, "Job not found")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToAPIResponse(result))
}
