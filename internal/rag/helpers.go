package rag

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/akolanti/DocChat/internal/domain/commonModels"
	"github.com/akolanti/DocChat/internal/domain/jobModel"
)

// ErrorStatus maps an error to the HTTP status a transport should report, the taxonomy
// kind name and whether the caller may retry.
func ErrorStatus(err error) (code int, kind string, retry bool) {
	switch k := commonModels.KindOf(err); {
	case errors.Is(k, commonModels.ErrValidation):
		return http.StatusBadRequest, k.Error(), false
	case errors.Is(k, commonModels.ErrParse), errors.Is(k, commonModels.ErrEmptyDocument):
		return http.StatusUnprocessableEntity, k.Error(), false
	case errors.Is(k, commonModels.ErrNotFound):
		return http.StatusNotFound, k.Error(), false
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout", true
	case errors.Is(k, commonModels.ErrEmbedding), errors.Is(k, commonModels.ErrRetrieval), errors.Is(k, commonModels.ErrGeneration):
		return http.StatusBadGateway, k.Error(), true
	case errors.Is(k, commonModels.ErrIndexWrite), errors.Is(k, commonModels.ErrIndexDelete), errors.Is(k, commonModels.ErrStore):
		return http.StatusServiceUnavailable, k.Error(), true
	default:
		return http.StatusInternalServerError, "internal error", false
	}
}

func (s *service) jobError(job jobModel.Job, err error) jobModel.Job {
	code, kind, retry := ErrorStatus(err)
	s.logger.Error("ingestion job failed", "jobId", job.Id, "traceId", job.TraceId, "kind", kind, "error", err)

	message := err.Error()
	if code >= http.StatusInternalServerError {
		message = http.StatusText(code)
	}
	job.Error = jobModel.JobError{
		Code:    code,
		Kind:    kind,
		Message: message,
		Retry:   retry,
	}
	job.Status = jobModel.JobStatusError
	job.CurrentStep = jobModel.Error
	job.EndTime = time.Now()
	return job
}
