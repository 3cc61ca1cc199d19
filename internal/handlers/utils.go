package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/akolanti/DocChat/internal/adapter"
	"github.com/akolanti/DocChat/internal/rag"
	"github.com/akolanti/DocChat/pkg/logger_i"
)

var logRH = logger_i.NewLogger("RequestHandler")

func writeJsonResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// headers are gone, nothing left but to log
		logRH.Error("Error encoding response", "error", err)
	}
}

func WriteErrorResponse(w http.ResponseWriter, httpCode int, id string, message string) {
	writeJsonResponse(w, httpCode, adapter.ErrorResponse(id, message, httpCode, "", false))
}

// writeServiceError reports a service failure with the status its kind maps to.
// Server side failures hide their cause from the client.
func writeServiceError(w http.ResponseWriter, id string, err error) {
	code, kind, retry := rag.ErrorStatus(err)
	message := err.Error()
	if code >= http.StatusInternalServerError {
		logRH.Error("Request failed", "id", id, "kind", kind, "error", err)
		message = http.StatusText(code)
	}
	writeJsonResponse(w, code, adapter.ErrorResponse(id, message, code, kind, retry))
}

func validateContext(ctx context.Context) bool {
	if ctx.Err() != nil {
		logRH.Warn("context error", "error", ctx.Err())
		return false
	}
	return true
}

func decodeJson(w http.ResponseWriter, r *http.Request, dst any) bool {
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			logRH.Error("Couldn't close the request body", "error", err)
		}
	}(r.Body)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "", "Bad Request: "+err.Error())
		return false
	}
	return true
}

// readUpload pulls the "file" part of a multipart upload into memory.
func readUpload(w http.ResponseWriter, r *http.Request, maxSize int64) (string, []byte, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)
	if err := r.ParseMultipartForm(maxSize); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "", "File too large or bad request")
		return "", nil, false
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "", "Could not retrieve file")
		return "", nil, false
	}
	defer func(f multipart.File) { _ = f.Close() }(file)

	raw, err := io.ReadAll(file)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteErrorResponse(w, http.StatusRequestEntityTooLarge, header.Filename, fmt.Sprintf("File larger than %d bytes", maxSize))
			return "", nil, false
		}
		WriteErrorResponse(w, http.StatusBadRequest, header.Filename, "Could not read file")
		return "", nil, false
	}
	return header.Filename, raw, true
}
