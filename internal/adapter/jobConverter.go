package adapter

import (
	"fmt"

	"github.com/akolanti/DocChat/internal/api"
	"github.com/akolanti/DocChat/internal/domain/chatModel"
	"github.com/akolanti/DocChat/internal/domain/commonModels"
	"github.com/akolanti/DocChat/internal/domain/jobModel"
)

func ToInitJobResponse(id string) api.InitJobResponse {
	return api.InitJobResponse{
		Id:        id,
		StatusURL: fmt.Sprintf("status/%s", id),
	}
}

func ToAPIResponse(job jobModel.Job) api.JobResponse {
	var errorPtr *api.OutgoingError
	if job.Error.Message != "" || job.Error.Code != 0 {
		errorPtr = &api.OutgoingError{
			Code:    job.Error.Code,
			Kind:    job.Error.Kind,
			Message: job.Error.Message,
			Retry:   job.Error.Retry,
		}
	}

	res := api.JobResponse{
		Id:          job.Id,
		Status:      string(job.Status),
		CurrentStep: string(job.CurrentStep),
		Filename:    job.JobPayload.Filename,
		FileId:      job.JobPayload.FileId,
		Error:       errorPtr,
		StartTime:   job.CreatedTime,
	}
	if !job.EndTime.IsZero() {
		end := job.EndTime
		res.EndTime = &end
	}
	return res
}

func ToChatResponse(answer chatModel.Answer) api.ChatResponse {
	sources := make([]api.Source, len(answer.Sources))
	for i, s := range answer.Sources {
		sources[i] = api.Source{
			FileId:   s.Entry.FileId,
			Filename: s.Entry.Filename,
			Ordinal:  s.Entry.Ordinal,
			Page:     s.Entry.Segment,
			Score:    s.Score,
			Content:  s.Entry.Content,
		}
	}
	return api.ChatResponse{
		Answer:    answer.Answer,
		SessionId: answer.SessionId,
		Model:     answer.Model,
		Sources:   sources,
	}
}

func ToDocumentInfos(records []commonModels.DocumentRecord) []api.DocumentInfo {
	out := make([]api.DocumentInfo, len(records))
	for i, r := range records {
		out[i] = api.DocumentInfo{Id: r.Id, Filename: r.Filename, UploadedTimestamp: r.UploadedAt}
	}
	return out
}

func ToHistoryResponse(sessionId string, turns []chatModel.Turn) api.HistoryResponse {
	out := make([]api.Turn, len(turns))
	for i, t := range turns {
		out[i] = api.Turn{Ordinal: t.Ordinal, Question: t.Question, Answer: t.Answer, Model: t.Model, At: t.At}
	}
	return api.HistoryResponse{SessionId: sessionId, Turns: out}
}

func ToDeleteResponse(fileId int64, outcome commonModels.Outcome) api.DeleteResponse {
	message := fmt.Sprintf("Successfully deleted document with file_id %d from the system.", fileId)
	if outcome == commonModels.NotFound {
		message = fmt.Sprintf("No document with file_id %d exists.", fileId)
	}
	return api.DeleteResponse{FileId: fileId, Outcome: string(outcome), Message: message}
}

func ErrorResponse(id string, message string, code int, kind string, retry bool) api.ErrorResponse {
	return api.ErrorResponse{
		Id: id,
		Error: api.OutgoingError{
			Code:    code,
			Kind:    kind,
			Message: message,
			Retry:   retry,
		},
	}
}
