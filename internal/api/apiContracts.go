// @title           Document Chat API
// @version         1.0
// @description     Upload documents, then chat with an assistant grounded in them.
// @termsOfService  http://swagger.io/terms/

// @contact.name    API Support
// @contact.url
// @contact.email   ank.github@gmail.com

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https
package api

import "time"

// requests---------------------

type ChatRequest struct {
	Question  string `json:"question" validate:"required" example:"What is the refund policy?"`
	SessionId string `json:"session_id,omitempty" example:"3f1c2a9e-8d7b-4c51-9a0e-2b6f4d8e1c77"`
	Model     string `json:"model,omitempty" example:"gpt-4o-mini"`
}

type DeleteFileRequest struct {
	FileId int64 `json:"file_id" validate:"required" example:"12"`
}

// responses--------------------

type ChatResponse struct {
	Answer    string   `json:"answer"`
	SessionId string   `json:"session_id"`
	Model     string   `json:"model"`
	Sources   []Source `json:"sources"`
}

type Source struct {
	FileId   int64   `json:"file_id"`
	Filename string  `json:"filename"`
	Ordinal  int     `json:"ordinal"`
	Page     int     `json:"page,omitempty"`
	Score    float32 `json:"score"`
	Content  string  `json:"content"`
}

type DocumentInfo struct {
	Id                int64     `json:"id" example:"12"`
	Filename          string    `json:"filename" example:"handbook.pdf"`
	UploadedTimestamp time.Time `json:"uploaded_timestamp"`
}

type UploadResponse struct {
	FileId  int64  `json:"file_id" example:"12"`
	Message string `json:"message"`
}

type DeleteResponse struct {
	FileId  int64  `json:"file_id" example:"12"`
	Outcome string `json:"outcome" example:"Deleted"`
	Message string `json:"message"`
}

type Turn struct {
	Ordinal  int       `json:"ordinal"`
	Question string    `json:"question"`
	Answer   string    `json:"answer"`
	Model    string    `json:"model"`
	At       time.Time `json:"at"`
}

type HistoryResponse struct {
	SessionId string `json:"session_id"`
	Turns     []Turn `json:"turns"`
}

type InitJobResponse struct {
	Id        string `json:"id"`
	StatusURL string `json:"status_url"`
}

type JobResponse struct {
	Id          string         `json:"id" example:"job_cz109"`
	Status      string         `json:"status" example:"COMPLETE"`
	CurrentStep string         `json:"current_step"`
	Filename    string         `json:"filename,omitempty"`
	FileId      int64          `json:"file_id,omitempty"`
	Error       *OutgoingError `json:"error,omitempty"`
	StartTime   time.Time      `json:"start_time"`
	EndTime     *time.Time     `json:"end_time,omitempty"`
}

type OutgoingError struct {
	Code    int    `json:"code" example:"400"`
	Kind    string `json:"kind,omitempty" example:"validation error"`
	Message string `json:"message" example:"unsupported file type"`
	Retry   bool   `json:"can_retry" example:"false"`
}

type ErrorResponse struct {
	Id    string        `json:"id,omitempty"`
	Error OutgoingError `json:"error"`
}
