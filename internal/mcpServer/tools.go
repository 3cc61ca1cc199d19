package mcpServer

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/akolanti/DocChat/internal/adapter"
	"github.com/akolanti/DocChat/internal/api"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type ChatInput struct {
	Question  string `json:"question" jsonschema:"the question to answer from the uploaded documents"`
	SessionId string `json:"session_id,omitempty" jsonschema:"session to continue; omit to start a new one"`
	Model     string `json:"model,omitempty" jsonschema:"chat model id, defaults to the server default"`
}

type IngestInput struct {
	Filename      string `json:"filename" jsonschema:"file name including its .pdf, .docx or .html extension"`
	ContentBase64 string `json:"content_base64" jsonschema:"the file bytes, base64 encoded"`
}

type IngestOutput struct {
	FileId int64 `json:"file_id"`
}

type ListInput struct{}

type ListOutput struct {
	Documents []api.DocumentInfo `json:"documents"`
}

type DeleteInput struct {
	FileId int64 `json:"file_id" jsonschema:"id returned by ingest_document or list_documents"`
}

type HistoryInput struct {
	SessionId string `json:"session_id" jsonschema:"the session id returned by chat"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "chat",
		Description: "Answer a question grounded in the uploaded documents. Returns the answer, the session id to continue the conversation and the source chunks.",
	}, s.handleChat)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ingest_document",
		Description: "Upload and index a .pdf, .docx or .html document. Returns its file id.",
	}, s.handleIngest)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_documents",
		Description: "List indexed documents, newest first.",
	}, s.handleList)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "delete_document",
		Description: "Delete a document and its indexed chunks. Deleting an unknown id reports NotFound.",
	}, s.handleDelete)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_history",
		Description: "Get the question and answer turns of a chat session in order.",
	}, s.handleHistory)
}

func (s *Server) handleChat(ctx context.Context, _ *mcp.CallToolRequest, input ChatInput) (*mcp.CallToolResult, api.ChatResponse, error) {
	answer, err := s.rag.Chat(ctx, input.Question, input.SessionId, input.Model)
	if err != nil {
		return nil, api.ChatResponse{}, err
	}
	return nil, adapter.ToChatResponse(answer), nil
}

func (s *Server) handleIngest(ctx context.Context, _ *mcp.CallToolRequest, input IngestInput) (*mcp.CallToolResult, IngestOutput, error) {
	raw, err := base64.StdEncoding.DecodeString(input.ContentBase64)
	if err != nil {
		return nil, IngestOutput{}, fmt.Errorf("content_base64 is not valid base64: %w", err)
	}
	fileId, err := s.rag.Ingest(ctx, input.Filename, raw)
	if err != nil {
		return nil, IngestOutput{}, err
	}
	s.logger.Info("document ingested over mcp", "fileId", fileId)
	return nil, IngestOutput{FileId: fileId}, nil
}

func (s *Server) handleList(ctx context.Context, _ *mcp.CallToolRequest, _ ListInput) (*mcp.CallToolResult, ListOutput, error) {
	records, err := s.rag.List(ctx)
	if err != nil {
		return nil, ListOutput{}, err
	}
	return nil, ListOutput{Documents: adapter.ToDocumentInfos(records)}, nil
}

func (s *Server) handleDelete(ctx context.Context, _ *mcp.CallToolRequest, input DeleteInput) (*mcp.CallToolResult, api.DeleteResponse, error) {
	outcome, err := s.rag.Delete(ctx, input.FileId)
	if err != nil {
		return nil, api.DeleteResponse{}, err
	}
	return nil, adapter.ToDeleteResponse(input.FileId, outcome), nil
}

func (s *Server) handleHistory(ctx context.Context, _ *mcp.CallToolRequest, input HistoryInput) (*mcp.CallToolResult, api.HistoryResponse, error) {
	turns, err := s.rag.History(ctx, input.SessionId)
	if err != nil {
		return nil, api.HistoryResponse{}, err
	}
	return nil, adapter.ToHistoryResponse(input.SessionId, turns), nil
}
