package mcpServer

import (
	"net/http"

	"github.com/akolanti/DocChat/internal/rag"
	"github.com/akolanti/DocChat/pkg/logger_i"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const Version = "1.0.0"

// Server exposes the rag service as MCP tools.
type Server struct {
	rag    rag.Service
	server *mcp.Server
	logger *logger_i.Logger
}

func NewServer(ragService rag.Service) *Server {
	s := &Server{
		rag:    ragService,
		server: mcp.NewServer(&mcp.Implementation{Name: "docchat", Version: Version}, nil),
		logger: logger_i.NewLogger("MCP Server"),
	}
	s.registerTools()
	return s
}

// Handler serves the streamable HTTP transport; mount it at /mcp.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)
}
