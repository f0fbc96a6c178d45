package mcpserver

import (
	"net/http"

	"agent-arena/internal/app/arena"
	"agent-arena/internal/app/public"

	"github.com/mark3labs/mcp-go/server"
)

type Server struct {
	arenaSvc  *arena.Service
	publicSvc *public.Service

	mcpServer  *server.MCPServer
	httpServer *server.StreamableHTTPServer
}

func New(arenaSvc *arena.Service, publicSvc *public.Service) *Server {
	mcpSrv := server.NewMCPServer(
		"agent-arena",
		"0.1.0",
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	s := &Server{
		arenaSvc:   arenaSvc,
		publicSvc:  publicSvc,
		mcpServer:  mcpSrv,
		httpServer: server.NewStreamableHTTPServer(mcpSrv, server.WithStateLess(true), server.WithDisableStreaming(true)),
	}
	s.registerPublicTools()
	s.registerArenaTools()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.httpServer
}
