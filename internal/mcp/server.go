// Package mcp exposes the ledger service as Model Context Protocol tools so
// an assistant can log habits on the owner's behalf.
package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/julianstephens/wellkept/internal/constants"
	"github.com/julianstephens/wellkept/internal/ledger"
)

// Server wraps the MCP server with ledger access for one owner
type Server struct {
	mcpServer *mcp.Server
	svc       *ledger.Service
	owner     string
}

func NewServer(svc *ledger.Service, owner string) *Server {
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    constants.AppName,
			Version: constants.Version,
		},
		nil,
	)

	s := &Server{
		mcpServer: mcpServer,
		svc:       svc,
		owner:     owner,
	}

	s.registerTools()
	s.registerResources()
	return s
}

// Serve runs the server over stdio until ctx is cancelled or stdin closes
func (s *Server) Serve(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}

// Connect attaches the server to an arbitrary transport
func (s *Server) Connect(ctx context.Context, t mcp.Transport) (*mcp.ServerSession, error) {
	return s.mcpServer.Connect(ctx, t, nil)
}
