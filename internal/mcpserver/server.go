// Package mcpserver exposes the plan engine as MCP tools over stdio.
//
// Every tool call re-reads the plan document; the server keeps no parsed
// state between calls.
package mcpserver

import (
	"context"
	"io"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/afero"

	"github.com/JairoTorregrosa/picopala/internal/logging"
)

// Name is the server name announced during initialization.
const Name = "picopala"

// Version is set at build time via ldflags.
var Version = "dev"

// New creates the MCP server with the plan tools registered.
func New(fs afero.Fs, logger *logging.Logger) *server.MCPServer {
	if logger == nil {
		logger = logging.NopLogger()
	}

	s := server.NewMCPServer(
		Name,
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)

	tools := []planTool{
		newValidateTool(fs, logger),
		newWavesTool(fs, logger),
		newStatusTool(fs, logger),
	}
	for _, t := range tools {
		s.AddTool(t.Definition(), t.Handle)
	}

	return s
}

// Serve runs s on the given streams until ctx is cancelled or in closes.
func Serve(ctx context.Context, s *server.MCPServer, in io.Reader, out io.Writer) error {
	return server.NewStdioServer(s).Listen(ctx, in, out)
}

const instructions = `picopala analyzes markdown plan documents made of "### T1: Name" task sections.
Call plan_validate before acting on a plan, plan_waves to get the parallel execution order,
and plan_status for per-status task counts. Every tool takes the plan file path.`
