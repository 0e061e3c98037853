package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"metasearch/internal/domain"
)

const (
	serverName      = "metasearch"
	serverVersion   = "1.0.0"
	shutdownTimeout = 5 * time.Second
)

// Server exposes registered tools over the Model Context Protocol,
// either on stdio or as a streamable HTTP endpoint.
type Server struct {
	mcp       *server.MCPServer
	transport string
	addr      string
	logger    *slog.Logger
}

// New builds an MCP server advertising every tool the executor knows.
// Tool params are published from each tool's own JSON schema, so protocol
// clients see the same contract the schema validator enforces.
func New(transport, addr string, tools domain.ToolExecutor, logger *slog.Logger) *Server {
	s := server.NewMCPServer(serverName, serverVersion,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	for _, sch := range tools.Schemas() {
		t, err := tools.Get(sch.Name)
		if err != nil {
			logger.Warn("mcp tool lookup failed, skipping", "tool", sch.Name, "error", err)
			continue
		}
		s.AddTool(
			mcp.NewToolWithRawSchema(sch.Name, sch.Description, sch.Parameters),
			toolHandler(t, logger),
		)
		logger.Debug("mcp tool registered", "tool", sch.Name)
	}

	return &Server{
		mcp:       s,
		transport: transport,
		addr:      addr,
		logger:    logger,
	}
}

// Run serves MCP requests until ctx is cancelled. Blocks.
func (s *Server) Run(ctx context.Context) error {
	switch s.transport {
	case "http":
		httpSrv := server.NewStreamableHTTPServer(s.mcp)
		errCh := make(chan error, 1)
		go func() { errCh <- httpSrv.Start(s.addr) }()

		s.logger.Info("mcp server started", "transport", "http", "addr", s.addr)

		select {
		case err := <-errCh:
			if err != nil && err != http.ErrServerClosed {
				return fmt.Errorf("mcp http serve: %w", err)
			}
			return nil
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return httpSrv.Shutdown(shutdownCtx)
		}
	default:
		s.logger.Info("mcp server started", "transport", "stdio")

		stdio := server.NewStdioServer(s.mcp)
		stdio.SetErrorLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn))
		return stdio.Listen(ctx, os.Stdin, os.Stdout)
	}
}

// toolHandler adapts a domain.Tool to the MCP handler signature.
func toolHandler(t domain.Tool, logger *slog.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		raw, err := json.Marshal(req.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		result, err := t.Execute(ctx, raw)
		if err != nil {
			logger.Warn("mcp tool execution failed", "tool", t.Name(), "error", err)
			return nil, err
		}
		if result.IsError {
			return mcp.NewToolResultError(result.Content), nil
		}
		return mcp.NewToolResultText(result.Content), nil
	}
}
