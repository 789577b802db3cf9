// ABOUTME: MCP command starts Model Context Protocol server
// ABOUTME: Enables LLM agents like Claude to route signals via stdio
package commands

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harper/cortex-standalone/internal/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// NewMCPCmd creates the MCP command
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for LLM agents",
		Long: `Start MCP server for LLM agents

Runs cortex as an MCP (Model Context Protocol) server over stdio,
exposing signal routing, handshake resolution, briefings, alerts,
and stress checks as tools.`,
		RunE: runMCPCmd,
		Example: `  # Start MCP server (typically called by an agent host)
  cortex mcp

  # Configure in claude_desktop_config.json:
  # {
  #   "mcpServers": {
  #     "cortex": {
  #       "command": "cortex",
  #       "args": ["mcp"]
  #     }
  #   }
  # }`,
	}

	return cmd
}

func runMCPCmd(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	if rt.cfg.OpenAIKey == "" && !quiet {
		log.Println("Warning: OPENAI_API_KEY not set - semantic parsing and embeddings disabled")
	}

	server := mcpserver.NewMCPServer(
		"Cortex Signal Router",
		"0.1.0",
	)

	handlers := mcp.RegisterTools(server, rt.router, rt.resolver, rt.briefing, rt.stress)

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !quiet {
		log.Println("Cortex MCP server starting on stdio...")
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mcpserver.ServeStdio(server)
	}()

	select {
	case <-ctx.Done():
		if !quiet {
			log.Println("Shutdown signal received, draining background hooks...")
		}
		handlers.Shutdown()
		return nil
	case err := <-serverErr:
		handlers.Shutdown()
		return err
	}
}
