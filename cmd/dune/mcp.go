package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dunehq/dune/internal/logging"
	"github.com/dunehq/dune/pkg/adapters/mcp"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts the Dune engine as an MCP Server, exposing the gated tool surface
(health, sms_send, run_workflow) to AI agents.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		transport, _ := cmd.Flags().GetString("transport")
		if !cmd.Flags().Changed("transport") {
			transport = cfg.MCPTransport
		}
		port, _ := cmd.Flags().GetInt("port")
		if !cmd.Flags().Changed("port") {
			port = cfg.MCPPort
		}

		logger := logging.New(cfg.SlogLevel())
		slog.SetDefault(logger)
		logger.Info("startup_mcp", "transport", transport)

		engine, err := buildEngine(cfg, logger)
		if err != nil {
			return err
		}
		srv := mcp.NewServer(engine)

		switch transport {
		case "stdio":
			// Ensure logs don't corrupt JSON-RPC on Stdout
			log.SetOutput(os.Stderr)
			slog.Info("Starting Dune MCP Server (Stdio)...")
			if err := srv.ServeStdio(); err != nil {
				slog.Error("MCP Server execution failed", "error", err)
				os.Exit(1)
			}
		case "sse":
			slog.Info("Starting Dune MCP Server (SSE)", "port", port)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := srv.ServeSSE(ctx, port); err != nil {
				if err != http.ErrServerClosed {
					slog.Error("MCP Server execution failed", "error", err)
					os.Exit(1)
				}
			}
			slog.Info("MCP Server stopped gracefully")
		default:
			log.Fatalf("Unknown transport: %s. Supported: stdio, sse", transport)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8081, "Port to listen on (only for SSE)")
}
