// Package mcp exposes the Dune engine and its action gateway over the
// Model Context Protocol, so external agents invoke tools only through the
// gated path.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mitchellh/mapstructure"

	"github.com/dunehq/dune"
	"github.com/dunehq/dune/pkg/domain"
	"github.com/dunehq/dune/pkg/gateway"
)

// ConversationResponse is the structured result of a full workflow run.
type ConversationResponse struct {
	AgentOutput string `json:"agentOutput" jsonschema_description:"Final policy-vetted reply"`
	State       string `json:"state" jsonschema_description:"Terminal state of the conversation"`
}

// Server wraps the Dune Engine and exposes it as an MCP Server.
type Server struct {
	engine    *dune.Engine
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(engine *dune.Engine) *Server {
	s := &Server{
		engine:    engine,
		mcpServer: server.NewMCPServer("dune-mcp", dune.Version),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: health
	s.mcpServer.AddTool(mcp.NewTool("health",
		mcp.WithDescription("Liveness probe. Returns 'ok'."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText("ok"), nil
	})

	// TOOL: sms_send
	smsTool := mcp.NewTool("sms_send",
		mcp.WithDescription("Send an outbound SMS on a tenant's behalf through the gated dispatch path."),
		mcp.WithString("tenantId", mcp.Required(), mcp.Description("Tenant identifier")),
		mcp.WithString("userId", mcp.Required(), mcp.Description("User identifier")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Message body (1-1000 characters)")),
		mcp.WithOutputSchema[gateway.Result](),
	)
	s.mcpServer.AddTool(smsTool, mcp.NewStructuredToolHandler(s.handleSendSMS))

	// TOOL: run_workflow
	runTool := mcp.NewTool("run_workflow",
		mcp.WithDescription("Run the full conversation flow for the given input and return the final output."),
		mcp.WithString("tenantId", mcp.Description("Tenant identifier (optional, defaults to the configured tenant)")),
		mcp.WithString("userInput", mcp.Description("Untrusted user input")),
		mcp.WithOutputSchema[ConversationResponse](),
	)
	s.mcpServer.AddTool(runTool, mcp.NewStructuredToolHandler(s.handleRunWorkflow))
}

// Handler methods for structured tools

func (s *Server) handleSendSMS(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (gateway.Result, error) {
	var payload domain.SMSPayload
	if err := mapstructure.Decode(args, &payload); err != nil {
		return gateway.Result{}, fmt.Errorf("invalid arguments: %w", err)
	}

	result, err := s.engine.SendSMS(ctx, payload)
	if err != nil {
		var vErr *domain.ValidationError
		if errors.As(err, &vErr) {
			return gateway.Result{}, fmt.Errorf("payload rejected: %w", vErr)
		}
		return gateway.Result{}, fmt.Errorf("dispatch failed: %w", err)
	}
	return result, nil
}

func (s *Server) handleRunWorkflow(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ConversationResponse, error) {
	tenantID, _ := args["tenantId"].(string)
	userInput, _ := args["userInput"].(string)

	final, err := s.engine.RunConversation(ctx, tenantID, userInput)
	if err != nil {
		return ConversationResponse{}, fmt.Errorf("workflow failed: %w", err)
	}
	return ConversationResponse{
		AgentOutput: final.LastOutput,
		State:       final.Current,
	}, nil
}

func (s *Server) registerResources() {
	// EXPOSE: dune://graph
	s.mcpServer.AddResource(mcp.NewResource("dune://graph", "Conversation Graph Definition",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.engine.Inspect())
		if err != nil {
			return nil, fmt.Errorf("failed to marshal graph: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "dune://graph",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})

	// EXPOSE: dune://system-prompt
	s.mcpServer.AddResource(mcp.NewResource("dune://system-prompt", "Agent System Prompt",
		mcp.WithMIMEType("text/plain"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "dune://system-prompt",
				MIMEType: "text/plain",
				Text:     domain.SystemPrompt,
			},
		}, nil
	})
}
