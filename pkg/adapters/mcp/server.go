// Package mcp exposes the node editor as an MCP server, so agent tooling
// can build and inspect scenes through tool calls.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/espalier"
	"github.com/aretw0/espalier/pkg/domain"
)

// Editor defines the scene-engine surface exposed over MCP.
type Editor interface {
	Models() []domain.ModelSpec
	CreateNode(model string, at domain.Point) (domain.NodeRecord, error)
	MoveNode(id domain.NodeID, to domain.Point) (domain.NodeRecord, error)
	RemoveNode(id domain.NodeID) error
	Connect(out domain.NodeID, outPort domain.PortIndex, in domain.NodeID, inPort domain.PortIndex) (domain.ConnectionRecord, error)
	Disconnect(id domain.ConnectionID) error
	Document() *domain.SceneDocument
}

// ModelsResponse aligns with the HTTP adapter and keeps the tool output a
// single object.
type ModelsResponse struct {
	Models []domain.ModelSpec `json:"models" jsonschema_description:"Every registered node model"`
}

// ListModelsArgs are the arguments of the list_models tool.
type ListModelsArgs struct {
	Category string `json:"category,omitempty" jsonschema_description:"Only return models filed under this category"`
}

// AddNodeArgs are the arguments of the add_node tool.
type AddNodeArgs struct {
	Model string  `json:"model" jsonschema_description:"Registered model name"`
	X     float64 `json:"x,omitempty" jsonschema_description:"Horizontal placement"`
	Y     float64 `json:"y,omitempty" jsonschema_description:"Vertical placement"`
}

// MoveNodeArgs are the arguments of the move_node tool.
type MoveNodeArgs struct {
	ID string  `json:"id" jsonschema_description:"Node id"`
	X  float64 `json:"x" jsonschema_description:"New horizontal placement"`
	Y  float64 `json:"y" jsonschema_description:"New vertical placement"`
}

// ConnectArgs are the arguments of the connect tool.
type ConnectArgs struct {
	OutID    string `json:"out_id" jsonschema_description:"Source node id"`
	OutIndex int    `json:"out_index" jsonschema_description:"Output port index on the source node"`
	InID     string `json:"in_id" jsonschema_description:"Target node id"`
	InIndex  int    `json:"in_index" jsonschema_description:"Input port index on the target node"`
}

// Server wraps the editor and exposes it as an MCP Server.
type Server struct {
	editor    Editor
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(editor Editor) *Server {
	s := &Server{
		editor:    editor,
		mcpServer: server.NewMCPServer("espalier-mcp", strings.TrimSpace(espalier.Version)),
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

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)

	go func() {
		slog.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		// Create a timeout context for the graceful shutdown
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		fmt.Println("\nShutdown signal received, shutting down server...")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		slog.Debug("CORS Middleware", "method", r.Method, "path", r.URL.Path)
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With, Baggage, Sentry-Trace")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: list_models
	listTool := mcp.NewTool("list_models",
		mcp.WithDescription("List the registered node models, optionally filtered by category."),
		mcp.WithString("category", mcp.Description("Only return models filed under this category (optional)")),
		mcp.WithOutputSchema[ModelsResponse](),
	)
	s.mcpServer.AddTool(listTool, mcp.NewStructuredToolHandler(s.handleListModels))

	// TOOL: add_node
	addTool := mcp.NewTool("add_node",
		mcp.WithDescription("Create a node from a registered model and place it on the scene."),
		mcp.WithString("model", mcp.Required(), mcp.Description("Registered model name")),
		mcp.WithNumber("x", mcp.Description("Horizontal placement (optional)")),
		mcp.WithNumber("y", mcp.Description("Vertical placement (optional)")),
		mcp.WithOutputSchema[domain.NodeRecord](),
	)
	s.mcpServer.AddTool(addTool, mcp.NewStructuredToolHandler(s.handleAddNode))

	// TOOL: move_node
	moveTool := mcp.NewTool("move_node",
		mcp.WithDescription("Move an existing node to a new position."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Node id")),
		mcp.WithNumber("x", mcp.Required(), mcp.Description("New horizontal placement")),
		mcp.WithNumber("y", mcp.Required(), mcp.Description("New vertical placement")),
		mcp.WithOutputSchema[domain.NodeRecord](),
	)
	s.mcpServer.AddTool(moveTool, mcp.NewStructuredToolHandler(s.handleMoveNode))

	// TOOL: connect
	connectTool := mcp.NewTool("connect",
		mcp.WithDescription("Connect an output port to an input port. Fails with a reason when the ports do not accept each other."),
		mcp.WithString("out_id", mcp.Required(), mcp.Description("Source node id")),
		mcp.WithNumber("out_index", mcp.Required(), mcp.Description("Output port index on the source node")),
		mcp.WithString("in_id", mcp.Required(), mcp.Description("Target node id")),
		mcp.WithNumber("in_index", mcp.Required(), mcp.Description("Input port index on the target node")),
		mcp.WithOutputSchema[domain.ConnectionRecord](),
	)
	s.mcpServer.AddTool(connectTool, mcp.NewStructuredToolHandler(s.handleConnect))

	// TOOL: remove_node
	s.mcpServer.AddTool(mcp.NewTool("remove_node",
		mcp.WithDescription("Remove a node and every connection attached to it."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Node id")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := s.editor.RemoveNode(domain.NodeID(id)); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("remove failed: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("node %s removed", id)), nil
	})

	// TOOL: disconnect
	s.mcpServer.AddTool(mcp.NewTool("disconnect",
		mcp.WithDescription("Delete a connection."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Connection id")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := s.editor.Disconnect(domain.ConnectionID(id)); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("disconnect failed: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("connection %s deleted", id)), nil
	})

	// TOOL: get_scene
	s.mcpServer.AddTool(mcp.NewTool("get_scene",
		mcp.WithDescription("Get the full scene document for introspection."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		jsonBytes, _ := json.Marshal(s.editor.Document())
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})
}

// Handler methods for structured tools

func (s *Server) handleListModels(ctx context.Context, request mcp.CallToolRequest, args ListModelsArgs) (ModelsResponse, error) {
	specs := s.editor.Models()
	if args.Category != "" {
		filtered := make([]domain.ModelSpec, 0, len(specs))
		for _, spec := range specs {
			if spec.Category == args.Category {
				filtered = append(filtered, spec)
			}
		}
		specs = filtered
	}
	return ModelsResponse{Models: specs}, nil
}

func (s *Server) handleAddNode(ctx context.Context, request mcp.CallToolRequest, args AddNodeArgs) (domain.NodeRecord, error) {
	record, err := s.editor.CreateNode(args.Model, domain.Point{X: args.X, Y: args.Y})
	if err != nil {
		return domain.NodeRecord{}, fmt.Errorf("add node failed: %w", err)
	}
	return record, nil
}

func (s *Server) handleMoveNode(ctx context.Context, request mcp.CallToolRequest, args MoveNodeArgs) (domain.NodeRecord, error) {
	record, err := s.editor.MoveNode(domain.NodeID(args.ID), domain.Point{X: args.X, Y: args.Y})
	if err != nil {
		return domain.NodeRecord{}, fmt.Errorf("move node failed: %w", err)
	}
	return record, nil
}

func (s *Server) handleConnect(ctx context.Context, request mcp.CallToolRequest, args ConnectArgs) (domain.ConnectionRecord, error) {
	record, err := s.editor.Connect(
		domain.NodeID(args.OutID), domain.PortIndex(args.OutIndex),
		domain.NodeID(args.InID), domain.PortIndex(args.InIndex),
	)
	if err != nil {
		slog.Warn("MCP Connect: Rejected", "reason", domain.RejectionCode(err), "error", err)
		return domain.ConnectionRecord{}, fmt.Errorf("connect failed (%s): %w", domain.RejectionCode(err), err)
	}
	return record, nil
}

func (s *Server) registerResources() {
	// EXPOSE: espalier://scene
	s.mcpServer.AddResource(mcp.NewResource("espalier://scene", "Current Scene Document",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.editor.Document())
		if err != nil {
			return nil, fmt.Errorf("failed to encode scene: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "espalier://scene",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
