package mcpserver

import (
	"context"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"sitebuilder/internal/service"
)

// Server is the MCP server for the site builder.
// It exposes tools, resources, and prompts so AI agents can edit page documents.
type Server struct {
	mcp    *server.MCPServer
	logger *zap.Logger

	// Services (injected from main)
	sites    *service.SiteService
	editor   *service.EditorService
	registry *service.ComponentRegistry

	// Active page context (set by set_active_page and open_page)
	mu           sync.RWMutex
	activePageID string
}

// Deps holds all dependencies passed from main to the MCP server.
type Deps struct {
	Sites    *service.SiteService
	Editor   *service.EditorService
	Registry *service.ComponentRegistry
	Logger   *zap.Logger
	Version  string
}

// New creates and configures a new MCP server with all tools and resources.
func New(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Version == "" {
		deps.Version = "1.0.0"
	}
	s := &Server{
		logger:   deps.Logger,
		sites:    deps.Sites,
		editor:   deps.Editor,
		registry: deps.Registry,
	}

	s.mcp = server.NewMCPServer(
		"sitebuilder-mcp",
		deps.Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
		server.WithPromptCapabilities(true),
	)

	s.registerSiteTools()
	s.registerEditorTools()
	s.registerComponentTools()
	s.registerResources()
	s.registerPrompts()

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	s.logger.Info("starting stdio server")
	return server.ServeStdio(s.mcp)
}

// ── Active page ───────────────────────────────────────────

func (s *Server) setActivePage(pageID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activePageID = pageID
}

// resolvePageID returns the pageId from tool args or falls back to the active page.
func (s *Server) resolvePageID(args map[string]any) (string, error) {
	if pid, ok := args["pageId"].(string); ok && pid != "" {
		return pid, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.activePageID != "" {
		return s.activePageID, nil
	}
	return "", fmt.Errorf("no pageId provided and no active page set (use open_page first)")
}

// ── Results ────────────────────────────────────────────────

// textResult creates a simple text tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// jsonResult serializes v to JSON and wraps it in a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := marshalIndent(v)
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}

// ─────────────────────────────────────────────────────────────
// ResourceNotifier — pushes document changes to MCP clients
// ─────────────────────────────────────────────────────────────

// ResourceNotifier is a service.EventEmitter that tells connected clients a
// page document resource changed.
type ResourceNotifier struct {
	server *Server
}

// Notifier returns an emitter bound to s, to be added to the services'
// FanoutEmitter.
func (s *Server) Notifier() *ResourceNotifier {
	return &ResourceNotifier{server: s}
}

func (n *ResourceNotifier) Emit(_ context.Context, event string, data any) {
	switch event {
	case service.EventDocumentChanged, service.EventDocumentSaved:
	default:
		return
	}
	pageID := eventPageID(data)
	if pageID == "" {
		return
	}
	n.server.mcp.SendNotificationToAllClients("notifications/resources/updated", map[string]any{
		"uri": documentURI(pageID),
	})
}

func eventPageID(data any) string {
	switch d := data.(type) {
	case service.DocumentChanged:
		return d.PageID
	case service.PageEvent:
		return d.PageID
	}
	return ""
}
