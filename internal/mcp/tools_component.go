package mcpserver

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"sitebuilder/internal/domain"
	"sitebuilder/internal/service"
)

// componentSummary is one entry of list_components.
type componentSummary struct {
	Type string `json:"type"`
	domain.ComponentConfig
}

// registerComponentTools registers list_components plus one insert_<type>
// shortcut per built-in component. Types defined only in the components file
// are inserted through insert_component.
func (s *Server) registerComponentTools() {
	// ── list_components ────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_components",
		mcp.WithDescription("List the component types that can be inserted, with their default props and nested zone names"),
	), s.handleListComponents)

	if s.registry == nil {
		return
	}
	s.registry.ForEach(func(p service.ComponentPlugin) {
		componentType := p.ComponentType()
		def := p.Definition()
		desc := fmt.Sprintf("Insert a %s component", componentType)
		if len(def.Zones) > 0 {
			desc += fmt.Sprintf(". It owns the zones %s, addressed as \"<id>:<zone>\"", strings.Join(def.Zones, ", "))
		}

		s.mcp.AddTool(mcp.NewTool(
			"insert_"+strings.ToLower(componentType),
			mcp.WithDescription(desc),
			mcp.WithString("zone", mcp.Description("Destination zone (default root)")),
			mcp.WithNumber("index", mcp.Description("Destination index (default: append)")),
			mcp.WithObject("props", mcp.Description("Props overriding the defaults (optional)")),
			mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
		), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return s.insertComponent(ctx, req, componentType)
		})
	})
}

func (s *Server) handleListComponents(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.registry == nil {
		return jsonResult([]componentSummary{})
	}
	cfg := s.registry.Config()
	out := make([]componentSummary, 0, len(cfg.Components))
	for t, c := range cfg.Components {
		out = append(out, componentSummary{Type: t, ComponentConfig: c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return jsonResult(out)
}
