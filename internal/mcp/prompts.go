package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPrompts() {
	s.mcp.AddPrompt(mcp.NewPrompt("landing_page",
		mcp.WithPromptDescription("Guide through building a landing page from the built-in components"),
		mcp.WithArgument("topic",
			mcp.ArgumentDescription("Product or topic the page is about"),
			mcp.RequiredArgument(),
		),
	), s.handleLandingPagePrompt)

	s.mcp.AddPrompt(mcp.NewPrompt("restructure_page",
		mcp.WithPromptDescription("Reorganize an existing page without losing its content"),
		mcp.WithArgument("pageId",
			mcp.ArgumentDescription("ID of the page to restructure"),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument("goal",
			mcp.ArgumentDescription("What the new structure should achieve"),
			mcp.RequiredArgument(),
		),
	), s.handleRestructurePrompt)
}

func (s *Server) handleLandingPagePrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	topic := req.Params.Arguments["topic"]
	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Build a landing page for: %s", topic),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Build a landing page about "%s" on the active page. Follow these steps:

1. Call list_components to see the available types and the zones they own
2. Insert a Heading1 at the top with the page title
3. Insert a Grid below it. Put a Text in its left zone and a Media in its right zone
4. Insert a Container for features and add one Card per feature to its items zone
5. Fill each card's body zone with a Heading1 and a Text
6. Finish with a Button in the root zone, then call save_page

Zones of a component are addressed as "<componentId>:<zoneName>" using the id returned on insert.`, topic),
				},
			},
		},
	}, nil
}

func (s *Server) handleRestructurePrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	pageID := req.Params.Arguments["pageId"]
	goal := req.Params.Arguments["goal"]
	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Restructure page %s", pageID),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Restructure page %s so that: %s. Follow these steps:

1. Call open_page, then get_document to read the current tree
2. Prefer move_component and reorder_component over remove plus insert, so ids and nested zones survive
3. Use duplicate_component for repeated sections
4. Only remove components that the goal makes redundant; each change can be reverted with undo
5. Call save_page when done`, pageID, goal),
				},
			},
		},
	}, nil
}
