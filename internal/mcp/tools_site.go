package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerSiteTools() {
	// ── list_sites ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_sites",
		mcp.WithDescription("List all sites"),
	), s.handleListSites)

	// ── create_site ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("create_site",
		mcp.WithDescription("Create a new site"),
		mcp.WithString("name", mcp.Description("Name of the site"), mcp.Required()),
	), s.handleCreateSite)

	// ── delete_site (destructive) ──────────────────────
	s.mcp.AddTool(mcp.NewTool("delete_site",
		mcp.WithDescription("🛑 DESTRUCTIVE: Delete a site with all of its pages and their history."),
		mcp.WithString("siteId", mcp.Description("ID of the site"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleDeleteSite)

	// ── list_pages ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_pages",
		mcp.WithDescription("List all pages of a site in navigation order"),
		mcp.WithString("siteId", mcp.Description("ID of the site"), mcp.Required()),
	), s.handleListPages)

	// ── create_page ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("create_page",
		mcp.WithDescription("Create a new page with an empty document. The new page becomes the active page."),
		mcp.WithString("siteId", mcp.Description("ID of the site"), mcp.Required()),
		mcp.WithString("name", mcp.Description("Name of the new page"), mcp.Required()),
		mcp.WithString("path", mcp.Description("URL path, e.g. /about (optional, derived from name)")),
	), s.handleCreatePage)

	// ── reorder_page ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("reorder_page",
		mcp.WithDescription("Move a page to a new position in its site's navigation order"),
		mcp.WithString("pageId", mcp.Description("ID of the page"), mcp.Required()),
		mcp.WithNumber("index", mcp.Description("New zero-based position"), mcp.Required()),
	), s.handleReorderPage)

	// ── delete_page (destructive) ──────────────────────
	s.mcp.AddTool(mcp.NewTool("delete_page",
		mcp.WithDescription("🛑 DESTRUCTIVE: Delete a page, discarding unsaved edits and history."),
		mcp.WithString("pageId", mcp.Description("ID of the page"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleDeletePage)

	// ── open_page ──────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("open_page",
		mcp.WithDescription("Open a page for editing and make it the active page. Tools that accept pageId default to it."),
		mcp.WithString("pageId", mcp.Description("ID of the page"), mcp.Required()),
	), s.handleOpenPage)

	// ── close_page ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("close_page",
		mcp.WithDescription("Close an open page"),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
		mcp.WithBoolean("save", mcp.Description("Save unsaved changes first (default true)")),
	), s.handleClosePage)
}

func (s *Server) handleListSites(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sites, err := s.sites.ListSites()
	if err != nil {
		return nil, fmt.Errorf("list sites: %w", err)
	}
	return jsonResult(sites)
}

func (s *Server) handleCreateSite(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := req.GetString("name", "")
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	site, err := s.sites.CreateSite(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("create site: %w", err)
	}
	return jsonResult(site)
}

func (s *Server) handleDeleteSite(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	siteID := req.GetString("siteId", "")
	if siteID == "" {
		return nil, fmt.Errorf("siteId is required")
	}
	if err := s.sites.DeleteSite(ctx, siteID); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Site %s deleted", siteID)), nil
}

func (s *Server) handleListPages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	siteID := req.GetString("siteId", "")
	if siteID == "" {
		return nil, fmt.Errorf("siteId is required")
	}
	pages, err := s.sites.ListPages(siteID)
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	return jsonResult(pages)
}

func (s *Server) handleCreatePage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	siteID := req.GetString("siteId", "")
	name := req.GetString("name", "")
	if siteID == "" || name == "" {
		return nil, fmt.Errorf("siteId and name are required")
	}
	page, err := s.sites.CreatePage(ctx, siteID, name, req.GetString("path", ""))
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	s.setActivePage(page.ID)
	return jsonResult(page)
}

func (s *Server) handleReorderPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	pageID := req.GetString("pageId", "")
	if pageID == "" {
		return nil, fmt.Errorf("pageId is required")
	}
	index, err := intArg(args, "index")
	if err != nil {
		return nil, err
	}
	if err := s.sites.ReorderPage(ctx, pageID, index); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Page %s moved to position %d", pageID, index)), nil
}

func (s *Server) handleDeletePage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID := req.GetString("pageId", "")
	if pageID == "" {
		return nil, fmt.Errorf("pageId is required")
	}
	if err := s.sites.DeletePage(ctx, pageID); err != nil {
		return nil, err
	}
	s.mu.Lock()
	if s.activePageID == pageID {
		s.activePageID = ""
	}
	s.mu.Unlock()
	return textResult(fmt.Sprintf("Page %s deleted", pageID)), nil
}

func (s *Server) handleOpenPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID := req.GetString("pageId", "")
	if pageID == "" {
		return nil, fmt.Errorf("pageId is required")
	}
	state, err := s.editor.Open(ctx, pageID)
	if err != nil {
		return nil, err
	}
	s.setActivePage(pageID)
	return jsonResult(state)
}

func (s *Server) handleClosePage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID, err := s.resolvePageID(req.GetArguments())
	if err != nil {
		return nil, err
	}
	if err := s.editor.Close(ctx, pageID, req.GetBool("save", true)); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Page %s closed", pageID)), nil
}
