package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

const (
	sitesURI       = "sitebuilder://sites"
	pageURIPrefix  = "sitebuilder://page/"
	documentSuffix = "/document"
)

func documentURI(pageID string) string {
	return pageURIPrefix + pageID + documentSuffix
}

func (s *Server) registerResources() {
	// ── sitebuilder://sites ────────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		sitesURI,
		"All Sites",
		mcp.WithResourceDescription("Every site with its pages in navigation order"),
		mcp.WithMIMEType("application/json"),
	), s.handleSitesResource)

	// ── sitebuilder://page/{pageId}/document ───────────
	s.mcp.AddResourceTemplate(
		mcp.NewResourceTemplate(
			pageURIPrefix+"{pageId}"+documentSuffix,
			"Page Document",
			mcp.WithTemplateMIMEType("application/json"),
		),
		s.handlePageDocumentResource,
	)
}

func (s *Server) handleSitesResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	sites, err := s.sites.ListSites()
	if err != nil {
		return nil, err
	}

	type pageSummary struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		Path string `json:"path"`
	}
	type siteSummary struct {
		ID    string        `json:"id"`
		Name  string        `json:"name"`
		Slug  string        `json:"slug"`
		Pages []pageSummary `json:"pages"`
	}

	summaries := make([]siteSummary, 0, len(sites))
	for _, site := range sites {
		pages, err := s.sites.ListPages(site.ID)
		if err != nil {
			return nil, err
		}
		sum := siteSummary{ID: site.ID, Name: site.Name, Slug: site.Slug, Pages: make([]pageSummary, 0, len(pages))}
		for _, p := range pages {
			sum.Pages = append(sum.Pages, pageSummary{ID: p.ID, Name: p.Name, Path: p.Path})
		}
		summaries = append(summaries, sum)
	}

	data, err := marshalIndent(summaries)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      sitesURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handlePageDocumentResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	pageID := extractPageIDFromURI(uri)
	if pageID == "" {
		return nil, fmt.Errorf("could not extract pageId from URI: %s", uri)
	}

	state, err := s.sites.GetPageState(pageID)
	if err != nil {
		return nil, err
	}
	data, err := marshalIndent(state.Document)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// extractPageIDFromURI extracts the page id from "sitebuilder://page/{id}/document".
func extractPageIDFromURI(uri string) string {
	rest, ok := strings.CutPrefix(uri, pageURIPrefix)
	if !ok {
		return ""
	}
	id, ok := strings.CutSuffix(rest, documentSuffix)
	if !ok || id == "" || strings.Contains(id, "/") {
		return ""
	}
	return id
}
