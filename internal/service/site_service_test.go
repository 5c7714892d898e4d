package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitebuilder/internal/domain"
	"sitebuilder/internal/service"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"About Us", "about-us"},
		{"  Pricing & Plans!  ", "pricing-plans"},
		{"2026 Roadmap", "2026-roadmap"},
		{"Ünïcode Café", "ünïcode-café"},
		{"---", "page"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, service.Slugify(tt.in))
		})
	}
}

// ─────────────────────────────────────────────────────────────
// Sites
// ─────────────────────────────────────────────────────────────

func TestSiteService_CreateSite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	site, err := f.siteSvc.CreateSite(ctx, "  Acme Corp ")
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", site.Name)
	assert.Equal(t, "acme-corp", site.Slug)

	_, err = f.siteSvc.CreateSite(ctx, "   ")
	assert.Error(t, err)

	sites, err := f.siteSvc.ListSites()
	require.NoError(t, err)
	assert.Len(t, sites, 1)
	assert.Len(t, f.emitter.Named(service.EventSiteChanged), 1)
}

func TestSiteService_RenameSite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	site, err := f.siteSvc.CreateSite(ctx, "Old")
	require.NoError(t, err)
	require.NoError(t, f.siteSvc.RenameSite(ctx, site.ID, "New"))

	got, err := f.siteSvc.GetSite(site.ID)
	require.NoError(t, err)
	assert.Equal(t, "New", got.Name)

	assert.ErrorIs(t, f.siteSvc.RenameSite(ctx, "missing", "x"), domain.ErrNotFound)
}

func TestSiteService_DeleteSiteRemovesPages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	page := f.newPage(t, "Home")

	_, err := f.editor.Dispatch(ctx, page.ID, insert("Text", domain.RootZone, 0))
	require.NoError(t, err)

	require.NoError(t, f.siteSvc.DeleteSite(ctx, page.SiteID))

	assert.Empty(t, f.editor.OpenPages())
	_, err = f.siteSvc.GetSite(page.SiteID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.siteSvc.GetPageState(page.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	tree, err := f.history.LoadTree(page.ID)
	require.NoError(t, err)
	assert.Nil(t, tree, "history is cleared with the page")
}

// ─────────────────────────────────────────────────────────────
// Pages
// ─────────────────────────────────────────────────────────────

func TestSiteService_CreatePage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	site, err := f.siteSvc.CreateSite(ctx, "Acme")
	require.NoError(t, err)

	home, err := f.siteSvc.CreatePage(ctx, site.ID, "About Us", "")
	require.NoError(t, err)
	assert.Equal(t, "/about-us", home.Path)
	assert.Equal(t, 0, home.Order)

	blog, err := f.siteSvc.CreatePage(ctx, site.ID, "Blog", "news")
	require.NoError(t, err)
	assert.Equal(t, "/news", blog.Path)
	assert.Equal(t, 1, blog.Order)

	state, err := f.siteSvc.GetPageState(home.ID)
	require.NoError(t, err)
	assert.Empty(t, state.Document.Content)
	assert.NotNil(t, state.Document.Zones)

	_, err = f.siteSvc.CreatePage(ctx, "missing", "X", "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.siteSvc.CreatePage(ctx, site.ID, "", "")
	assert.Error(t, err)
}

func TestSiteService_RenamePage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	page := f.newPage(t, "Draft")

	require.NoError(t, f.siteSvc.RenamePage(ctx, page.ID, "Final"))
	pages, err := f.siteSvc.ListPages(page.SiteID)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, "Final", pages[0].Name)
	assert.Equal(t, page.Path, pages[0].Path, "renaming keeps the path")
}

func TestSiteService_ReorderPage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, b, c := f.newPage(t, "A"), f.newPage(t, "B"), f.newPage(t, "C")

	require.NoError(t, f.siteSvc.ReorderPage(ctx, c.ID, 0))

	pages, err := f.siteSvc.ListPages(a.SiteID)
	require.NoError(t, err)
	names := make([]string, 0, len(pages))
	for i, p := range pages {
		names = append(names, p.Name)
		assert.Equal(t, i, p.Order)
	}
	assert.Equal(t, []string{"C", "A", "B"}, names)

	assert.Error(t, f.siteSvc.ReorderPage(ctx, b.ID, 3))
	assert.Error(t, f.siteSvc.ReorderPage(ctx, b.ID, -1))
}

func TestSiteService_DeletePage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	keep, drop := f.newPage(t, "Keep"), f.newPage(t, "Drop")

	_, err := f.editor.Open(ctx, drop.ID)
	require.NoError(t, err)
	require.NoError(t, f.siteSvc.DeletePage(ctx, drop.ID))

	assert.Empty(t, f.editor.OpenPages())
	pages, err := f.siteSvc.ListPages(keep.SiteID)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, keep.ID, pages[0].ID)

	assert.ErrorIs(t, f.siteSvc.DeletePage(ctx, drop.ID), domain.ErrNotFound)
}

func TestSiteService_GetPageStatePrefersLiveDocument(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	page := f.newPage(t, "Home")

	_, err := f.editor.Dispatch(ctx, page.ID, insert("Text", domain.RootZone, 0))
	require.NoError(t, err)

	state, err := f.siteSvc.GetPageState(page.ID)
	require.NoError(t, err)
	assert.Len(t, state.Document.Content, 1, "unsaved edits are visible")

	require.NoError(t, f.editor.Close(ctx, page.ID, false))
	state, err = f.siteSvc.GetPageState(page.ID)
	require.NoError(t, err)
	assert.Empty(t, state.Document.Content)
}
