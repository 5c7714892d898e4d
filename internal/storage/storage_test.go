package storage_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitebuilder/internal/domain"
	"sitebuilder/internal/storage"
)

func openTestDB(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.New(filepath.Join(t.TempDir(), "data", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func seedPage(t *testing.T, db *storage.DB) (*domain.Site, *domain.Page) {
	t.Helper()
	sites := storage.NewSiteStore(db)
	site := &domain.Site{ID: "site-1", Name: "Acme", Slug: "acme"}
	require.NoError(t, sites.CreateSite(site))
	page := &domain.Page{ID: "page-1", SiteID: site.ID, Name: "Home", Path: "/"}
	require.NoError(t, sites.CreatePage(page))
	return site, page
}

func textDoc(ids ...string) domain.Document {
	doc := domain.NewDocument()
	for _, id := range ids {
		doc.Content = append(doc.Content, domain.Node{Type: "Text", Props: domain.Props{"id": id}})
	}
	return doc
}

func contentIDs(doc domain.Document) []string {
	ids := []string{}
	for _, n := range doc.Content {
		ids = append(ids, n.ID())
	}
	return ids
}

// ─────────────────────────────────────────────────────────────
// DB
// ─────────────────────────────────────────────────────────────

func TestNew_MigrationsAreRepeatable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "repeat.db")
	db, err := storage.New(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = storage.New(path)
	require.NoError(t, err)
	assert.Equal(t, path, db.Path())
	require.NoError(t, db.Close())
}

// ─────────────────────────────────────────────────────────────
// SiteStore
// ─────────────────────────────────────────────────────────────

func TestSiteStore_CRUD(t *testing.T) {
	db := openTestDB(t)
	sites := storage.NewSiteStore(db)
	site, page := seedPage(t, db)

	got, err := sites.GetSite(site.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.Name)
	assert.False(t, got.CreatedAt.IsZero())

	site.Name = "Acme Corp"
	require.NoError(t, sites.UpdateSite(site))
	got, err = sites.GetSite(site.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", got.Name)

	about := &domain.Page{ID: "page-2", SiteID: site.ID, Name: "About", Path: "/about", Order: 1}
	require.NoError(t, sites.CreatePage(about))

	pages, err := sites.ListPages(site.ID)
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, page.ID, pages[0].ID)
	assert.Equal(t, "/about", pages[1].Path)

	list, err := sites.ListSites()
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSiteStore_NotFound(t *testing.T) {
	db := openTestDB(t)
	sites := storage.NewSiteStore(db)

	_, err := sites.GetSite("missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = sites.GetPage("missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, sites.UpdateSite(&domain.Site{ID: "missing", Slug: "x"}), domain.ErrNotFound)
}

func TestSiteStore_DuplicatePathRejected(t *testing.T) {
	db := openTestDB(t)
	sites := storage.NewSiteStore(db)
	site, _ := seedPage(t, db)

	err := sites.CreatePage(&domain.Page{ID: "page-dup", SiteID: site.ID, Name: "Home again", Path: "/"})
	assert.Error(t, err)
}

func TestSiteStore_DeleteSiteCascades(t *testing.T) {
	db := openTestDB(t)
	sites := storage.NewSiteStore(db)
	site, page := seedPage(t, db)

	require.NoError(t, sites.DeleteSite(site.ID))

	_, err := sites.GetPage(page.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ─────────────────────────────────────────────────────────────
// DocumentStore
// ─────────────────────────────────────────────────────────────

func TestDocumentStore_NewPageHasEmptyDocument(t *testing.T) {
	db := openTestDB(t)
	_, page := seedPage(t, db)
	docs := storage.NewDocumentStore(db)

	doc, err := docs.LoadDocument(page.ID)
	require.NoError(t, err)
	assert.Empty(t, doc.Content)
	assert.NotNil(t, doc.Zones)
}

func TestDocumentStore_SaveAndLoad(t *testing.T) {
	db := openTestDB(t)
	_, page := seedPage(t, db)
	docs := storage.NewDocumentStore(db)

	doc := textDoc("a", "b")
	doc.Zones["a:body"] = []domain.Node{{Type: "Heading1", Props: domain.Props{"id": "h", "level": 2}}}
	doc.Root.Props["title"] = "Home"
	require.NoError(t, docs.SaveDocument(page.ID, doc))

	got, err := docs.LoadDocument(page.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, contentIDs(got))
	require.Len(t, got.Zones["a:body"], 1)
	assert.Equal(t, "h", got.Zones["a:body"][0].ID())
	assert.Equal(t, "Home", got.Root.Props["title"])
}

func TestDocumentStore_MissingPage(t *testing.T) {
	db := openTestDB(t)
	docs := storage.NewDocumentStore(db)

	_, err := docs.LoadDocument("missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, docs.SaveDocument("missing", domain.NewDocument()), domain.ErrNotFound)
}

// ─────────────────────────────────────────────────────────────
// HistoryStore
// ─────────────────────────────────────────────────────────────

func TestHistoryStore_PushAndLoadTree(t *testing.T) {
	db := openTestDB(t)
	_, page := seedPage(t, db)
	history := storage.NewHistoryStore(db, 0)

	tree, err := history.LoadTree(page.ID)
	require.NoError(t, err)
	assert.Nil(t, tree)

	root, err := history.PushNode(page.ID, "open", textDoc())
	require.NoError(t, err)
	assert.Nil(t, root.ParentID)

	child, err := history.PushNode(page.ID, "insert", textDoc("a"))
	require.NoError(t, err)
	require.NotNil(t, child.ParentID)
	assert.Equal(t, root.ID, *child.ParentID)

	tree, err = history.LoadTree(page.ID)
	require.NoError(t, err)
	assert.Len(t, tree.Nodes, 2)
	assert.Equal(t, root.ID, tree.RootID)
	assert.Equal(t, child.ID, tree.CurrentID)

	doc, err := tree.Nodes[1].Document()
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, contentIDs(doc))
}

func TestHistoryStore_StepBackAndForward(t *testing.T) {
	db := openTestDB(t)
	_, page := seedPage(t, db)
	history := storage.NewHistoryStore(db, 0)

	root, err := history.PushNode(page.ID, "open", textDoc())
	require.NoError(t, err)
	first, err := history.PushNode(page.ID, "insert", textDoc("a"))
	require.NoError(t, err)

	id, err := history.StepBack(page.ID)
	require.NoError(t, err)
	assert.Equal(t, root.ID, id)

	_, err = history.StepBack(page.ID)
	assert.ErrorIs(t, err, storage.ErrHistoryEnd)

	// A new record after stepping back starts a branch; forward follows it.
	branch, err := history.PushNode(page.ID, "insert", textDoc("b"))
	require.NoError(t, err)
	_, err = history.StepBack(page.ID)
	require.NoError(t, err)

	id, err = history.StepForward(page.ID)
	require.NoError(t, err)
	assert.Equal(t, branch.ID, id)
	assert.NotEqual(t, first.ID, id)

	_, err = history.StepForward(page.ID)
	assert.ErrorIs(t, err, storage.ErrHistoryEnd)
}

func TestHistoryStore_Chain(t *testing.T) {
	db := openTestDB(t)
	_, page := seedPage(t, db)
	history := storage.NewHistoryStore(db, 0)

	for _, ids := range [][]string{{}, {"a"}, {"a", "b"}, {"a", "b", "c"}} {
		_, err := history.PushNode(page.ID, "edit", textDoc(ids...))
		require.NoError(t, err)
	}

	chain, err := history.Chain(page.ID, 0)
	require.NoError(t, err)
	require.Len(t, chain, 4)
	assert.Empty(t, chain[0].Content)
	assert.Equal(t, []string{"a", "b", "c"}, contentIDs(chain[3]))

	chain, err = history.Chain(page.ID, 2)
	require.NoError(t, err)
	require.Len(t, chain, 2)
	assert.Equal(t, []string{"a", "b"}, contentIDs(chain[0]))
}

func TestHistoryStore_PruneKeepsCurrentAndReparents(t *testing.T) {
	db := openTestDB(t)
	_, page := seedPage(t, db)
	history := storage.NewHistoryStore(db, 3)

	var last *storage.HistoryNode
	for i := 0; i < 6; i++ {
		node, err := history.PushNode(page.ID, "edit", textDoc())
		require.NoError(t, err)
		last = node
	}

	tree, err := history.LoadTree(page.ID)
	require.NoError(t, err)
	assert.Len(t, tree.Nodes, 3)
	assert.Equal(t, last.ID, tree.CurrentID)
	assert.Nil(t, tree.Nodes[0].ParentID, "oldest surviving node becomes the root")

	chain, err := history.Chain(page.ID, 0)
	require.NoError(t, err)
	assert.Len(t, chain, 3)
}

func TestHistoryStore_ClearPage(t *testing.T) {
	db := openTestDB(t)
	_, page := seedPage(t, db)
	history := storage.NewHistoryStore(db, 0)

	_, err := history.PushNode(page.ID, "open", textDoc())
	require.NoError(t, err)
	require.NoError(t, history.ClearPage(page.ID))

	tree, err := history.LoadTree(page.ID)
	require.NoError(t, err)
	assert.Nil(t, tree)
}
