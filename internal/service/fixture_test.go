package service_test

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"sitebuilder/internal/domain"
	"sitebuilder/internal/plugins"
	"sitebuilder/internal/service"
	"sitebuilder/internal/storage"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	db       *storage.DB
	sites    *storage.SiteStore
	docs     *storage.DocumentStore
	history  *storage.HistoryStore
	registry *service.ComponentRegistry
	emitter  *service.MockEmitter
	clock    *fakeClock
	editor   *service.EditorService
	siteSvc  *service.SiteService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := storage.New(filepath.Join(t.TempDir(), "sitebuilder.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	f := &fixture{
		db:       db,
		sites:    storage.NewSiteStore(db),
		docs:     storage.NewDocumentStore(db),
		history:  storage.NewHistoryStore(db, 50),
		registry: service.NewComponentRegistry(nil, nil),
		emitter:  &service.MockEmitter{},
		clock:    &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)},
	}
	plugins.RegisterBuiltins(f.registry)
	f.editor = service.NewEditorService(f.sites, f.docs, f.registry, f.emitter, nil, service.EditorOptions{
		HistoryLimit:     10,
		DeterministicIDs: true,
		History:          f.history,
		Now:              f.clock.Now,
	})
	f.siteSvc = service.NewSiteService(f.sites, f.docs, f.history, f.editor, f.emitter, nil)
	return f
}

func (f *fixture) newPage(t *testing.T, name string) *domain.Page {
	t.Helper()
	ctx := t.Context()
	sites, err := f.siteSvc.ListSites()
	require.NoError(t, err)
	var siteID string
	if len(sites) == 0 {
		site, err := f.siteSvc.CreateSite(ctx, "Test Site")
		require.NoError(t, err)
		siteID = site.ID
	} else {
		siteID = sites[0].ID
	}
	page, err := f.siteSvc.CreatePage(ctx, siteID, name, "")
	require.NoError(t, err)
	return page
}

func insert(typ, zone string, index int) domain.InsertAction {
	return domain.InsertAction{
		HistoryFlag:      domain.HistoryFlag{RecordHistory: true},
		ComponentType:    typ,
		DestinationIndex: index,
		DestinationZone:  zone,
	}
}

func contentIDs(doc domain.Document) []string {
	ids := []string{}
	for _, n := range doc.Content {
		ids = append(ids, n.ID())
	}
	return ids
}
