package service

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"sitebuilder/internal/domain"
	"sitebuilder/internal/storage"
)

// ─────────────────────────────────────────────────────────────
// Site Service — sites and their pages
// ─────────────────────────────────────────────────────────────

// SiteService manages sites and pages. Page documents are edited through
// the EditorService; this service only creates and removes them.
type SiteService struct {
	store   domain.SiteStore
	docs    domain.DocumentStore
	history *storage.HistoryStore
	editor  *EditorService
	emitter EventEmitter
	logger  *zap.Logger
}

// NewSiteService creates a SiteService. history may be nil.
func NewSiteService(
	store domain.SiteStore,
	docs domain.DocumentStore,
	history *storage.HistoryStore,
	editor *EditorService,
	emitter EventEmitter,
	logger *zap.Logger,
) *SiteService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SiteService{
		store:   store,
		docs:    docs,
		history: history,
		editor:  editor,
		emitter: emitter,
		logger:  logger,
	}
}

// ── Sites ──────────────────────────────────────────────────

func (s *SiteService) ListSites() ([]domain.Site, error) {
	return s.store.ListSites()
}

func (s *SiteService) GetSite(id string) (*domain.Site, error) {
	return s.store.GetSite(id)
}

func (s *SiteService) CreateSite(ctx context.Context, name string) (*domain.Site, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("create site: name is required")
	}
	site := &domain.Site{
		ID:   uuid.New().String(),
		Name: name,
		Slug: Slugify(name),
	}
	if err := s.store.CreateSite(site); err != nil {
		return nil, err
	}
	s.logger.Info("site created", zap.String("site_id", site.ID), zap.String("slug", site.Slug))
	s.emit(ctx, site.ID)
	return site, nil
}

func (s *SiteService) RenameSite(ctx context.Context, id, name string) error {
	site, err := s.store.GetSite(id)
	if err != nil {
		return err
	}
	site.Name = name
	if err := s.store.UpdateSite(site); err != nil {
		return err
	}
	s.emit(ctx, id)
	return nil
}

// DeleteSite closes the site's open pages without saving, then removes the
// site with all its pages and their history.
func (s *SiteService) DeleteSite(ctx context.Context, id string) error {
	pages, err := s.store.ListPages(id)
	if err != nil {
		return err
	}
	for _, p := range pages {
		if err := s.forgetPage(ctx, p.ID); err != nil {
			return err
		}
	}
	if err := s.store.DeletePagesBySite(id); err != nil {
		return fmt.Errorf("delete pages of site %s: %w", id, err)
	}
	if err := s.store.DeleteSite(id); err != nil {
		return fmt.Errorf("delete site %s: %w", id, err)
	}
	s.logger.Info("site deleted", zap.String("site_id", id), zap.Int("pages", len(pages)))
	s.emit(ctx, id)
	return nil
}

// ── Pages ──────────────────────────────────────────────────

func (s *SiteService) ListPages(siteID string) ([]domain.Page, error) {
	return s.store.ListPages(siteID)
}

// CreatePage adds a page with an empty document. An empty path defaults to
// "/<slug of name>".
func (s *SiteService) CreatePage(ctx context.Context, siteID, name, path string) (*domain.Page, error) {
	if _, err := s.store.GetSite(siteID); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("create page: name is required")
	}
	if path == "" {
		path = "/" + Slugify(name)
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	existing, err := s.store.ListPages(siteID)
	if err != nil {
		return nil, err
	}

	p := &domain.Page{
		ID:     uuid.New().String(),
		SiteID: siteID,
		Name:   name,
		Path:   path,
		Order:  len(existing),
	}
	if err := s.store.CreatePage(p); err != nil {
		return nil, err
	}
	if err := s.docs.SaveDocument(p.ID, domain.NewDocument()); err != nil {
		return nil, err
	}
	s.emit(ctx, siteID)
	return p, nil
}

func (s *SiteService) RenamePage(ctx context.Context, id, name string) error {
	p, err := s.store.GetPage(id)
	if err != nil {
		return err
	}
	p.Name = name
	if err := s.store.UpdatePage(p); err != nil {
		return err
	}
	s.emit(ctx, p.SiteID)
	return nil
}

// ReorderPage moves a page to position to among its site's pages.
func (s *SiteService) ReorderPage(ctx context.Context, id string, to int) error {
	p, err := s.store.GetPage(id)
	if err != nil {
		return err
	}
	pages, err := s.store.ListPages(p.SiteID)
	if err != nil {
		return err
	}
	from := -1
	for i := range pages {
		if pages[i].ID == id {
			from = i
		}
	}
	if from < 0 || to < 0 || to >= len(pages) {
		return fmt.Errorf("reorder page %s to %d: index out of range", id, to)
	}
	moved := pages[from]
	pages = append(pages[:from], pages[from+1:]...)
	pages = append(pages[:to], append([]domain.Page{moved}, pages[to:]...)...)
	for i := range pages {
		if pages[i].Order == i {
			continue
		}
		pages[i].Order = i
		if err := s.store.UpdatePage(&pages[i]); err != nil {
			return err
		}
	}
	s.emit(ctx, p.SiteID)
	return nil
}

func (s *SiteService) DeletePage(ctx context.Context, id string) error {
	p, err := s.store.GetPage(id)
	if err != nil {
		return err
	}
	if err := s.forgetPage(ctx, id); err != nil {
		return err
	}
	if err := s.store.DeletePage(id); err != nil {
		return err
	}
	s.emit(ctx, p.SiteID)
	return nil
}

// GetPageState returns a page with its document. Open pages report their
// live document, which may be ahead of the stored one.
func (s *SiteService) GetPageState(pageID string) (*domain.PageState, error) {
	page, err := s.store.GetPage(pageID)
	if err != nil {
		return nil, err
	}
	if s.editor != nil {
		if doc, ok := s.editor.Document(pageID); ok {
			return &domain.PageState{Page: *page, Document: doc}, nil
		}
	}
	doc, err := s.docs.LoadDocument(pageID)
	if err != nil {
		return nil, err
	}
	return &domain.PageState{Page: *page, Document: doc}, nil
}

func (s *SiteService) forgetPage(ctx context.Context, pageID string) error {
	if s.editor != nil {
		if err := s.editor.Close(ctx, pageID, false); err != nil {
			return err
		}
	}
	if s.history != nil {
		if err := s.history.ClearPage(pageID); err != nil {
			return fmt.Errorf("clear history of page %s: %w", pageID, err)
		}
	}
	return nil
}

func (s *SiteService) emit(ctx context.Context, siteID string) {
	if s.emitter != nil {
		s.emitter.Emit(ctx, EventSiteChanged, map[string]string{"siteId": siteID})
	}
}

// Slugify lowercases name and joins its letter and digit runs with dashes.
func Slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	if b.Len() == 0 {
		return "page"
	}
	return b.String()
}
