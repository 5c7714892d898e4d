package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"sitebuilder/internal/domain"
	"sitebuilder/internal/editor"
	"sitebuilder/internal/storage"
)

// ─────────────────────────────────────────────────────────────
// Editor Service — open documents and the actions applied to them
// ─────────────────────────────────────────────────────────────

// ZoneCacheFactory returns the zone cache for a newly opened page.
type ZoneCacheFactory func(pageID string) editor.ZoneCache

// zoneCacheClearer is implemented by caches that hold state outside the
// process and must be emptied when their session ends.
type zoneCacheClearer interface {
	Clear(ctx context.Context) error
}

// EditorOptions configures an EditorService.
type EditorOptions struct {
	HistoryLimit     int
	DeterministicIDs bool
	ZoneCaches       ZoneCacheFactory
	// History persists recorded snapshots. Nil keeps history in memory only.
	History *storage.HistoryStore
	Now     func() time.Time
}

type openPage struct {
	session *editor.Session
	cache   editor.ZoneCache
}

// EditorService owns one editor.Session per open page. Every mutation of a
// page document goes through its session.
type EditorService struct {
	mu    sync.Mutex
	pages map[string]*openPage

	sites    domain.SiteStore
	docs     domain.DocumentStore
	registry *ComponentRegistry
	emitter  EventEmitter
	logger   *zap.Logger
	opts     EditorOptions
}

// NewEditorService creates an EditorService.
func NewEditorService(
	sites domain.SiteStore,
	docs domain.DocumentStore,
	registry *ComponentRegistry,
	emitter EventEmitter,
	logger *zap.Logger,
	opts EditorOptions,
) *EditorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.ZoneCaches == nil {
		opts.ZoneCaches = func(string) editor.ZoneCache { return editor.NewMemoryZoneCache() }
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &EditorService{
		pages:    make(map[string]*openPage),
		sites:    sites,
		docs:     docs,
		registry: registry,
		emitter:  emitter,
		logger:   logger,
		opts:     opts,
	}
}

// Open returns the page and its current document, opening a session if the
// page is not open yet.
func (s *EditorService) Open(ctx context.Context, pageID string) (*domain.PageState, error) {
	page, err := s.sites.GetPage(pageID)
	if err != nil {
		return nil, err
	}
	sess, err := s.session(ctx, pageID)
	if err != nil {
		return nil, err
	}
	return &domain.PageState{Page: *page, Document: sess.Document()}, nil
}

func (s *EditorService) session(ctx context.Context, pageID string) (*editor.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.pages[pageID]; ok {
		return p.session, nil
	}

	doc, err := s.docs.LoadDocument(pageID)
	if err != nil {
		return nil, fmt.Errorf("open page %s: %w", pageID, err)
	}
	past, err := s.loadPast(pageID, doc)
	if err != nil {
		return nil, err
	}

	var ids editor.IDGenerator = editor.UUIDGenerator{}
	if s.opts.DeterministicIDs {
		ids = editor.NewSequenceGenerator(editor.NextSequence(doc))
	}
	cache := s.opts.ZoneCaches(pageID)
	logger := s.logger.With(zap.String("page_id", pageID))
	sess := editor.NewSession(doc, editor.SessionOptions{
		ID:     pageID,
		Config: s.componentConfig(),
		Reducer: editor.NewReducer(
			editor.WithIDGenerator(ids),
			editor.WithZoneCache(cache),
			editor.WithLogger(logger),
		),
		HistoryLimit: s.opts.HistoryLimit,
		Past:         past,
		Logger:       s.logger,
		Now:          s.opts.Now,
	})
	s.pages[pageID] = &openPage{session: sess, cache: cache}
	openSessions.Set(float64(len(s.pages)))
	logger.Info("page opened", zap.Int("nodes", doc.NodeCount()), zap.Int("past", len(past)))
	return sess, nil
}

// loadPast returns the persisted snapshots preceding the current one. A page
// without persisted history gets doc recorded as its first node.
func (s *EditorService) loadPast(pageID string, doc domain.Document) ([]domain.Document, error) {
	if s.opts.History == nil {
		return nil, nil
	}
	limit := s.opts.HistoryLimit
	if limit <= 0 {
		limit = editor.DefaultHistoryLimit
	}
	chain, err := s.opts.History.Chain(pageID, limit)
	if err != nil {
		return nil, fmt.Errorf("load history for %s: %w", pageID, err)
	}
	if len(chain) == 0 {
		if _, err := s.opts.History.PushNode(pageID, "open", doc); err != nil {
			return nil, fmt.Errorf("record initial history for %s: %w", pageID, err)
		}
		return nil, nil
	}
	return chain[:len(chain)-1], nil
}

func (s *EditorService) componentConfig() domain.Config {
	if s.registry == nil {
		return domain.Config{}
	}
	return s.registry.Config()
}

// Dispatch applies action to the page's document and returns the result.
func (s *EditorService) Dispatch(ctx context.Context, pageID string, action domain.Action) (domain.Document, error) {
	sess, err := s.session(ctx, pageID)
	if err != nil {
		return domain.Document{}, err
	}
	state, err := sess.Dispatch(action)
	if err != nil {
		return state.Data, err
	}
	if action.ShouldRecordHistory() && s.opts.History != nil {
		if _, err := s.opts.History.PushNode(pageID, action.ActionType(), state.Data); err != nil {
			s.logger.Warn("persist history node failed", zap.String("page_id", pageID), zap.Error(err))
		}
	}
	s.emitChanged(ctx, pageID, action.ActionType(), sess)
	return state.Data, nil
}

// Undo restores the previous recorded snapshot of the page.
func (s *EditorService) Undo(ctx context.Context, pageID string) (domain.Document, error) {
	return s.travel(ctx, pageID, "undo", (*editor.Session).Undo, (*storage.HistoryStore).StepBack)
}

// Redo re-applies the next recorded snapshot of the page.
func (s *EditorService) Redo(ctx context.Context, pageID string) (domain.Document, error) {
	return s.travel(ctx, pageID, "redo", (*editor.Session).Redo, (*storage.HistoryStore).StepForward)
}

func (s *EditorService) travel(
	ctx context.Context,
	pageID, label string,
	move func(*editor.Session) (domain.State, error),
	step func(*storage.HistoryStore, string) (string, error),
) (domain.Document, error) {
	sess, err := s.session(ctx, pageID)
	if err != nil {
		return domain.Document{}, err
	}
	state, err := move(sess)
	if err != nil {
		return state.Data, err
	}
	if s.opts.History != nil {
		if _, err := step(s.opts.History, pageID); err != nil && !errors.Is(err, storage.ErrHistoryEnd) {
			s.logger.Warn("move history pointer failed", zap.String("page_id", pageID), zap.Error(err))
		}
	}
	s.emitChanged(ctx, pageID, label, sess)
	return state.Data, nil
}

func (s *EditorService) emitChanged(ctx context.Context, pageID, action string, sess *editor.Session) {
	if s.emitter == nil {
		return
	}
	s.emitter.Emit(ctx, EventDocumentChanged, DocumentChanged{
		PageID:    pageID,
		Action:    action,
		NodeCount: sess.Document().NodeCount(),
		CanUndo:   sess.CanUndo(),
		CanRedo:   sess.CanRedo(),
	})
}

// Document returns the document of an open page.
func (s *EditorService) Document(pageID string) (domain.Document, bool) {
	s.mu.Lock()
	p, ok := s.pages[pageID]
	s.mu.Unlock()
	if !ok {
		return domain.Document{}, false
	}
	return p.session.Document(), true
}

// State returns the editor state of an open page.
func (s *EditorService) State(pageID string) (domain.State, bool) {
	s.mu.Lock()
	p, ok := s.pages[pageID]
	s.mu.Unlock()
	if !ok {
		return domain.State{}, false
	}
	return p.session.State(), true
}

// IsDirty reports whether an open page has unsaved changes.
func (s *EditorService) IsDirty(pageID string) bool {
	s.mu.Lock()
	p, ok := s.pages[pageID]
	s.mu.Unlock()
	return ok && p.session.Dirty()
}

// OpenPages returns the ids of all open pages, sorted.
func (s *EditorService) OpenPages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.pages))
	for id := range s.pages {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Save writes the page's document to the document store.
func (s *EditorService) Save(ctx context.Context, pageID string) error {
	s.mu.Lock()
	p, ok := s.pages[pageID]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("save page %s: not open", pageID)
	}
	return s.save(ctx, pageID, p.session)
}

func (s *EditorService) save(ctx context.Context, pageID string, sess *editor.Session) error {
	doc, rev := sess.Snapshot()
	if err := s.docs.SaveDocument(pageID, doc); err != nil {
		savesTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("save page %s: %w", pageID, err)
	}
	sess.MarkSavedAt(rev)
	savesTotal.WithLabelValues("ok").Inc()
	if s.emitter != nil {
		s.emitter.Emit(ctx, EventDocumentSaved, PageEvent{PageID: pageID})
	}
	return nil
}

// Close ends the page's session, saving first when save is set and the
// document has unsaved changes. Closing a page that is not open is a no-op.
func (s *EditorService) Close(ctx context.Context, pageID string, save bool) error {
	s.mu.Lock()
	p, ok := s.pages[pageID]
	s.mu.Unlock()
	if !ok {
		return nil
	}

	// The session stays in the map while it is saved, so a dispatch racing
	// the close gets ErrSessionClosed instead of reopening the stale copy in
	// storage.
	p.session.Close()
	if save && p.session.Dirty() {
		if err := s.save(ctx, pageID, p.session); err != nil {
			p.session.Reopen()
			return err
		}
	}

	s.mu.Lock()
	if s.pages[pageID] == p {
		delete(s.pages, pageID)
	}
	openSessions.Set(float64(len(s.pages)))
	s.mu.Unlock()

	if c, ok := p.cache.(zoneCacheClearer); ok {
		if err := c.Clear(ctx); err != nil {
			s.logger.Warn("clear zone cache failed", zap.String("page_id", pageID), zap.Error(err))
		}
	}
	if s.emitter != nil {
		s.emitter.Emit(ctx, EventPageClosed, PageEvent{PageID: pageID})
	}
	s.logger.Info("page closed", zap.String("page_id", pageID))
	return nil
}

// FlushDirty saves every open page with unsaved changes and returns how many
// were saved.
func (s *EditorService) FlushDirty(ctx context.Context) (int, error) {
	var errs []error
	saved := 0
	for _, id := range s.OpenPages() {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		s.mu.Lock()
		p, ok := s.pages[id]
		s.mu.Unlock()
		if !ok || !p.session.Dirty() {
			continue
		}
		if err := s.save(ctx, id, p.session); err != nil {
			errs = append(errs, err)
			continue
		}
		saved++
	}
	return saved, errors.Join(errs...)
}

// EvictIdle closes pages that have not been touched for maxIdle, saving them
// first. It returns the ids of the closed pages.
func (s *EditorService) EvictIdle(ctx context.Context, maxIdle time.Duration) ([]string, error) {
	now := s.opts.Now()
	var idle []string
	s.mu.Lock()
	for id, p := range s.pages {
		if p.session.IdleSince(now) >= maxIdle {
			idle = append(idle, id)
		}
	}
	s.mu.Unlock()
	sort.Strings(idle)

	var errs []error
	closed := make([]string, 0, len(idle))
	for _, id := range idle {
		if err := s.Close(ctx, id, true); err != nil {
			errs = append(errs, err)
			continue
		}
		closed = append(closed, id)
	}
	return closed, errors.Join(errs...)
}

// CloseAll saves and closes every open page.
func (s *EditorService) CloseAll(ctx context.Context) error {
	var errs []error
	for _, id := range s.OpenPages() {
		if err := s.Close(ctx, id, true); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
