package editor

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"sitebuilder/internal/domain"
)

// SessionOptions configures a Session.
type SessionOptions struct {
	ID           string // page id the session edits
	Config       domain.Config
	Reducer      *Reducer
	HistoryLimit int
	Past         []domain.Document // earlier snapshots, oldest first, restorable by Undo
	Logger       *zap.Logger
	Now          func() time.Time
}

// Session is the single writer for one open document. Dispatch applies one
// action to completion before the next is accepted; concurrent callers are
// serialized by the session's mutex.
type Session struct {
	mu       sync.Mutex
	id       string
	state    domain.State
	config   domain.Config
	reducer  *Reducer
	history  *History
	logger   *zap.Logger
	now      func() time.Time
	dirty    bool
	revision uint64
	closed   bool
	lastUsed time.Time
}

// NewSession opens a session on doc.
func NewSession(doc domain.Document, opts SessionOptions) *Session {
	if opts.Reducer == nil {
		opts.Reducer = NewReducer()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	state := domain.State{Data: domain.Normalize(doc), UI: domain.UIState{}}
	return &Session{
		id:       opts.ID,
		state:    state,
		config:   opts.Config,
		reducer:  opts.Reducer,
		history:  seedHistory(opts.HistoryLimit, opts.Past, state),
		logger:   opts.Logger.With(zap.String("page_id", opts.ID)),
		now:      opts.Now,
		lastUsed: opts.Now(),
	}
}

func (s *Session) ID() string { return s.id }

// Dispatch applies action and returns the new state. Actions flagged with
// recordHistory produce an undo checkpoint.
func (s *Session) Dispatch(action domain.Action) (domain.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return s.state, ErrSessionClosed
	}
	s.lastUsed = s.now()

	next, err := s.reducer.Reduce(s.state, action, s.config)
	if err != nil {
		s.logger.Warn("action rejected", zap.String("action", actionType(action)), zap.Error(err))
		return s.state, err
	}
	s.state = next
	if _, uiOnly := action.(domain.SetUIAction); !uiOnly {
		s.touch()
	}
	if action.ShouldRecordHistory() {
		s.history.Record(next)
	}
	return next, nil
}

// Undo restores the previous history snapshot.
func (s *Session) Undo() (domain.State, error) {
	return s.travel((*History).Back)
}

// Redo restores the next history snapshot.
func (s *Session) Redo() (domain.State, error) {
	return s.travel((*History).Forward)
}

func (s *Session) travel(step func(*History) (domain.State, error)) (domain.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return s.state, ErrSessionClosed
	}
	s.lastUsed = s.now()
	restored, err := step(s.history)
	if err != nil {
		return s.state, err
	}
	s.state = restored
	s.touch()
	return restored, nil
}

func (s *Session) touch() {
	s.dirty = true
	s.revision++
}

func seedHistory(limit int, past []domain.Document, current domain.State) *History {
	if len(past) == 0 {
		return NewHistory(limit, current)
	}
	h := NewHistory(limit, domain.State{Data: domain.Normalize(past[0]), UI: domain.UIState{}})
	for _, doc := range past[1:] {
		h.Record(domain.State{Data: domain.Normalize(doc), UI: domain.UIState{}})
	}
	h.Record(current)
	return h
}

// State returns the current state.
func (s *Session) State() domain.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Document returns the current document.
func (s *Session) Document() domain.Document {
	return s.State().Data
}

func (s *Session) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.HasPast()
}

func (s *Session) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.HasFuture()
}

// Dirty reports whether the document changed since the last MarkSaved.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// MarkSaved clears the dirty flag.
func (s *Session) MarkSaved() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirty = false
}

// Snapshot returns the current document with the revision it belongs to.
func (s *Session) Snapshot() (domain.Document, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Data, s.revision
}

// MarkSavedAt clears the dirty flag if nothing changed since revision was
// taken with Snapshot.
func (s *Session) MarkSavedAt(revision uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.revision == revision {
		s.dirty = false
	}
}

// Closed reports whether Close was called.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// IdleSince reports how long the session has gone without a dispatch.
func (s *Session) IdleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastUsed)
}

// Close rejects further dispatches. A dispatch already in progress finishes
// first, so a Snapshot taken after Close holds every accepted action.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// Reopen accepts dispatches again after Close.
func (s *Session) Reopen() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = false
}

func actionType(a domain.Action) string {
	if a == nil {
		return "<nil>"
	}
	return a.ActionType()
}
