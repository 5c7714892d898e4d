package service

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Event names emitted by the services.
const (
	EventDocumentChanged    = "document:changed"
	EventDocumentSaved      = "document:saved"
	EventPageClosed         = "page:closed"
	EventSiteChanged        = "site:changed"
	EventComponentsReloaded = "components:reloaded"
)

// ─────────────────────────────────────────────────────────────
// EventEmitter — decouples services from their listeners
// ─────────────────────────────────────────────────────────────

// EventEmitter is an interface for emitting events to whoever observes the
// editor (the MCP server's resource notifications, logs, tests).
type EventEmitter interface {
	Emit(ctx context.Context, event string, data any)
}

// DocumentChanged is the payload of EventDocumentChanged.
type DocumentChanged struct {
	PageID    string `json:"pageId"`
	Action    string `json:"action"`
	NodeCount int    `json:"nodeCount"`
	CanUndo   bool   `json:"canUndo"`
	CanRedo   bool   `json:"canRedo"`
}

// PageEvent is the payload of page-scoped events without further detail.
type PageEvent struct {
	PageID string `json:"pageId"`
}

// LogEmitter writes every event to a logger at debug level.
type LogEmitter struct {
	logger *zap.Logger
}

func NewLogEmitter(logger *zap.Logger) *LogEmitter {
	return &LogEmitter{logger: logger}
}

func (e *LogEmitter) Emit(_ context.Context, event string, data any) {
	e.logger.Debug("event", zap.String("event", event), zap.Any("data", data))
}

// FanoutEmitter forwards each event to every added emitter. Emitters can be
// added after construction, which lets the MCP server subscribe once it
// exists.
type FanoutEmitter struct {
	mu       sync.RWMutex
	emitters []EventEmitter
}

func NewFanoutEmitter(emitters ...EventEmitter) *FanoutEmitter {
	return &FanoutEmitter{emitters: emitters}
}

func (f *FanoutEmitter) Add(e EventEmitter) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.emitters = append(f.emitters, e)
}

func (f *FanoutEmitter) Emit(ctx context.Context, event string, data any) {
	f.mu.RLock()
	emitters := append([]EventEmitter(nil), f.emitters...)
	f.mu.RUnlock()
	for _, e := range emitters {
		e.Emit(ctx, event, data)
	}
}

// MockEmitter is a test-friendly EventEmitter that records all calls.
type MockEmitter struct {
	mu     sync.Mutex
	Events []EmittedEvent
}

// EmittedEvent holds a single recorded emission for test assertions.
type EmittedEvent struct {
	Event string
	Data  any
}

func (m *MockEmitter) Emit(_ context.Context, event string, data any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, EmittedEvent{Event: event, Data: data})
}

// Named returns the recorded events with the given name.
func (m *MockEmitter) Named(event string) []EmittedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []EmittedEvent
	for _, e := range m.Events {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}
