package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"sitebuilder/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// Component Registry — built-in components plus a YAML overlay
// ─────────────────────────────────────────────────────────────

// ComponentPlugin is the Go-side contract for a component type that ships
// with the binary.
type ComponentPlugin interface {
	// ComponentType returns the type string stored in Node.Type (e.g. "Card").
	ComponentType() string
	// Definition returns the default props and zone names of the type.
	Definition() domain.ComponentConfig
}

// componentsFile is the on-disk shape of the YAML overlay.
type componentsFile struct {
	Components map[string]domain.ComponentConfig `yaml:"components"`
}

// ComponentRegistry resolves the domain.Config handed to editing sessions.
// Definitions from the YAML file override built-ins of the same type.
type ComponentRegistry struct {
	mu      sync.RWMutex
	plugins map[string]ComponentPlugin
	overlay domain.Config
	path    string

	emitter     EventEmitter
	logger      *zap.Logger
	watcher     *fsnotify.Watcher
	watchCancel context.CancelFunc
	debounce    time.Duration
}

// NewComponentRegistry creates an empty registry.
func NewComponentRegistry(emitter EventEmitter, logger *zap.Logger) *ComponentRegistry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ComponentRegistry{
		plugins:  make(map[string]ComponentPlugin),
		emitter:  emitter,
		logger:   logger,
		debounce: 250 * time.Millisecond,
	}
}

// Register adds a plugin to the registry. Panics on duplicate registration.
func (r *ComponentRegistry) Register(p ComponentPlugin) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := p.ComponentType()
	if _, exists := r.plugins[t]; exists {
		panic(fmt.Sprintf("component registry: duplicate registration for type %q", t))
	}
	r.plugins[t] = p
}

// ForEach iterates registered plugins in type order.
func (r *ComponentRegistry) ForEach(fn func(ComponentPlugin)) {
	r.mu.RLock()
	plugins := make([]ComponentPlugin, 0, len(r.plugins))
	for _, p := range r.plugins {
		plugins = append(plugins, p)
	}
	r.mu.RUnlock()

	sort.Slice(plugins, func(i, j int) bool {
		return plugins[i].ComponentType() < plugins[j].ComponentType()
	})
	for _, p := range plugins {
		fn(p)
	}
}

// Config returns a snapshot of the effective configuration.
func (r *ComponentRegistry) Config() domain.Config {
	r.mu.RLock()
	defer r.mu.RUnlock()
	builtin := domain.Config{Components: make(map[string]domain.ComponentConfig, len(r.plugins))}
	for t, p := range r.plugins {
		builtin.Components[t] = p.Definition()
	}
	return builtin.Merge(r.overlay)
}

// LoadFile reads the YAML overlay at path and remembers path for Watch.
func (r *ComponentRegistry) LoadFile(path string) error {
	overlay, err := readComponentsFile(path)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.path = path
	r.overlay = overlay
	r.mu.Unlock()
	r.logger.Info("components loaded", zap.String("path", path), zap.Int("count", len(overlay.Components)))
	return nil
}

func readComponentsFile(path string) (domain.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Config{}, fmt.Errorf("read components file: %w", err)
	}
	var f componentsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return domain.Config{}, fmt.Errorf("parse components file %s: %w", path, err)
	}
	return domain.Config{Components: f.Components}, nil
}

// Watch reloads the overlay whenever its file is written or recreated. A
// file that fails to parse leaves the previous overlay in place.
func (r *ComponentRegistry) Watch(ctx context.Context) error {
	r.mu.RLock()
	path := r.path
	r.mu.RUnlock()
	if path == "" {
		return fmt.Errorf("component registry: no file loaded")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("component registry: bad path %q: %w", path, err)
	}

	r.Stop()
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("component registry: create watcher: %w", err)
	}
	// Editors replace files by rename, so watch the directory.
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		watcher.Close()
		return fmt.Errorf("component registry: watch %q: %w", filepath.Dir(absPath), err)
	}

	watchCtx, cancel := context.WithCancel(ctx)
	r.mu.Lock()
	r.watcher = watcher
	r.watchCancel = cancel
	r.mu.Unlock()

	go r.watchLoop(watchCtx, watcher, absPath)
	r.logger.Info("watching components file", zap.String("path", absPath))
	return nil
}

func (r *ComponentRegistry) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, absPath string) {
	var timer *time.Timer
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if name, _ := filepath.Abs(event.Name); name != absPath {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(r.debounce, func() { r.reload(ctx, absPath) })
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			r.logger.Warn("components watcher error", zap.Error(err))
		}
	}
}

func (r *ComponentRegistry) reload(ctx context.Context, path string) {
	overlay, err := readComponentsFile(path)
	if err != nil {
		r.logger.Warn("components reload failed, keeping previous definitions", zap.Error(err))
		return
	}
	r.mu.Lock()
	r.overlay = overlay
	r.mu.Unlock()
	r.logger.Info("components reloaded", zap.Int("count", len(overlay.Components)))
	if r.emitter != nil {
		r.emitter.Emit(ctx, EventComponentsReloaded, map[string]int{"count": len(overlay.Components)})
	}
}

// Stop ends any running watch.
func (r *ComponentRegistry) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.watchCancel != nil {
		r.watchCancel()
		r.watchCancel = nil
	}
	if r.watcher != nil {
		r.watcher.Close()
		r.watcher = nil
	}
}
