package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"sitebuilder/internal/config"
	"sitebuilder/internal/editor"
	mcpserver "sitebuilder/internal/mcp"
	"sitebuilder/internal/plugins"
	"sitebuilder/internal/service"
	"sitebuilder/internal/storage"
)

// App wires storage, services and the MCP server from a Config.
type App struct {
	cfg    *config.Config
	logger *zap.Logger

	db        *storage.DB
	zoneCache *storage.RedisZoneCache

	registry  *service.ComponentRegistry
	emitter   *service.FanoutEmitter
	editor    *service.EditorService
	sites     *service.SiteService
	autosaver *service.Autosaver
	mcp       *mcpserver.Server
}

// New opens the database and builds every service. Nothing runs in the
// background until Startup.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{cfg: cfg, logger: logger}

	db, err := storage.New(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	a.db = db
	logger.Info("database opened", zap.String("path", db.Path()))

	siteStore := storage.NewSiteStore(db)
	docStore := storage.NewDocumentStore(db)
	var history *storage.HistoryStore
	if cfg.Editor.PersistHistory {
		history = storage.NewHistoryStore(db, cfg.Editor.MaxHistoryNodes)
	}

	a.emitter = service.NewFanoutEmitter(service.NewLogEmitter(logger.Named("events")))

	a.registry = service.NewComponentRegistry(a.emitter, logger.Named("registry"))
	plugins.RegisterBuiltins(a.registry)
	if cfg.Editor.ComponentsFile != "" {
		if err := a.registry.LoadFile(cfg.Editor.ComponentsFile); err != nil {
			db.Close()
			return nil, err
		}
	}

	zoneCaches, err := a.zoneCaches()
	if err != nil {
		db.Close()
		return nil, err
	}

	a.editor = service.NewEditorService(siteStore, docStore, a.registry, a.emitter, logger.Named("service.editor"), service.EditorOptions{
		HistoryLimit:     cfg.Editor.HistoryLimit,
		DeterministicIDs: cfg.Editor.DeterministicIDs,
		ZoneCaches:       zoneCaches,
		History:          history,
	})
	a.sites = service.NewSiteService(siteStore, docStore, history, a.editor, a.emitter, logger.Named("service.site"))
	a.autosaver = service.NewAutosaver(a.editor, service.AutosaveOptions{
		Schedule:    cfg.Autosave.Schedule,
		IdleTimeout: cfg.Autosave.IdleTimeout,
	}, logger.Named("autosave"))

	a.mcp = mcpserver.New(mcpserver.Deps{
		Sites:    a.sites,
		Editor:   a.editor,
		Registry: a.registry,
		Logger:   logger.Named("mcp"),
	})
	a.emitter.Add(a.mcp.Notifier())
	return a, nil
}

// zoneCaches returns the per-page zone cache factory: Redis-backed when
// enabled, in-process otherwise.
func (a *App) zoneCaches() (service.ZoneCacheFactory, error) {
	if !a.cfg.Redis.Enabled {
		return nil, nil
	}
	cache, err := storage.NewRedisZoneCache(a.cfg.Redis.URL,
		storage.WithZoneCachePrefix(a.cfg.Redis.Prefix),
		storage.WithZoneCacheTTL(a.cfg.Redis.TTL),
		storage.WithZoneCacheLogger(a.logger.Named("redis")),
	)
	if err != nil {
		return nil, fmt.Errorf("connect zone cache: %w", err)
	}
	a.zoneCache = cache
	return func(pageID string) editor.ZoneCache { return cache.ForSession(pageID) }, nil
}

// Startup starts the autosave schedule and the components file watcher.
func (a *App) Startup(ctx context.Context) error {
	if a.cfg.Autosave.Enabled {
		if err := a.autosaver.Start(ctx); err != nil {
			return err
		}
	}
	if a.cfg.Editor.ComponentsFile != "" && a.cfg.Editor.WatchComponents {
		if err := a.registry.Watch(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Shutdown stops background work, saves and closes every open page, then
// releases the database and the zone cache.
func (a *App) Shutdown(ctx context.Context) error {
	stopCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	a.autosaver.Stop(stopCtx)
	a.registry.Stop()

	var errs []error
	if err := a.editor.CloseAll(stopCtx); err != nil {
		errs = append(errs, fmt.Errorf("close pages: %w", err))
	}
	if a.zoneCache != nil {
		if err := a.zoneCache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close zone cache: %w", err))
		}
	}
	if err := a.db.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close database: %w", err))
	}
	a.logger.Info("shutdown complete")
	return errors.Join(errs...)
}

func (a *App) Editor() *service.EditorService       { return a.editor }
func (a *App) Sites() *service.SiteService          { return a.sites }
func (a *App) Registry() *service.ComponentRegistry { return a.registry }
func (a *App) MCP() *mcpserver.Server               { return a.mcp }
