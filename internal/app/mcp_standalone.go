package app

import (
	"context"

	"go.uber.org/zap"
)

// ServeMCP runs the app as an MCP server on stdin/stdout until ctx is done
// or the client disconnects. Open pages are saved on the way out.
func (a *App) ServeMCP(ctx context.Context) error {
	if err := a.Startup(ctx); err != nil {
		return err
	}
	defer func() {
		if err := a.Shutdown(context.Background()); err != nil {
			a.logger.Error("shutdown", zap.Error(err))
		}
	}()

	errCh := make(chan error, 1)
	go func() { errCh <- a.mcp.ServeStdio() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		a.logger.Info("interrupted, stopping")
		return nil
	}
}
