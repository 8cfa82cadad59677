package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

// Serve runs the HTTP server on ln until ctx is cancelled, then shuts down
// gracefully within the configured timeout. The expiry sweeper runs alongside
// and refreshes the active-session gauges after every pass.
func Serve(ctx context.Context, app *App, ln net.Listener) error {
	server, err := app.HTTPServer()
	if err != nil {
		return fmt.Errorf("failed to build http server: %w", err)
	}
	defer server.Close()

	srv := &http.Server{
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go app.runSweeper(sweepCtx)

	serverErrors := make(chan error, 1)
	go func() {
		app.Logger.Info("http server listening", "addr", ln.Addr().String())
		serverErrors <- srv.Serve(ln)
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		timeout := app.Config.Server.ShutdownTimeout
		app.Logger.Info("shutting down", "timeout", timeout)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.Logger.Error("graceful shutdown did not complete", "err", err)
			return srv.Close()
		}
		app.Logger.Info("http server stopped gracefully")
		return nil
	}
}

func (a *App) runSweeper(ctx context.Context) {
	a.RefreshGauges(ctx)
	a.Engine.Sessions().RunSweeper(ctx, a.Config.Session.SweepInterval, a.RefreshGauges)
}
