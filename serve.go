package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lostma-project/lostma-audit/pkg/handlers"
	"github.com/lostma-project/lostma-audit/pkg/middleware"
)

const shutdownTimeout = 30 * time.Second

func serveCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the audit reports over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := NewApp(opts.configPath)
			if err != nil {
				return err
			}
			defer app.Close()
			return app.Serve(cmd.Context())
		},
	}
}

// Handler builds the HTTP handler of the audit API.
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()

	handlers.NewHealthHandler(a.cfg, a.warehouse, a.logger).RegisterRoutes(mux)
	handlers.NewAuditHandler(a.completeness, a.enums, a.validation, a.logger).RegisterRoutes(mux)
	handlers.NewSyncHandler(a.sync, a.logger).RegisterRoutes(mux)
	mux.Handle("GET /metrics", a.metrics.Handler())

	return middleware.Recoverer(a.logger)(middleware.RequestLogger(a.logger)(mux))
}

// Serve runs the HTTP server until SIGINT or SIGTERM, then drains in-flight requests.
func (a *App) Serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:              a.cfg.Addr(),
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("Starting lostma-audit",
			zap.String("addr", server.Addr),
			zap.String("version", a.cfg.Version))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
