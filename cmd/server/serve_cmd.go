package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"orgstructure/internal/httpapi"
	"orgstructure/internal/service"
	"orgstructure/internal/store"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if a.cfg.AutoMigrate {
				if err := a.migrate(ctx); err != nil {
					return err
				}
			}
			return serve(ctx, a)
		},
	}
}

func serve(ctx context.Context, a *app) error {
	departmentService := service.NewDepartmentService(store.New(a.db), a.logger)
	handler := httpapi.NewHandler(departmentService, a.logger.Named("http"))

	opts := httpapi.RouterOptions{MetricsPath: a.cfg.Metrics.Path}
	if a.cfg.Metrics.Enabled {
		opts.Metrics = httpapi.NewMetrics()
	}

	router := httpapi.WithRequestLogging(httpapi.NewRouter(handler, opts), a.logger.Named("http"))
	root, err := httpapi.WithRateLimit(router, a.cfg.HTTP.RateLimit)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              ":" + a.cfg.Port,
		Handler:           httpapi.WithCORS(root, a.cfg.HTTP.CORSOrigins),
		ReadHeaderTimeout: a.cfg.HTTP.ReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("starting server", zap.String("port", a.cfg.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			a.logger.Error("server failed", zap.Error(err))
		}
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down", zap.Duration("timeout", a.cfg.HTTP.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
