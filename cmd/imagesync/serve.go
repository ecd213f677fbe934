package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/user/catalog-image-sync/internal/delivery/http/handler"
	"github.com/user/catalog-image-sync/internal/delivery/http/router"
	"github.com/user/catalog-image-sync/internal/usecase"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the sync API and Prometheus metrics over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		runner := usecase.NewSyncRunner(a.syncer, a.logger)
		apiHandler := handler.NewHandler(ctx, runner, a.results, a.checks, a.logger)

		server := &http.Server{
			Addr:         ":" + a.cfg.ServerPort,
			Handler:      router.New(apiHandler, a.metrics, a.logger),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  120 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()
		a.logger.Info("Server started", zap.String("port", a.cfg.ServerPort))

		select {
		case err := <-errCh:
			if err != nil {
				a.logger.Error("Could not listen on port", zap.String("port", a.cfg.ServerPort), zap.Error(err))
				return err
			}
		case <-ctx.Done():
		}

		a.logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("Server forced to shutdown", zap.Error(err))
			return err
		}

		// The run context is already cancelled; wait for the worker to notice.
		runner.Wait()
		a.logger.Info("Server exiting")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
