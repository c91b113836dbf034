package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"modelarena/internal/server"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the arena over HTTP",
		Long: `Serve the arena as a JSON API.

Per-model results of POST /api/compare are published as server-sent events
on GET /sse. Pass ?stream=<id> to subscribe to the results of requests that
carry the same streamId.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.close()

			if addr == "" {
				addr = a.cfg.Server.Addr
			}

			deps := server.Deps{
				Catalog:      a.catalog,
				Orchestrator: a.orch,
				Session:      a.session,
				Arena:        a.arena,
				Logger:       a.logger,
			}
			if a.store != nil {
				deps.Feedback = a.store
			}
			return serve(cmd.Context(), addr, server.New(deps), a.logger)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Address to listen on (overrides server.addr)")

	return cmd
}

func serve(ctx context.Context, addr string, s *server.Server, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	srv.RegisterOnShutdown(func() {
		if err := s.Shutdown(context.Background()); err != nil {
			logger.Error("Failed to shutdown sse server", slog.String("err", err.Error()))
		}
	})

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Server starting", slog.String("addr", addr))
		serverErrors <- srv.ListenAndServe()
	}()

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
		logger.Info("Start shutdown")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		_ = srv.Close()
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}
