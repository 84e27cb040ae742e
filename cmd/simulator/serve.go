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

	"github.com/spf13/cobra"
	"github.com/warp/career-simulator/api"
	"github.com/warp/career-simulator/report"
	"github.com/warp/career-simulator/scenario"
	"github.com/warp/career-simulator/store/sqlite"
)

// serveCmd starts the HTTP API.
//
// STARTUP SEQUENCE:
//  1. Apply flag overrides to the environment configuration
//  2. Open the SQLite store, optionally seeding the presets
//  3. Build handler and router
//  4. Serve until SIGINT/SIGTERM, then shut down gracefully
func serveCmd(a *app) *cobra.Command {
	var (
		port   int
		dbPath string
		seed   bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("port") {
				a.cfg.Server.Port = port
			}
			if cmd.Flags().Changed("db") {
				a.cfg.Database.Path = dbPath
			}
			return serve(a, seed)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8080, "HTTP server port (overrides SIMULATOR_SERVER_PORT)")
	cmd.Flags().StringVar(&dbPath, "db", "./simulator.db", `SQLite database path, ":memory:" for a throwaway store`)
	cmd.Flags().BoolVar(&seed, "seed", false, "install the built-in scenarios when the store is empty")
	return cmd
}

func serve(a *app, seed bool) error {
	cfg, logger := a.cfg, a.logger

	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer store.Close()

	if seed {
		if err := seedPresets(context.Background(), store); err != nil {
			return err
		}
	}

	handler := api.NewHandler(store, logger)
	handler.MaxUploadBytes = cfg.MaxUploadBytes()
	handler.PDF = report.PDFOptions{
		Title:     cfg.Report.Title,
		LeftLogo:  cfg.Report.LeftLogo,
		RightLogo: cfg.Report.RightLogo,
	}

	router := api.NewRouter(handler, api.RouterOptions{AllowedOrigins: cfg.Server.AllowedOrigins})

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			slog.String("addr", server.Addr),
			slog.String("db", cfg.Database.Path),
			slog.String("environment", cfg.Environment),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-quit:
	}

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

// seedPresets installs the presets into an empty store.
func seedPresets(ctx context.Context, store scenario.Store) error {
	existing, err := store.ListScenarios(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	for _, p := range scenario.Presets() {
		if err := store.SaveScenario(ctx, p); err != nil {
			return fmt.Errorf("seeding %s: %w", p.ID, err)
		}
	}
	return nil
}
