package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/hyperengineering/lifter/internal/api"
	"github.com/hyperengineering/lifter/internal/app"
	"github.com/hyperengineering/lifter/internal/logging"
	"github.com/hyperengineering/lifter/internal/metrics"
	"github.com/hyperengineering/lifter/internal/parser"
	"github.com/hyperengineering/lifter/internal/snapshot"
	"github.com/hyperengineering/lifter/internal/store"
	"github.com/hyperengineering/lifter/internal/worker"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	// 1. Signal handling
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	// 2. Load configuration
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.RequireServeSecrets(); err != nil {
		return err
	}
	slog.Info("configuration loaded")

	// 3. Initialize logger
	_, logCloser := logging.Setup(cfg.Log)
	defer logCloser.Close()
	slog.Info("logger initialized", "level", cfg.Log.Level, "file", cfg.Log.File)

	// 4. Initialize store
	kv, err := openKV(ctx, cfg.Storage)
	if err != nil {
		return err
	}

	// 5. Initialize metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewManager("lifter", "server", reg)

	// 6. Initialize parser and session service
	var p parser.Parser
	if cfg.Parser.APIKey != "" {
		p = newParser(cfg.Parser)
		slog.Info("parser initialized", "model", cfg.Parser.Model)
	} else {
		slog.Warn("parser disabled, no API key configured")
	}

	svc := app.New(store.NewCollections(kv), p, app.WithRecorder(m))
	if err := svc.Load(ctx); err != nil {
		kv.Close()
		return err
	}

	// 7. Initialize HTTP router
	handler := api.NewHandler(svc, cfg.Auth.APIKey, Version, cfg.Parser.Model, time.Duration(cfg.Parser.Timeout))
	router := api.NewRouter(handler, m, reg, cfg.Server.CORSOrigins...)
	slog.Info("router initialized")

	// 8. Configure HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout),
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout),
	}

	// 9. Workers
	var wg sync.WaitGroup
	if interval := time.Duration(cfg.Snapshot.Interval); interval > 0 {
		uploader, err := snapshot.NewUploader(cfg.Snapshot)
		if err != nil {
			svc.Close()
			return err
		}
		backups := worker.NewBackupWorker(svc, cfg.Snapshot.Dir, interval, uploader, m)
		startWorker(ctx, &wg, "backup", backups.Run)
	}

	// 10. Start HTTP server in goroutine
	go func() {
		slog.Info("server starting", "address", addr)
		// ErrServerClosed is the expected error when Shutdown() is called gracefully.
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			cancel()
		}
	}()

	// 11. Block until signal received
	<-ctx.Done()
	slog.Info("shutdown initiated")

	// 12. Graceful shutdown sequence
	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout))
	defer shutdownCancel()

	// 12a. Stop HTTP server (drains in-flight requests)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	// 12b. Wait for workers to complete
	wg.Wait()

	// 12c. Close store
	if err := svc.Close(); err != nil {
		slog.Error("store close error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}

// startWorker launches a background worker goroutine that respects context cancellation.
// Workers are tracked via WaitGroup for graceful shutdown.
func startWorker(ctx context.Context, wg *sync.WaitGroup, name string, fn func(ctx context.Context)) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		slog.Info("worker started", "worker", name)
		fn(ctx)
		slog.Info("worker stopped", "worker", name)
	}()
}
