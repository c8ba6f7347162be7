// Package worker runs background jobs alongside the HTTP server.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/hyperengineering/lifter/internal/snapshot"
)

// BackupRecorder receives backup outcomes for metrics.
type BackupRecorder interface {
	BackupFinished(ok bool)
}

// BackupResult describes one backup run.
type BackupResult struct {
	Path     string
	Uploaded bool
}

// BackupWorker exports the collections to a local JSON file and uploads it
// when an uploader is configured.
type BackupWorker struct {
	source   snapshot.Source
	dir      string
	interval time.Duration
	uploader snapshot.Uploader
	recorder BackupRecorder
	now      func() time.Time
}

// NewBackupWorker creates a worker writing into dir every interval.
// The uploader and recorder are optional.
func NewBackupWorker(source snapshot.Source, dir string, interval time.Duration, uploader snapshot.Uploader, recorder BackupRecorder) *BackupWorker {
	return &BackupWorker{
		source:   source,
		dir:      dir,
		interval: interval,
		uploader: uploader,
		recorder: recorder,
		now:      time.Now,
	}
}

// Run starts the worker loop. Backs up immediately on start, then on each
// interval. Respects context cancellation for graceful shutdown.
func (w *BackupWorker) Run(ctx context.Context) {
	slog.Info("worker started",
		"component", "worker",
		"worker", "backup",
		"action", "worker_started",
		"interval", w.interval.String(),
	)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.runLogged(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("worker stopped",
				"component", "worker",
				"worker", "backup",
				"action", "worker_stopped",
				"reason", "context_cancelled",
			)
			return
		case <-ticker.C:
			w.runLogged(ctx)
		}
	}
}

func (w *BackupWorker) runLogged(ctx context.Context) {
	res, err := w.Backup(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		slog.Warn("backup failed",
			"component", "worker",
			"worker", "backup",
			"action", "backup_failed",
			"path", res.Path,
			"error", err,
		)
		return
	}
	slog.Info("backup completed",
		"component", "worker",
		"worker", "backup",
		"action", "backup_complete",
		"path", res.Path,
		"uploaded", res.Uploaded,
	)
}

// Backup performs one export and upload. When only the upload fails the
// result still carries the local path, which remains a valid backup.
func (w *BackupWorker) Backup(ctx context.Context) (res BackupResult, err error) {
	defer func() {
		if w.recorder != nil {
			w.recorder.BackupFinished(err == nil)
		}
	}()

	if err := ctx.Err(); err != nil {
		return res, err
	}

	path, err := snapshot.Export(w.source, w.dir, w.now())
	if err != nil {
		return res, fmt.Errorf("export: %w", err)
	}
	res.Path = path

	if w.uploader == nil {
		return res, nil
	}
	if _, ok := w.uploader.(*snapshot.NoopUploader); ok {
		return res, nil
	}
	if err := w.uploader.Upload(ctx, filepath.Base(path), path); err != nil {
		return res, err
	}
	res.Uploaded = true
	return res, nil
}
