// Package logging builds the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/hyperengineering/lifter/internal/config"
)

// Setup installs the default logger described by cfg and returns it. When a
// log file is configured, output goes to both stdout and the rotated file.
// The returned closer releases the file, and is a no-op otherwise.
func Setup(cfg config.LogConfig) (*slog.Logger, io.Closer) {
	out, closer := Writer(cfg, os.Stdout)
	logger := New(out, cfg.Level, cfg.Format)
	slog.SetDefault(logger)
	return logger, closer
}

// New returns a logger writing to w in the given format ("json" or "text").
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	if strings.EqualFold(format, "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// Writer returns the destination for log output.
func Writer(cfg config.LogConfig, stdout io.Writer) (io.Writer, io.Closer) {
	if cfg.File == "" {
		return stdout, nopCloser{}
	}

	maxSize := cfg.MaxSizeMB
	if maxSize <= 0 {
		maxSize = 50
	}
	rotated := &lumberjack.Logger{
		Filename:  cfg.File,
		MaxSize:   maxSize, // megabytes
		LocalTime: false,
		Compress:  true,
	}
	return io.MultiWriter(stdout, rotated), rotated
}

// ParseLevel maps a config level name to a slog level. Unknown names are info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
