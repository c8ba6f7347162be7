package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hyperengineering/lifter/internal/app"
	"github.com/hyperengineering/lifter/internal/config"
	"github.com/hyperengineering/lifter/internal/logging"
	"github.com/hyperengineering/lifter/internal/parser"
	"github.com/hyperengineering/lifter/internal/store"
)

// Version is set at build time via ldflags: -ldflags "-X main.Version=1.0.0"
var Version = "dev"

var (
	jsonOutput bool
	ephemeral  bool
)

// Replaced in tests.
var (
	openKV = func(ctx context.Context, cfg config.StorageConfig) (store.KV, error) {
		return store.Open(ctx, cfg)
	}
	newParser = func(cfg config.ParserConfig) parser.Parser {
		return parser.NewOpenAI(cfg.APIKey, cfg.Model)
	}
)

var rootCmd = &cobra.Command{
	Use:           "lifter",
	Short:         "Lifter - workout plan tracker",
	Long:          "Import workout plans, log sets and edit exercises with scoped propagation.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false,
		"Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false,
		"Use an in-memory store; nothing is persisted")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(repCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(exerciseCmd)
	rootCmd.AddCommand(backupCmd)
}

// loadConfig loads configuration and applies --ephemeral.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if ephemeral {
		cfg.Storage.Backend = config.BackendMemory
	}
	return cfg, nil
}

// openService loads configuration, opens the store and loads both
// collections. Log output goes to stderr at warn level so it never mixes with
// command output. A parser is attached only when withParser is set.
func openService(ctx context.Context, cmd *cobra.Command, withParser bool) (*app.Service, *config.Config, error) {
	logger := logging.New(cmd.ErrOrStderr(), "warn", "text")
	slog.SetDefault(logger)

	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	var p parser.Parser
	if withParser {
		if err := cfg.RequireParserKey(); err != nil {
			return nil, nil, err
		}
		p = newParser(cfg.Parser)
	}

	kv, err := openKV(ctx, cfg.Storage)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}

	svc := app.New(store.NewCollections(kv), p, app.WithLogger(logger))
	if err := svc.Load(ctx); err != nil {
		kv.Close()
		return nil, nil, err
	}
	return svc, cfg, nil
}

// printJSON marshals v to JSON and writes to the given writer.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// newTabWriter returns a configured tabwriter for aligned columns.
func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}
