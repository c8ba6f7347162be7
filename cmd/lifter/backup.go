package main

import (
	"bufio"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hyperengineering/lifter/internal/snapshot"
	"github.com/hyperengineering/lifter/internal/store"
	"github.com/hyperengineering/lifter/internal/worker"
)

var (
	backupURL    bool
	restoreForce bool
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Export plans and trackers to a JSON backup",
	Long:  "Write both collections to a backup file in the snapshot directory and upload it when a bucket is configured.",
	Args:  cobra.NoArgs,
	RunE:  runBackup,
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore <file>",
	Short: "Replace all plans and trackers with a backup",
	Long:  "Overwrite both collections with the contents of a backup file. Requires --force or interactive confirmation.",
	Args:  cobra.ExactArgs(1),
	RunE:  runBackupRestore,
}

func init() {
	backupCmd.Flags().BoolVar(&backupURL, "url", false,
		"Print a pre-signed download URL for the uploaded backup")
	backupRestoreCmd.Flags().BoolVar(&restoreForce, "force", false,
		"Skip confirmation prompt")

	backupCmd.AddCommand(backupRestoreCmd)
}

func runBackup(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	svc, cfg, err := openService(ctx, cmd, false)
	if err != nil {
		return err
	}
	defer svc.Close()

	uploader, err := snapshot.NewUploader(cfg.Snapshot)
	if err != nil {
		return err
	}

	res, err := worker.NewBackupWorker(svc, cfg.Snapshot.Dir, time.Duration(cfg.Snapshot.Interval), uploader, nil).Backup(ctx)
	if err != nil {
		if res.Path != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "Backup written to %s but upload failed.\n", res.Path)
		}
		return err
	}

	var url string
	if backupURL {
		url, _, err = uploader.PresignedURL(ctx, filepath.Base(res.Path))
		if errors.Is(err, snapshot.ErrNotConfigured) {
			return fmt.Errorf("--url needs snapshot.bucket: %w", err)
		}
		if err != nil {
			return err
		}
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"path":     res.Path,
			"uploaded": res.Uploaded,
			"url":      url,
		})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Backup written to %s\n", res.Path)
	if res.Uploaded {
		fmt.Fprintln(cmd.OutOrStdout(), "Uploaded to", cfg.Snapshot.Bucket)
	}
	if url != "" {
		fmt.Fprintln(cmd.OutOrStdout(), url)
	}
	return nil
}

func runBackupRestore(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	b, err := snapshot.ReadFile(args[0])
	if err != nil {
		return err
	}

	if !restoreForce {
		errOut := cmd.ErrOrStderr()
		fmt.Fprintf(errOut, "WARNING: This replaces all stored data with %d plans and %d trackers from %s.\n",
			len(b.Plans), len(b.Trackers), args[0])
		fmt.Fprint(errOut, "Type \"restore\" to confirm: ")

		reader := bufio.NewReader(cmd.InOrStdin())
		input, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}
		if strings.TrimSpace(input) != "restore" {
			fmt.Fprintln(errOut, "Aborted.")
			return nil
		}
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	kv, err := openKV(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	cols := store.NewCollections(kv)
	defer cols.Close()

	if err := cols.SavePlans(ctx, b.Plans); err != nil {
		return err
	}
	if err := cols.SaveTrackers(ctx, b.Trackers); err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"plans":    len(b.Plans),
			"trackers": len(b.Trackers),
			"restored": true,
		})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Restored %d plans and %d trackers\n", len(b.Plans), len(b.Trackers))
	return nil
}
