package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/multierr"

	"github.com/hyperengineering/lifter/internal/workout"
)

// FormatVersion is written into every backup file.
const FormatVersion = 1

// Source provides the collections to back up.
type Source interface {
	Plans() []workout.WorkoutPlan
	Trackers() []workout.Tracker
}

// Backup is the on-disk backup document.
type Backup struct {
	Version   int                   `json:"version"`
	CreatedAt int64                 `json:"createdAt"` // unix millis
	Plans     []workout.WorkoutPlan `json:"plans"`
	Trackers  []workout.Tracker     `json:"trackers"`
}

// FileName returns the backup file name for t.
func FileName(t time.Time) string {
	return "lifter-" + t.UTC().Format("20060102T150405.000Z") + ".json"
}

// Export writes both collections of src to a new file in dir and returns its
// path. The file appears under its final name only once fully written.
func Export(src Source, dir string, now time.Time) (string, error) {
	b := Backup{
		Version:   FormatVersion,
		CreatedAt: now.UnixMilli(),
		Plans:     src.Plans(),
		Trackers:  src.Trackers(),
	}
	if b.Plans == nil {
		b.Plans = []workout.WorkoutPlan{}
	}
	if b.Trackers == nil {
		b.Trackers = []workout.Tracker{}
	}

	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal backup: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}

	path := filepath.Join(dir, FileName(now))
	tmp, err := os.CreateTemp(dir, ".backup-*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	_, err = tmp.Write(data)
	if err = multierr.Append(err, tmp.Close()); err != nil {
		return "", fmt.Errorf("write backup: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("rename backup: %w", err)
	}
	return path, nil
}

// ReadFile loads a backup document.
func ReadFile(path string) (*Backup, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read backup: %w", err)
	}
	var b Backup
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parse backup: %w", err)
	}
	if b.Version != FormatVersion {
		return nil, fmt.Errorf("unsupported backup version %d", b.Version)
	}
	return &b, nil
}
