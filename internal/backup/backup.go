// Package backup archives the saved-run database to portable files
// and restores it from them. An archive is a single self-describing
// file: a header line with counts and a checksum, then the full run
// records (series included) gzip-compressed.
package backup

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/nvandessel/womsim/internal/store"
)

// Archive is the decompressed payload of an archive file.
type Archive struct {
	Version   int               `json:"version"`
	CreatedAt time.Time         `json:"created_at"`
	Runs      []store.RunRecord `json:"runs"`
}

// DefaultBackupDir returns where archives live by default: a backups/
// subdirectory of the run database directory.
func DefaultBackupDir() (string, error) {
	dir, err := store.DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "backups"), nil
}

// Backup exports every saved run, with its full series, to an archive
// file at outputPath. Returns the written header.
func Backup(ctx context.Context, st store.RunStore, outputPath string) (*ArchiveHeader, error) {
	summaries, err := st.ListRuns(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	// ListRuns strips the series; fetch each run in full.
	runs := make([]store.RunRecord, 0, len(summaries))
	for _, s := range summaries {
		rec, err := st.GetRun(ctx, s.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load run %s: %w", s.ID, err)
		}
		if rec == nil {
			continue
		}
		runs = append(runs, *rec)
	}

	archive := &Archive{
		Version:   FormatVersion,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
		Runs:      runs,
	}

	header, err := writeArchive(outputPath, archive)
	if err != nil {
		return nil, fmt.Errorf("failed to write archive: %w", err)
	}
	return header, nil
}

// RestoreMode controls how restore handles runs already in the store.
type RestoreMode string

const (
	// RestoreMerge keeps existing runs and skips archived runs whose
	// id is already present (default).
	RestoreMerge RestoreMode = "merge"
	// RestoreReplace deletes all existing runs before restoring.
	RestoreReplace RestoreMode = "replace"
)

// RestoreResult reports what a restore did.
type RestoreResult struct {
	RunsRestored int `json:"runs_restored"`
	RunsSkipped  int `json:"runs_skipped"`
	RunsDeleted  int `json:"runs_deleted"`
}

// Restore imports runs from an archive file into the store.
func Restore(ctx context.Context, st store.RunStore, inputPath string, mode RestoreMode) (*RestoreResult, error) {
	archive, err := ReadArchive(inputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read archive: %w", err)
	}

	result := &RestoreResult{}

	if mode == RestoreReplace {
		existing, err := st.ListRuns(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list existing runs: %w", err)
		}
		for _, r := range existing {
			if err := st.DeleteRun(ctx, r.ID); err != nil {
				return nil, fmt.Errorf("failed to clear run %s: %w", r.ID, err)
			}
			result.RunsDeleted++
		}
	}

	for i := range archive.Runs {
		rec := archive.Runs[i]
		if mode == RestoreMerge {
			existing, err := st.GetRun(ctx, rec.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to check existing run %s: %w", rec.ID, err)
			}
			if existing != nil {
				result.RunsSkipped++
				continue
			}
		}
		if err := st.SaveRun(ctx, &rec); err != nil {
			return nil, fmt.Errorf("failed to restore run %s: %w", rec.ID, err)
		}
		result.RunsRestored++
	}

	return result, nil
}

// GenerateBackupPath creates a timestamped archive filename in dir.
func GenerateBackupPath(dir string) string {
	ts := time.Now().UTC().Format("20060102-150405")
	return filepath.Join(dir, fmt.Sprintf("womsim-backup-%s.archive", ts))
}

// isBackupFile reports whether name looks like an archive this package
// wrote, so retention never deletes unrelated files.
func isBackupFile(name string) bool {
	return strings.HasPrefix(name, "womsim-backup-") && strings.HasSuffix(name, ".archive")
}
