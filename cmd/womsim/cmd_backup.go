package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nvandessel/womsim/internal/backup"
	"github.com/spf13/cobra"
)

func newBackupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Archive saved runs to a file",
		Long: `Export every saved run, including its full adoption series and config
snapshot, to a single checksummed archive file. Archives default to the
backups/ subdirectory of the data directory and are pruned by a
keep-last-N policy.

Examples:
  womsim backup                          # archive to the default location
  womsim backup -o runs.archive          # archive to a specific file
  womsim backup restore runs.archive     # merge archived runs back in
  womsim backup list                     # list existing archives
  womsim backup verify runs.archive      # check archive integrity`,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputPath, _ := cmd.Flags().GetString("output")
			keep, _ := cmd.Flags().GetInt("keep")

			pruneDir := ""
			if outputPath == "" {
				dir, err := backupDir(cmd)
				if err != nil {
					return err
				}
				outputPath = backup.GenerateBackupPath(dir)
				pruneDir = dir
			}

			st, err := openRunStore(cmd)
			if err != nil {
				return err
			}
			defer st.Close()

			header, err := backup.Backup(cmd.Context(), st, outputPath)
			if err != nil {
				return fmt.Errorf("backup failed: %w", err)
			}

			// Retention only applies to the managed backup directory;
			// explicit --output files are the user's to manage.
			if pruneDir != "" && keep > 0 {
				if _, err := backup.ApplyRetention(pruneDir, &backup.CountPolicy{MaxCount: keep}); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: failed to apply retention: %v\n", err)
				}
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			out := cmd.OutOrStdout()
			if jsonOut {
				info, _ := os.Stat(outputPath)
				var sizeBytes int64
				if info != nil {
					sizeBytes = info.Size()
				}
				return json.NewEncoder(out).Encode(map[string]interface{}{
					"status":     "archived",
					"path":       outputPath,
					"run_count":  header.RunCount,
					"size_bytes": sizeBytes,
				})
			}

			fmt.Fprintf(out, "Archived %d runs to %s\n", header.RunCount, outputPath)
			return nil
		},
	}

	cmd.Flags().StringP("output", "o", "", "Archive file path (default: auto-generated in the backup directory)")
	cmd.Flags().Int("keep", 10, "Archives to keep in the backup directory (0 disables pruning)")

	cmd.AddCommand(
		newBackupRestoreCmd(),
		newBackupListCmd(),
		newBackupVerifyCmd(),
		newBackupPruneCmd(),
	)

	return cmd
}

func newBackupRestoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore <archive>",
		Short: "Restore runs from an archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := backup.RestoreMerge
			if replace, _ := cmd.Flags().GetBool("replace"); replace {
				mode = backup.RestoreReplace
			}

			st, err := openRunStore(cmd)
			if err != nil {
				return err
			}
			defer st.Close()

			result, err := backup.Restore(cmd.Context(), st, args[0], mode)
			if err != nil {
				return fmt.Errorf("restore failed: %w", err)
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			out := cmd.OutOrStdout()
			if jsonOut {
				return json.NewEncoder(out).Encode(result)
			}

			fmt.Fprintf(out, "Restored %d runs (%d skipped", result.RunsRestored, result.RunsSkipped)
			if mode == backup.RestoreReplace {
				fmt.Fprintf(out, ", %d cleared", result.RunsDeleted)
			}
			fmt.Fprintln(out, ")")
			return nil
		},
	}

	cmd.Flags().Bool("replace", false, "Delete existing runs before restoring (default merges)")

	return cmd
}

func newBackupListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List archives in the backup directory, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := backupDir(cmd)
			if err != nil {
				return err
			}

			backups, err := backup.ListBackups(dir)
			if err != nil {
				return err
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			out := cmd.OutOrStdout()
			if jsonOut {
				type entry struct {
					Path      string `json:"path"`
					SizeBytes int64  `json:"size_bytes"`
					CreatedAt string `json:"created_at"`
					RunCount  int    `json:"run_count"`
				}
				entries := make([]entry, len(backups))
				for i, b := range backups {
					entries[i] = entry{b.Path, b.Size, b.CreatedAt.Format("2006-01-02T15:04:05Z07:00"), b.RunCount}
				}
				return json.NewEncoder(out).Encode(map[string]interface{}{
					"backups": entries,
					"count":   len(entries),
				})
			}

			if len(backups) == 0 {
				fmt.Fprintf(out, "No archives in %s\n", dir)
				return nil
			}

			fmt.Fprintf(out, "Archives in %s (%d):\n\n", dir, len(backups))
			for _, b := range backups {
				fmt.Fprintf(out, "%s  %s  %d runs  %d bytes\n",
					filepath.Base(b.Path), b.CreatedAt.Format("2006-01-02 15:04"), b.RunCount, b.Size)
			}
			return nil
		},
	}
}

func newBackupVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <archive>",
		Short: "Verify an archive's checksum and header",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			header, err := backup.ReadHeader(args[0])
			if err != nil {
				return fmt.Errorf("invalid archive: %w", err)
			}
			if err := backup.VerifyChecksum(args[0]); err != nil {
				return fmt.Errorf("verification failed: %w", err)
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			out := cmd.OutOrStdout()
			if jsonOut {
				return json.NewEncoder(out).Encode(map[string]interface{}{
					"status":    "ok",
					"path":      args[0],
					"run_count": header.RunCount,
					"checksum":  header.Checksum,
				})
			}

			fmt.Fprintf(out, "OK: %s (%d runs, created %s)\n",
				args[0], header.RunCount, header.CreatedAt.Format("2006-01-02 15:04"))
			return nil
		},
	}
}

func newBackupPruneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete old archives by count, age, or total size",
		Long: `Apply a retention policy to the backup directory. An archive is kept
if ANY given policy keeps it; everything else is deleted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := backupDir(cmd)
			if err != nil {
				return err
			}

			policy, err := pruneRetentionPolicy(cmd)
			if err != nil {
				return err
			}

			deleted, err := backup.ApplyRetention(dir, policy)
			if err != nil {
				return err
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			out := cmd.OutOrStdout()
			if jsonOut {
				names := make([]string, len(deleted))
				for i, d := range deleted {
					names[i] = filepath.Base(d)
				}
				return json.NewEncoder(out).Encode(map[string]interface{}{
					"status":  "pruned",
					"deleted": names,
					"count":   len(names),
				})
			}

			if len(deleted) == 0 {
				fmt.Fprintln(out, "Nothing to prune.")
				return nil
			}
			for _, d := range deleted {
				fmt.Fprintf(out, "Deleted %s\n", filepath.Base(d))
			}
			return nil
		},
	}

	cmd.Flags().Int("keep", 10, "Keep the N most recent archives")
	cmd.Flags().String("max-age", "", "Also keep archives newer than this (e.g. 30d, 2w, 720h)")
	cmd.Flags().String("max-size", "", "Also keep archives within this total size (e.g. 100MB)")

	return cmd
}

// pruneRetentionPolicy builds the retention policy from prune flags.
// Multiple flags union: an archive survives if any policy keeps it.
func pruneRetentionPolicy(cmd *cobra.Command) (backup.RetentionPolicy, error) {
	keep, _ := cmd.Flags().GetInt("keep")
	policies := []backup.RetentionPolicy{&backup.CountPolicy{MaxCount: keep}}

	if s, _ := cmd.Flags().GetString("max-age"); s != "" {
		maxAge, err := backup.ParseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("invalid --max-age: %w", err)
		}
		policies = append(policies, &backup.AgePolicy{MaxAge: maxAge})
	}
	if s, _ := cmd.Flags().GetString("max-size"); s != "" {
		maxSize, err := backup.ParseSize(s)
		if err != nil {
			return nil, fmt.Errorf("invalid --max-size: %w", err)
		}
		policies = append(policies, &backup.SizePolicy{MaxTotalBytes: maxSize})
	}

	if len(policies) == 1 {
		return policies[0], nil
	}
	return &backup.CompositePolicy{Policies: policies}, nil
}

// backupDir resolves where archives live: a backups/ subdirectory of
// the data directory.
func backupDir(cmd *cobra.Command) (string, error) {
	dir, err := dataDir(cmd)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "backups"), nil
}
