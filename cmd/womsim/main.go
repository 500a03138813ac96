package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/nvandessel/womsim/internal/config"
	"github.com/nvandessel/womsim/internal/diffusion"
	"github.com/nvandessel/womsim/internal/logging"
	"github.com/nvandessel/womsim/internal/scenario"
	"github.com/nvandessel/womsim/internal/store"
	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "womsim",
		Short: "Word-of-mouth adoption simulator on small-world networks",
		Long: `womsim simulates product adoption spreading through a population
connected by a Watts-Strogatz small-world contact network.

Agents adopt through two channels: broadcast advertising, which reaches
everyone each tick, and word of mouth, where existing adopters contact
their network neighbors. Runs are deterministic: the same configuration
and seed always produce the same adoption curve.`,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON (for scripting)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: trace, debug, info, warn, error")
	rootCmd.PersistentFlags().String("data-dir", "", "Run database directory (default ~/.womsim)")

	// Add subcommands
	rootCmd.AddCommand(
		newVersionCmd(),
		newInitCmd(),
		newRunCmd(),
		newExperimentCmd(),
		newGraphCmd(),
		newScenariosCmd(),
		newRunsCmd(),
		newBackupCmd(),
		newValidateCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]string{"version": version})
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "womsim version %s\n", version)
			}
		},
	}
}

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter config and create the data directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			output, _ := cmd.Flags().GetString("output")
			force, _ := cmd.Flags().GetBool("force")

			dir, err := dataDir(cmd)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create data directory: %w", err)
			}

			if _, err := os.Stat(output); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", output)
			}

			starter, err := scenario.Raw("baseline")
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, starter, 0644); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]string{
					"status":   "initialized",
					"config":   output,
					"data_dir": dir,
				})
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote starter config to %s\n", output)
				fmt.Fprintf(cmd.OutOrStdout(), "Data directory: %s\n", dir)
				fmt.Fprintf(cmd.OutOrStdout(), "\nRun it with 'womsim run --config %s'\n", output)
			}

			return nil
		},
	}

	cmd.Flags().StringP("output", "o", "womsim.yaml", "Where to write the starter config")
	cmd.Flags().Bool("force", false, "Overwrite an existing config file")

	return cmd
}

// addConfigFlags registers the flags shared by every command that loads
// a simulation config.
func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("config", "c", "", "Config file (YAML)")
	cmd.Flags().String("scenario", "", "Built-in scenario preset (see 'womsim scenarios')")
	cmd.Flags().Int64("seed", 0, "Random seed (overrides config)")
	cmd.Flags().Int("steps", 0, "Ticks to simulate (overrides config)")
	cmd.Flags().Int("agents", 0, "Population size (overrides config)")
	cmd.Flags().Int("neighbors", 0, "Ring-lattice degree (overrides config)")
	cmd.Flags().Float64("randomness", 0, "Rewiring probability (overrides config)")
}

// loadRunConfig resolves the configuration for simulation commands: a
// --config file or --scenario preset (or the defaults), with flag
// overrides applied on top.
func loadRunConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	scenarioName, _ := cmd.Flags().GetString("scenario")

	if configPath != "" && scenarioName != "" {
		return nil, fmt.Errorf("cannot specify both --config and --scenario")
	}

	var cfg *config.Config
	var err error
	switch {
	case configPath != "":
		cfg, err = config.LoadFromFile(configPath)
	case scenarioName != "":
		cfg, err = scenario.Load(scenarioName)
	default:
		cfg = config.Default()
	}
	if err != nil {
		return nil, err
	}

	applyConfigFlags(cmd, cfg)
	return cfg, nil
}

// applyConfigFlags overlays command-line overrides on a loaded config.
// Only flags the user actually set are applied.
func applyConfigFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("seed") {
		v, _ := cmd.Flags().GetInt64("seed")
		cfg.Seed = &v
	}
	if cmd.Flags().Changed("steps") {
		cfg.Steps, _ = cmd.Flags().GetInt("steps")
	}
	if cmd.Flags().Changed("agents") {
		cfg.Network.Agents, _ = cmd.Flags().GetInt("agents")
	}
	if cmd.Flags().Changed("neighbors") {
		cfg.Network.Neighbors, _ = cmd.Flags().GetInt("neighbors")
	}
	if cmd.Flags().Changed("randomness") {
		cfg.Network.Randomness, _ = cmd.Flags().GetFloat64("randomness")
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Logging.Level, _ = cmd.Flags().GetString("log-level")
	}
}

// newLogger builds the operational logger from --log-level, writing to
// the command's error stream so data output stays clean on stdout.
func newLogger(cmd *cobra.Command) *slog.Logger {
	level, _ := cmd.Flags().GetString("log-level")
	return logging.NewLogger(level, cmd.ErrOrStderr())
}

// dataDir resolves the run database directory: the --data-dir flag,
// then WOMSIM_HOME, then ~/.womsim.
func dataDir(cmd *cobra.Command) (string, error) {
	dir, _ := cmd.Flags().GetString("data-dir")
	if dir != "" {
		return dir, nil
	}
	return store.DefaultDir()
}

func openRunStore(cmd *cobra.Command) (store.RunStore, error) {
	dir, err := dataDir(cmd)
	if err != nil {
		return nil, err
	}
	return store.NewSQLiteRunStore(dir)
}

// exportSeries writes a series to path, choosing the format from the
// file extension.
func exportSeries(path string, series []diffusion.TickPoint) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	switch ext := filepath.Ext(path); ext {
	case ".csv":
		return store.WriteSeriesCSV(f, series)
	case ".jsonl":
		return store.WriteSeriesJSONL(f, series)
	default:
		return fmt.Errorf("unsupported output extension %q (use .csv or .jsonl)", ext)
	}
}
