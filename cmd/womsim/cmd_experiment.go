package main

import (
	"encoding/json"
	"fmt"

	"github.com/nvandessel/womsim/internal/experiment"
	"github.com/spf13/cobra"
)

func newExperimentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "experiment",
		Short: "Run repeated simulations and aggregate the curves",
		Long: `Run the same configuration many times on a ladder of consecutive
seeds and report per-tick mean, standard deviation, minimum, and
maximum adopter counts.

Iterations run concurrently. The aggregate is independent of --workers;
only wall-clock time changes.

Examples:
  womsim experiment --scenario baseline --iterations 30
  womsim experiment --config womsim.yaml -n 100 --workers 8 --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadRunConfig(cmd)
			if err != nil {
				return err
			}

			iterations, _ := cmd.Flags().GetInt("iterations")
			workers, _ := cmd.Flags().GetInt("workers")
			seedStep, _ := cmd.Flags().GetInt64("seed-step")

			summary, err := experiment.Run(cmd.Context(), cfg, experiment.Config{
				Iterations: iterations,
				Workers:    workers,
				SeedStep:   seedStep,
			}, newLogger(cmd))
			if err != nil {
				return err
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			out := cmd.OutOrStdout()
			if jsonOut {
				return json.NewEncoder(out).Encode(summary)
			}

			format, _ := cmd.Flags().GetString("format")
			switch format {
			case "csv":
				return experiment.WriteSummaryCSV(out, summary)
			case "table":
			default:
				return fmt.Errorf("unsupported format %q (use table or csv)", format)
			}

			fmt.Fprintf(out, "Experiment: %d iterations of %s\n\n", summary.Iterations, cfg.String())
			fmt.Fprintf(out, "%6s %10s %10s %6s %6s\n", "tick", "mean", "sd", "min", "max")
			for _, ts := range summary.Ticks {
				fmt.Fprintf(out, "%6d %10.2f %10.2f %6d %6d\n", ts.Tick, ts.Mean, ts.Sd, ts.Min, ts.Max)
			}
			fmt.Fprintf(out, "\nFinal: mean %.2f, sd %.2f, range [%d, %d] of %d agents\n",
				summary.Final.Mean, summary.Final.Sd, summary.Final.Min, summary.Final.Max,
				cfg.Network.Agents)

			return nil
		},
	}

	addConfigFlags(cmd)
	cmd.Flags().String("format", "table", "Summary output: table or csv (csv prints bare CSV to stdout)")
	cmd.Flags().IntP("iterations", "n", 10, "Number of runs")
	cmd.Flags().Int("workers", 4, "Concurrent runs")
	cmd.Flags().Int64("seed-step", 1, "Seed increment between iterations")

	return cmd
}
