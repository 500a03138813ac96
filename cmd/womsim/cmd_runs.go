package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nvandessel/womsim/internal/store"
	"github.com/spf13/cobra"
)

func newRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Manage saved runs",
		Long: `List, inspect, export, and delete simulation runs saved with
'womsim run --save'. Runs live in a SQLite database under the data
directory (~/.womsim by default; override with --data-dir or
WOMSIM_HOME).`,
	}

	cmd.AddCommand(
		newRunsListCmd(),
		newRunsShowCmd(),
		newRunsExportCmd(),
		newRunsDeleteCmd(),
	)

	return cmd
}

func newRunsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openRunStore(cmd)
			if err != nil {
				return err
			}
			defer st.Close()

			runs, err := st.ListRuns(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list runs: %w", err)
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			out := cmd.OutOrStdout()
			if jsonOut {
				return json.NewEncoder(out).Encode(map[string]interface{}{
					"runs":  runs,
					"count": len(runs),
				})
			}

			if len(runs) == 0 {
				fmt.Fprintln(out, "No saved runs.")
				fmt.Fprintln(out, "\nUse 'womsim run --save' to persist a run.")
				return nil
			}

			fmt.Fprintf(out, "Saved runs (%d):\n\n", len(runs))
			for _, r := range runs {
				name := r.Name
				if name == "" {
					name = "(unnamed)"
				}
				fmt.Fprintf(out, "%s  %s  %s\n", r.ID, r.CreatedAt.Format("2006-01-02 15:04"), name)
				fmt.Fprintf(out, "  seed=%d steps=%d agents=%d adopters %d -> %d\n",
					r.Seed, r.Steps, r.Agents, r.InitialAdopters, r.FinalAdopters)
			}

			return nil
		},
	}
}

func newRunsShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show a saved run, including its series",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openRunStore(cmd)
			if err != nil {
				return err
			}
			defer st.Close()

			rec, err := st.GetRun(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to load run: %w", err)
			}
			if rec == nil {
				return fmt.Errorf("run not found: %s", args[0])
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			out := cmd.OutOrStdout()
			if jsonOut {
				return json.NewEncoder(out).Encode(rec)
			}

			if showConfig, _ := cmd.Flags().GetBool("config"); showConfig {
				fmt.Fprint(out, rec.ConfigYAML)
				return nil
			}

			fmt.Fprintf(out, "Run: %s\n", rec.ID)
			if rec.Name != "" {
				fmt.Fprintf(out, "Name: %s\n", rec.Name)
			}
			fmt.Fprintf(out, "Created: %s\n", rec.CreatedAt.Format(time.RFC3339))
			fmt.Fprintf(out, "Parameters: seed=%d steps=%d agents=%d neighbors=%d randomness=%g\n",
				rec.Seed, rec.Steps, rec.Agents, rec.Neighbors, rec.Randomness)
			fmt.Fprintf(out, "Adopters: %d -> %d\n\n", rec.InitialAdopters, rec.FinalAdopters)

			fmt.Fprintf(out, "%6s %10s\n", "tick", "adopters")
			for _, p := range rec.Series {
				fmt.Fprintf(out, "%6d %10d\n", p.Tick, p.Adopters)
			}

			return nil
		},
	}

	cmd.Flags().Bool("config", false, "Print the stored config YAML instead of the series")

	return cmd
}

func newRunsExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <run-id>",
		Short: "Export a saved run's series to CSV or JSONL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openRunStore(cmd)
			if err != nil {
				return err
			}
			defer st.Close()

			rec, err := st.GetRun(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to load run: %w", err)
			}
			if rec == nil {
				return fmt.Errorf("run not found: %s", args[0])
			}

			outputPath, _ := cmd.Flags().GetString("output")
			if outputPath == "" {
				return store.WriteSeriesCSV(cmd.OutOrStdout(), rec.Series)
			}
			if err := exportSeries(outputPath, rec.Series); err != nil {
				return err
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]string{
					"status": "exported",
					"id":     rec.ID,
					"path":   outputPath,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Series for %s written to %s\n", rec.ID, outputPath)

			return nil
		},
	}

	cmd.Flags().StringP("output", "o", "", "Output file (.csv or .jsonl; default CSV to stdout)")

	return cmd
}

func newRunsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <run-id>",
		Short: "Delete a saved run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openRunStore(cmd)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.DeleteRun(cmd.Context(), args[0]); err != nil {
				return err
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]string{
					"status": "deleted",
					"id":     args[0],
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted run %s\n", args[0])

			return nil
		},
	}
}
