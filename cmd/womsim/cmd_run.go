package main

import (
	"encoding/json"
	"fmt"

	"github.com/nvandessel/womsim/internal/diffusion"
	"github.com/nvandessel/womsim/internal/logging"
	"github.com/nvandessel/womsim/internal/store"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a single simulation",
		Long: `Run one simulation to completion and report the adoption curve.

The population, contact network, and behavior parameters come from a
config file, a built-in scenario, or the defaults. Flags override the
loaded values. A seed is required; identical configs with identical
seeds produce identical results.

Examples:
  womsim run --scenario baseline
  womsim run --config womsim.yaml --seed 7
  womsim run --scenario word-of-mouth --steps 100 --output curve.csv
  womsim run --scenario ad-blitz --save --name "blitz control"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadRunConfig(cmd)
			if err != nil {
				return err
			}

			if traceDir, _ := cmd.Flags().GetString("trace-dir"); traceDir != "" {
				cfg.Logging.TraceDir = traceDir
			}

			opts := []diffusion.Option{diffusion.WithLogger(newLogger(cmd))}
			if cfg.Logging.TraceDir != "" {
				tl := logging.NewTraceLogger(cfg.Logging.TraceDir, cfg.Logging.Level)
				defer tl.Close()
				opts = append(opts, diffusion.WithTrace(tl))
			}

			result, err := diffusion.Run(cfg, opts...)
			if err != nil {
				return err
			}

			// Persist if requested. Naming a run implies saving it.
			name, _ := cmd.Flags().GetString("name")
			save, _ := cmd.Flags().GetBool("save")
			var savedID string
			if save || name != "" {
				rec, err := store.NewRunRecord(name, cfg, result)
				if err != nil {
					return fmt.Errorf("failed to build run record: %w", err)
				}
				st, err := openRunStore(cmd)
				if err != nil {
					return err
				}
				defer st.Close()
				if err := st.SaveRun(cmd.Context(), rec); err != nil {
					return fmt.Errorf("failed to save run: %w", err)
				}
				savedID = rec.ID
			}

			outputPath, _ := cmd.Flags().GetString("output")
			if outputPath != "" {
				if err := exportSeries(outputPath, result.Series); err != nil {
					return err
				}
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			showFinal, _ := cmd.Flags().GetBool("final")
			if jsonOut {
				payload := map[string]interface{}{
					"config":           cfg,
					"seed":             result.Seed,
					"initial_adopters": result.InitialAdopters,
					"final_adopters":   result.FinalCount(),
					"series":           result.Series,
				}
				if showFinal {
					payload["final_vector"] = result.FinalAdopters
				}
				if savedID != "" {
					payload["run_id"] = savedID
				}
				return json.NewEncoder(cmd.OutOrStdout()).Encode(payload)
			}

			out := cmd.OutOrStdout()
			format, _ := cmd.Flags().GetString("format")
			switch format {
			case "csv":
				return store.WriteSeriesCSV(out, result.Series)
			case "table":
			default:
				return fmt.Errorf("unsupported format %q (use table or csv)", format)
			}

			fmt.Fprintf(out, "Run complete: %s\n", cfg.String())
			fmt.Fprintf(out, "  Initial adopters: %d\n", result.InitialAdopters)
			fmt.Fprintf(out, "  Final adopters:   %d of %d (%.1f%%)\n",
				result.FinalCount(), cfg.Network.Agents,
				100*float64(result.FinalCount())/float64(cfg.Network.Agents))
			if savedID != "" {
				fmt.Fprintf(out, "  Saved as: %s\n", savedID)
			}
			if outputPath != "" {
				fmt.Fprintf(out, "  Series written to: %s\n", outputPath)
			}

			fmt.Fprintf(out, "\n%6s %10s\n", "tick", "adopters")
			for _, p := range result.Series {
				fmt.Fprintf(out, "%6d %10d\n", p.Tick, p.Adopters)
			}

			if showFinal {
				fmt.Fprintf(out, "\n%6s %8s\n", "agent", "adopted")
				for id, adopted := range result.FinalAdopters {
					mark := "no"
					if adopted {
						mark = "yes"
					}
					fmt.Fprintf(out, "%6d %8s\n", id, mark)
				}
			}

			return nil
		},
	}

	addConfigFlags(cmd)
	cmd.Flags().String("format", "table", "Series output: table or csv (csv prints bare CSV to stdout)")
	cmd.Flags().Bool("final", false, "Also report the per-agent adoption vector (table and --json output)")
	cmd.Flags().Bool("save", false, "Persist the run to the run database")
	cmd.Flags().String("name", "", "Name for the saved run (implies --save)")
	cmd.Flags().StringP("output", "o", "", "Write the series to a file (.csv or .jsonl)")
	cmd.Flags().String("trace-dir", "", "Directory for trace.jsonl (needs --log-level debug or trace)")

	return cmd
}
