package main

import (
	"encoding/json"
	"fmt"

	"github.com/nvandessel/womsim/internal/scenario"
	"github.com/spf13/cobra"
)

func newScenariosCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scenarios [name]",
		Short: "List built-in scenarios or show one",
		Long: `Without arguments, list the scenario presets compiled into the
binary. With a name, print that scenario's YAML, ready to copy into a
config file and edit.

Examples:
  womsim scenarios
  womsim scenarios word-of-mouth > my-config.yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			jsonOut, _ := cmd.Flags().GetBool("json")

			if len(args) == 1 {
				if jsonOut {
					cfg, err := scenario.Load(args[0])
					if err != nil {
						return err
					}
					return json.NewEncoder(out).Encode(map[string]interface{}{
						"name":   args[0],
						"config": cfg,
					})
				}
				raw, err := scenario.Raw(args[0])
				if err != nil {
					return err
				}
				fmt.Fprint(out, string(raw))
				return nil
			}

			names := scenario.List()
			if jsonOut {
				return json.NewEncoder(out).Encode(map[string]interface{}{
					"scenarios": names,
					"count":     len(names),
				})
			}

			fmt.Fprintf(out, "Built-in scenarios (%d):\n\n", len(names))
			for _, name := range names {
				cfg, err := scenario.Load(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "  %-16s %s\n", name, cfg.String())
			}
			fmt.Fprintln(out, "\nUse 'womsim run --scenario <name>' to run one.")

			return nil
		},
	}
}
