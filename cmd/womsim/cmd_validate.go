package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a configuration without running it",
		Long: `Load a config file or scenario, apply flag overrides, and check
every field against its documented range. Exits non-zero when the
configuration is invalid.

Examples:
  womsim validate --config womsim.yaml
  womsim validate --scenario baseline --agents 2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadRunConfig(cmd)
			if err != nil {
				return err
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			out := cmd.OutOrStdout()

			if err := cfg.Validate(); err != nil {
				if jsonOut {
					json.NewEncoder(out).Encode(map[string]interface{}{
						"valid": false,
						"error": err.Error(),
					})
					return nil
				}
				return err
			}

			if jsonOut {
				return json.NewEncoder(out).Encode(map[string]interface{}{
					"valid":  true,
					"config": cfg,
				})
			}
			fmt.Fprintf(out, "Configuration valid: %s\n", cfg.String())

			return nil
		},
	}

	addConfigFlags(cmd)

	return cmd
}
