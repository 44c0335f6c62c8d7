package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xtding233/wotsim/internal/event"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <event>",
		Short: "Check an event configuration without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			jsonOut, _ := cmd.Flags().GetBool("json")

			_, p, err := event.NewLoader(configDir).Resolve(args[0], event.Overrides{})
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"event":    args[0],
					"valid":    true,
					"variants": len(p.Sim.Variants),
					"target":   p.Target.String(),
					"metric":   p.Metric.String(),
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d variants, base %s, fallback %s, target %s)\n",
				args[0], len(p.Sim.Variants), p.Sim.Base, p.Sim.Fallback, p.Target)
			return nil
		},
	}
}
