package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gatefs/gatefs/pkg/gatefs/plan"
)

func newApplyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply [plan-file]",
		Short: "Apply a plan of file-system steps",
		Long: `Apply a JSON plan of file-system steps in dependency order.
Every step runs through the same confinement, throttling, and retry
machinery as the single-operation commands.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read plan file %s: %w", args[0], err)
			}
			p, err := plan.Unmarshal(data)
			if err != nil {
				return err
			}

			m, err := newMediator()
			if err != nil {
				return err
			}

			applied, err := plan.Apply(cmd.Context(), m, p)
			for _, id := range applied {
				fmt.Fprintf(cmd.OutOrStdout(), "  ✓ %s\n", id)
			}
			if err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "  ✗ %v\n", err)
				return fmt.Errorf("plan application failed after %d step(s)", len(applied))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Applied %d step(s)\n", len(applied))
			return nil
		},
	}
	return cmd
}
