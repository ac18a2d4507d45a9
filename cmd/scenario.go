package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/rentmatch/qa/scenarios"
)

var scenarioCmd = &cobra.Command{
	Use:   "scenario FILE...",
	Short: "Play YAML booking scenarios against the in-memory store",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		out := cmd.OutOrStdout()
		failed := 0
		for _, path := range args {
			sc, err := scenarios.Load(path)
			if err != nil {
				return fmt.Errorf("load %s: %w", path, err)
			}
			res, err := scenarios.Run(ctx, sc)
			if err != nil {
				failed++
				fmt.Fprintf(out, "FAIL %s: %v\n", sc.Name, err)
				continue
			}
			diffs := sc.Verify(res)
			if len(diffs) == 0 {
				fmt.Fprintf(out, "ok   %s (%s)\n", sc.Name, res.Booking.Status)
				continue
			}
			failed++
			fmt.Fprintf(out, "FAIL %s\n", sc.Name)
			for _, d := range diffs {
				fmt.Fprintf(out, "     %s\n", d)
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d scenarios failed", failed, len(args))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scenarioCmd)
}
