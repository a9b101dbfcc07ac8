package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Scan every brand once, write the daily report and send the digest.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(runContext(cmd), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		rt, err := newRuntime(cfg)
		if err != nil {
			return err
		}
		defer rt.Close()

		summary, err := rt.radar.Run(ctx)
		if summary != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d new products)\n", summary.ReportPath, summary.NewCount())
		}
		return err
	},
}

// runContext is the context used by commands started without one.
func runContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
