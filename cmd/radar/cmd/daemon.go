package cmd

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/Farouk858/product-radar/scheduler"
	"github.com/spf13/cobra"
)

func init() {
	daemonCmd.Flags().String("schedule", "", "cron expression (overrides RADAR_SCHEDULE)")
	daemonCmd.Flags().Bool("now", false, "also run once at startup")
	rootCmd.AddCommand(daemonCmd)
}

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the digest on a cron schedule until interrupted.",
	RunE: func(cmd *cobra.Command, args []string) error {
		spec := cfg.Schedule.Cron
		if s, _ := cmd.Flags().GetString("schedule"); s != "" {
			spec = s
		}
		runNow := cfg.Schedule.RunOnStart
		if now, _ := cmd.Flags().GetBool("now"); now {
			runNow = true
		}

		ctx, stop := signal.NotifyContext(runContext(cmd), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		rt, err := newRuntime(cfg)
		if err != nil {
			return err
		}
		defer rt.Close()

		sched, err := scheduler.New(ctx, spec, time.UTC, func(ctx context.Context) error {
			_, err := rt.radar.Run(ctx)
			return err
		})
		if err != nil {
			return err
		}
		sched.Start(runNow)
		slog.Info("daemon running", "schedule", spec)

		<-ctx.Done()
		slog.Info("shutdown signal received")

		stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		sched.Stop(stopCtx)
		slog.Info("daemon stopped")
		return nil
	},
}
