// Package cmd implements the radar command line.
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/Farouk858/product-radar/config"
	"github.com/spf13/cobra"
)

// cfg is loaded before any subcommand runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "radar",
	Short: "radar watches retail brand sites for bestsellers, restocks and new arrivals.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
		if brandsFile, _ := cmd.Flags().GetString("brands"); brandsFile != "" {
			cfg.Paths.Brands = brandsFile
		}
		if stateFile, _ := cmd.Flags().GetString("state"); stateFile != "" {
			cfg.Paths.State = stateFile
		}
		// stdout belongs to the MCP protocol in mcp mode.
		out := io.Writer(os.Stdout)
		if cmd.Name() == mcpCmd.Name() {
			out = os.Stderr
		}
		initLogger(cfg.Log, out)
	},
}

func init() {
	rootCmd.PersistentFlags().String("brands", "", "brand list file (overrides RADAR_BRANDS_FILE)")
	rootCmd.PersistentFlags().String("state", "", "snapshot file (overrides RADAR_STATE_FILE)")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// initLogger configures slog based on the LogConfig.
func initLogger(lc config.LogConfig, out io.Writer) {
	var level slog.Level
	switch strings.ToLower(lc.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if lc.Format == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	slog.SetDefault(slog.New(handler))
}
