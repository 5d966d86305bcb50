package main

import (
	"log/slog"
	"os"

	"github.com/getwren/wren/internal/config"

	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	logLevel string

	cfg config.Config
	log *slog.Logger
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wren",
		Short: "wren — local research-assistant agent core",
		Long:  "wren drives a bounded loop between a chat language model and an external tool server to answer research queries with citations.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg = config.Load(cfgFile)
			log = newLogger(logLevel)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default wren.toml)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	cmd.AddCommand(newAskCmd())
	cmd.AddCommand(newHealthcheckCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
