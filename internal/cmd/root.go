// Package cmd implements the iconkeep CLI commands using Cobra.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jmgilman/iconkeep/internal/config"
	"github.com/jmgilman/iconkeep/internal/slogger"
	"github.com/jmgilman/iconkeep/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "iconkeep",
	Short: "Back up and restore custom macOS app icons",
	Long: `iconkeep keeps copies of the custom icons you set on macOS applications
and puts them back after an app update replaces them.

Apps are given by name (looked up in the application folders) or by path.
Without an app argument, backup and restore work through every app listed
in the app list file, one name or path per line.`,
	Version:      version.String(),
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, err := cmd.Flags().GetCount("verbose")
		if err != nil {
			return fmt.Errorf("get verbose flag: %w", err)
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		logger := slogger.New(slogger.Config{Verbosity: verbosity, Output: cmd.ErrOrStderr()})
		ctx = slogger.WithLogger(ctx, logger)

		loader, err := config.NewLoader()
		if err != nil {
			return fmt.Errorf("init config loader: %w", err)
		}
		cfg, err := loader.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logger.Debug("loaded config", "file", loader.Path(), "backups", cfg.Storage.Backups, "app_list", cfg.Storage.AppList)

		ctx = WithConfig(ctx, cfg)
		ctx = WithLoader(ctx, loader)
		ctx = WithKeeper(ctx, newKeeper(cmd, cfg))
		cmd.SetContext(ctx)

		return nil
	},
}

// Execute runs the root command. Interrupts cancel the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return rootCmd.ExecuteContext(ctx)
}

// Main runs the CLI and returns the process exit code.
func Main() int {
	if err := Execute(); err != nil {
		return 1
	}
	return 0
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "increase log verbosity (-v info, -vv debug)")
	rootCmd.PersistentFlags().Bool("pick", false, "choose interactively when a name matches several apps")
}
