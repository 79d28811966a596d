package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/Veraticus/spacesub/internal/cli"
	"github.com/Veraticus/spacesub/internal/common"
	"github.com/Veraticus/spacesub/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "dev"

func newRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "spacesub",
		Short: "🔁 Recurring subscription detection",
		Long: `spacesub imports your bank transactions, spots the payments that repeat
on a weekly, monthly, quarterly or yearly cadence, and lets you turn them
into tracked subscriptions.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return initConfig(cfgFile)
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/spacesub/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console", "log format (console, json)")
	rootCmd.PersistentFlags().String("user", "", "user whose data to operate on (default from user.id)")

	// Bind flags to viper
	_ = viper.BindPFlag(config.KeyLogLevel, rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag(config.KeyLogFormat, rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag(config.KeyUserID, rootCmd.PersistentFlags().Lookup("user"))

	// Add commands
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(transactionsCmd())
	rootCmd.AddCommand(suggestionsCmd())
	rootCmd.AddCommand(confirmCmd())
	rootCmd.AddCommand(dismissCmd())
	rootCmd.AddCommand(reviewCmd())
	rootCmd.AddCommand(subscriptionsCmd())
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

func printError(w io.Writer, err error) {
	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(w, cli.FormatWarning("Interrupted"))
		return
	}
	if msg, ok := common.UserMessage(err); ok {
		fmt.Fprintln(w, cli.FormatError(msg))
		slog.Debug("Command failed", "error", err)
		return
	}
	fmt.Fprintln(w, cli.FormatError(err.Error()))
}

func initConfig(cfgFile string) error {
	config.SetDefaults()

	// PLAID_* and GOOGLE_SHEETS_* secrets may live next to the config file.
	envDir := config.ConfigDir()
	if cfgFile != "" {
		envDir = filepath.Dir(cfgFile)
	}
	if err := config.LoadDotEnv(envDir); err != nil {
		return err
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	// Environment variables, e.g. SPACESUB_DATABASE_PATH
	viper.SetEnvPrefix("SPACESUB")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, we'll use defaults
	}

	if err := common.SetupLogger(viper.GetString(config.KeyLogLevel), viper.GetString(config.KeyLogFormat)); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}

	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "spacesub %s\n", version)
		},
	}
}
