// Package commands contains all CLI commands for declint.
//
// This package uses the Cobra library for CLI management.
// Each command is defined in its own file and registered in init().
package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/JNZader/declint/internal/config"
	"github.com/JNZader/declint/internal/logger"
)

var (
	// cfgFile holds the path to the config file (from --config flag)
	cfgFile string

	// verbose enables debug logging
	verbose bool

	// quiet suppresses all output except errors
	quiet bool

	// loadedConfig is the configuration read by initializeConfig
	loadedConfig *config.Config

	// configUsed is the config file loadedConfig came from, if any
	configUsed string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "declint",
	Short: "Objective-C declaration style checker",
	Long: `declint checks Objective-C interface declarations against a
documented style: declaration grouping order, property attribute order,
line length and split alignment, naming and spacing.

It reads .h headers and YAML/JSON declaration documents.

Examples:
  # Check every header under Sources
  declint check Sources

  # Check with the strict preset and SARIF output
  declint check --preset strict --format sarif -o declint.sarif

  # List the rules
  declint rules

  # Re-check on every change
  declint watch Sources`,

	SilenceUsage:  true,
	SilenceErrors: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeConfig()
	},
}

// Execute runs the root command. This is called by main.main(). An
// interrupt cancels the running command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is .declint.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors")
}

// initializeConfig loads the configuration and sets up logging from it.
func initializeConfig() error {
	loader := config.NewLoader()
	if cfgFile != "" {
		loader.SetConfigFile(cfgFile)
	}

	cfg, err := loader.Load()
	if err != nil {
		return usageError(err)
	}
	loadedConfig = cfg
	configUsed = loader.ConfigFileUsed()

	if err := configureLogger(cfg); err != nil {
		return usageError(err)
	}

	if configUsed != "" {
		logger.Debug("Using config file: %s", configUsed)
	}
	return nil
}

func configureLogger(cfg *config.Config) error {
	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	switch {
	case quiet:
		level = logger.LevelError
	case verbose:
		level = logger.LevelDebug
	}

	log := logger.Default()
	log.SetLevel(level)
	return log.SetFormat(logger.Format(cfg.Log.Format))
}

// currentConfig returns a copy of the loaded configuration that a command
// may override with its flags.
func currentConfig() *config.Config {
	if loadedConfig == nil {
		return config.DefaultConfig()
	}
	cfg := *loadedConfig
	return &cfg
}

// isVerbose returns true if verbose mode is enabled
func isVerbose() bool {
	return verbose && !quiet
}

// isQuiet returns true if quiet mode is enabled
func isQuiet() bool {
	return quiet
}
