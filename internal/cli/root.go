// Package cli wires the bluemoxon commands: serve, migrate, create-user and
// retier-publishers.
//
// retier-publishers replaces what was once an HTTP endpoint: publisher tier
// recalculation is an administrative action and only runs here, on the box,
// by an operator.
package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/bluemoxon/bluemoxon/internal/config"
	obslog "github.com/bluemoxon/bluemoxon/internal/log"
)

type rootFlags struct {
	configPath string
	verbose    bool
}

// NewRootCmd builds the bluemoxon command tree.
func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:           "bluemoxon",
		Short:         "bluemoxon is the book collection server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "bluemoxon.toml", "path to the configuration file")
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(newServeCmd(flags))
	rootCmd.AddCommand(newMigrateCmd(flags))
	rootCmd.AddCommand(newCreateUserCmd(flags))
	rootCmd.AddCommand(newRetierPublishersCmd(flags))

	return rootCmd
}

// loadConfig loads the configuration for a command run.
func (f *rootFlags) loadConfig() (config.Config, error) {
	return config.Load(f.configPath)
}

// newLogger builds the process logger honoring the verbose flag.
func (f *rootFlags) newLogger() *obslog.SlogLogger {
	level := slog.LevelInfo
	if f.verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})

	return obslog.NewSlogLogger(handler)
}
