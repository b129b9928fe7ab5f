// Package cli implements the vitaquote command line tool: offline quoting
// against a local workbook plus catalog and account administration.
package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/VitaQuote/internal/config"
	"github.com/turtacn/VitaQuote/internal/infrastructure/monitoring/logging"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// RootOptions holds global CLI flags.
type RootOptions struct {
	ConfigPath   string
	LogLevel     string
	OutputFormat string
}

// NewRootCommand creates the root command with global flags and subcommands.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "vitaquote",
		Short:   "VitaQuote CLI for health insurance plan quoting",
		Long:    "VitaQuote computes health insurance plan quotations from price catalogs.\nThe quote command works offline against a local workbook; catalog and\nuser administration need database access via --config.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),

		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "configs/config.yaml", "config file path")
	pf.StringVar(&opts.LogLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	pf.StringVarP(&opts.OutputFormat, "output", "o", "table", "output format (table, json)")

	cmd.AddCommand(
		newQuoteCmd(opts),
		newImportCmd(opts),
		newUserCmd(opts),
	)
	return cmd
}

// Execute runs the CLI.
func Execute() error {
	root := NewRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(root.ErrOrStderr(), "Error: %s\n", err.Error())
		return err
	}
	return nil
}

func newLogger(opts *RootOptions) (logging.Logger, error) {
	return logging.NewLogger(logging.LogConfig{
		Level:            strings.ToLower(opts.LogLevel),
		Format:           "console",
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	})
}

func loadConfig(opts *RootOptions) (*config.Config, error) {
	return config.Load(opts.ConfigPath)
}

func printJSON(cmd *cobra.Command, data interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
