// Package cli implements the snapstore command line.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/KilimcininKorOglu/snapstore/internal/config"
	"github.com/KilimcininKorOglu/snapstore/internal/logging"
	"github.com/KilimcininKorOglu/snapstore/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Config  string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the snapstore CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "snapstore",
		Short: "snapstore - versioned tables with snapshots and undo",
		Long: `A versioned in-memory table store with snapshot isolation,
foreign key actions and undo/redo, driven here through a circuit model.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVarP(&opts.Config, "config", "c", "", "path to configuration file")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewDemoCommand(opts))
	cmd.AddCommand(NewConfigCommand(opts))
	cmd.AddCommand(NewVersionCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// loadConfig returns the configuration named by --config, or the defaults.
func (o *RootOptions) loadConfig() (*config.Config, error) {
	if o.Config == "" {
		return config.DefaultConfig(), nil
	}
	cfg, err := config.LoadConfig(o.Config)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load configuration", err)
	}
	if errs := config.ValidateConfig(cfg); len(errs) > 0 {
		return nil, WrapExitError(ExitFailure, "invalid configuration", errors.Join(errs...))
	}
	return cfg, nil
}

// newLogger builds the logger for cfg. --verbose forces debug output to
// errOut. The returned close function releases a log file, if one was
// opened, and must be called once the command is done.
func (o *RootOptions) newLogger(cfg *config.Config, errOut io.Writer) (logging.Logger, func() error, error) {
	lc := logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}
	noop := func() error { return nil }
	if o.Verbose {
		lc.Level = "debug"
		return logging.NewWithWriter(lc, errOut), noop, nil
	}
	switch lc.Output {
	case "", "stderr":
		return logging.NewWithWriter(lc, errOut), noop, nil
	case "stdout":
		return logging.New(lc), noop, nil
	}

	f, err := os.OpenFile(lc.Output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to open log file", err)
	}
	return logging.NewWithWriter(lc, f), f.Close, nil
}

// storeOptions turns the store section of cfg into store options.
func storeOptions(cfg *config.Config) []store.Option {
	return []store.Option{
		store.WithPageSize(cfg.Store.PageSize),
		store.WithBTreeOrder(cfg.Store.BTreeOrder),
	}
}
