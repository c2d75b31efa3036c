package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/KilimcininKorOglu/snapstore/internal/script"
)

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <script>",
		Short: "Run an edit script and print its trace",
		Long: `Run a YAML edit script against a fresh circuit store.

Each step is printed with its outcome. Steps that publish a version also
print the net row changes of that version.

Example:
  snapstore run ./scripts/adder.yaml
  snapstore run --format json ./scripts/adder.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := script.Load(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to load script", err)
			}
			return runScript(rootOpts, sc, cmd)
		},
	}
	return cmd
}

// NewDemoCommand creates the demo command.
func NewDemoCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the built-in half adder script",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := script.Demo()
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to load demo", err)
			}
			return runScript(rootOpts, sc, cmd)
		},
	}
	return cmd
}

func runScript(opts *RootOptions, sc *script.Script, cmd *cobra.Command) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	format := opts.Format
	if !cmd.Flags().Changed("format") && cfg.Trace.Format != "" {
		format = cfg.Trace.Format
	}

	logger, closeLog, err := opts.newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer closeLog()
	logger.Debug("running script", "script", sc.Name, "steps", len(sc.Steps))

	runner := script.NewRunner(logger, storeOptions(cfg)...)
	trace, runErr := runner.Run(sc)
	if trace != nil {
		if err := script.Write(cmd.OutOrStdout(), trace, format); err != nil {
			return WrapExitError(ExitCommandError, "failed to write trace", err)
		}
	}
	if runErr != nil {
		var stepErr *script.StepError
		if errors.As(runErr, &stepErr) {
			return WrapExitError(ExitFailure, "script failed", runErr)
		}
		return WrapExitError(ExitCommandError, "failed to open store", runErr)
	}
	return nil
}
