package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KilimcininKorOglu/snapstore/internal/config"
)

// NewConfigCommand creates the config command and its subcommands.
func NewConfigCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}
	cmd.AddCommand(newConfigValidateCommand(rootOpts))
	cmd.AddCommand(newConfigShowCommand(rootOpts))
	return cmd
}

func newConfigValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate a configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if rootOpts.Config == "" {
				return NewExitError(ExitCommandError, "--config is required")
			}
			cfg, err := config.LoadConfig(rootOpts.Config)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid configuration", err)
			}

			errs := config.ValidateConfig(cfg)
			out := cmd.OutOrStdout()
			if len(errs) > 0 {
				fmt.Fprintln(out, "Configuration errors:")
				for _, e := range errs {
					fmt.Fprintf(out, "  - %s\n", e)
				}
				return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
			}
			fmt.Fprintln(out, "Configuration is valid")
			return nil
		},
	}
}

func newConfigShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.loadConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if rootOpts.Format == "json" {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(cfg)
			}
			data, err := config.Marshal(cfg)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to render configuration", err)
			}
			_, err = out.Write(data)
			return err
		},
	}
}
