// Package config implements the 'symranges config' command family.
package config

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/coral-mesh/symranges/internal/config"
)

// NewConfigCmd creates the config command and its subcommands.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect symranges configuration",
		Long: `Inspect the configuration used by 'symranges build'.

Configuration Priority:
  1. Command-line flags (highest)
  2. SYMRANGES_* environment variables
  3. Config file (--config)
  4. Defaults

Environment Variables:
  SYMRANGES_DEBUG_INFO, SYMRANGES_DEBUG_RANGES, SYMRANGES_IMAGE, SYMRANGES_UUID,
  SYMRANGES_ARCH, SYMRANGES_MAPPING, SYMRANGES_SWIFT_DEMANGLE, SYMRANGES_OUTPUT,
  SYMRANGES_FORMAT, SYMRANGES_DUCKDB, SYMRANGES_LOG_LEVEL and friends`,
	}

	cmd.AddCommand(newViewCmd())
	cmd.AddCommand(newValidateCmd())

	return cmd
}

// newViewCmd creates the 'config view' command.
func newViewCmd() *cobra.Command {
	var (
		path string
		raw  bool
	)

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Show merged configuration",
		Long: `Display the configuration after defaults, the config file and the environment
are merged. Command-line flags of 'symranges build' are not included.

Use --raw to output the merged config without annotations.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runView(cmd.OutOrStdout(), path, raw)
		},
	}

	cmd.Flags().StringVar(&path, "config", "", "Config file (YAML)")
	cmd.Flags().BoolVar(&raw, "raw", false, "Output raw YAML without annotations")

	return cmd
}

func runView(w io.Writer, path string, raw bool) error {
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if !raw {
		source := "none"
		if path != "" {
			source = path
		}
		_, _ = fmt.Fprintf(w, "# Config file: %s\n", source)
		_, _ = fmt.Fprintln(w, "# Sources (priority order): flags, SYMRANGES_* environment, config file, defaults")
		_, _ = fmt.Fprintln(w)
	}

	_, err = w.Write(data)
	return err
}

// newValidateCmd creates the 'config validate' command.
func newValidateCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the merged configuration",
		Long: `Validate the configuration after defaults, the config file and the environment
are merged, and report every problem found.

Checks:
- Required fields (inputs, image path, uuid and arch)
- Output, log and itanium formats
- Demangle settings`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd.OutOrStdout(), path)
		},
	}

	cmd.Flags().StringVar(&path, "config", "", "Config file (YAML)")

	return cmd
}

func runValidate(w io.Writer, path string) error {
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	err = cfg.Validate()
	if err == nil {
		_, _ = fmt.Fprintln(w, "Configuration is valid")
		return nil
	}

	var multi *config.MultiValidationError
	if !errors.As(err, &multi) {
		return err
	}

	for _, e := range multi.Errors {
		_, _ = fmt.Fprintf(w, "  %s: %s\n", e.Field, e.Message)
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "Validation summary: %d problems\n", len(multi.Errors))

	return fmt.Errorf("validation failed with %d problems", len(multi.Errors))
}
