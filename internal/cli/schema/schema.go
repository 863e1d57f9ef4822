// Package schema implements the 'symranges schema' command.
package schema

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"

	"github.com/coral-mesh/symranges/internal/config"
	"github.com/coral-mesh/symranges/internal/resolver"
)

// Schema targets.
const (
	TargetRecord = "record"
	TargetConfig = "config"
)

// NewSchemaCmd creates the schema command.
func NewSchemaCmd() *cobra.Command {
	var target string

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema of the output record or the config file",
		Long: `Print a JSON schema describing either the record written by 'symranges build'
(--target record, the default) or the YAML config file (--target config).

Example:
  symranges schema > symranges-record.schema.json
  symranges schema --target config`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return Write(cmd.OutOrStdout(), target)
		},
	}

	cmd.Flags().StringVar(&target, "target", TargetRecord, "Schema to print (record, config)")
	_ = cmd.RegisterFlagCompletionFunc("target", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{TargetRecord, TargetConfig}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

// Write prints the indented schema for target to w.
func Write(w io.Writer, target string) error {
	var s *jsonschema.Schema
	switch target {
	case TargetRecord:
		reflector := jsonschema.Reflector{
			DoNotReference: true,
		}
		s = reflector.Reflect(&resolver.ResultRecord{})
	case TargetConfig:
		reflector := jsonschema.Reflector{
			DoNotReference:             true,
			FieldNameTag:               "yaml",
			RequiredFromJSONSchemaTags: true,
		}
		s = reflector.Reflect(&config.Config{})
	default:
		return fmt.Errorf("unknown schema target %q, must be one of: %s, %s", target, TargetRecord, TargetConfig)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal schema: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
