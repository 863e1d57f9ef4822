package cli

import (
	"github.com/spf13/cobra"

	"github.com/coral-mesh/symranges/internal/cli/build"
	"github.com/coral-mesh/symranges/internal/cli/config"
	"github.com/coral-mesh/symranges/internal/cli/schema"
	"github.com/coral-mesh/symranges/pkg/version"
)

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "symranges",
		Short: "symranges - function address ranges from dwarfdump output",
		Long: `Build a per-image index of function address ranges from the text output of
'dwarfdump --debug-info' and 'dwarfdump --debug-ranges'.

The index maps every subprogram and inlined subroutine range of a binary to a
human-readable name. Obfuscated names are restored from an optional mapping file
and Swift, C++ and Rust names are demangled. Downstream tools use the index to
symbolize crash addresses.

Commands:
- build:   Produce the index (JSON, table or CSV; optionally into DuckDB)
- schema:  Print the JSON schema of the index or of the config file
- config:  Inspect and validate the merged configuration`,
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(build.NewBuildCmd())
	cmd.AddCommand(schema.NewSchemaCmd())
	cmd.AddCommand(config.NewConfigCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("symranges version %s\n", version.Version)
			cmd.Printf("Git commit: %s\n", version.GitCommit)
			cmd.Printf("Build date: %s\n", version.BuildDate)
			cmd.Printf("Go version: %s\n", version.GoVersion)
		},
	}
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
