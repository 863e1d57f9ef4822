// Package build implements the 'symranges build' command.
package build

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/coral-mesh/symranges/internal/cli/helpers"
	"github.com/coral-mesh/symranges/internal/config"
	"github.com/coral-mesh/symranges/internal/errors"
	"github.com/coral-mesh/symranges/internal/logging"
	"github.com/coral-mesh/symranges/internal/pipeline"
	"github.com/coral-mesh/symranges/internal/safe"
)

// flagValues holds the raw flag values. Only flags the user set override the
// loaded configuration.
type flagValues struct {
	configPath      string
	debugInfo       string
	debugRanges     string
	maxInputSize    int64
	image           string
	uuid            string
	arch            string
	mapping         string
	swiftDemangle   bool
	noSwiftDemangle bool
	swiftBin        string
	itanium         bool
	itaniumMode     string
	cacheSize       int
	output          string
	format          string
	duckdb          string
	logLevel        string
	logFormat       string
	verbose         bool
}

// NewBuildCmd creates the build command.
func NewBuildCmd() *cobra.Command {
	return newBuildCmd(pipeline.Options{})
}

func newBuildCmd(opts pipeline.Options) *cobra.Command {
	var fv flagValues

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the function range index from dwarfdump output",
		Long: `Build the function address-range index of one binary image.

Inputs are the text output of 'dwarfdump --debug-info' and 'dwarfdump --debug-ranges'
for the same dSYM. Every subprogram and inlined subroutine with an address range
becomes one entry per range, named after its own name or the name reachable through
its abstract origin or specification, then renamed by the optional mapping file and
demangled.

Configuration Priority:
  1. Command-line flags (highest)
  2. SYMRANGES_* environment variables
  3. Config file (--config)
  4. Defaults

Example:
  dwarfdump --debug-info Demo.dSYM > info.txt
  dwarfdump --debug-ranges Demo.dSYM > ranges.txt
  symranges build --di info.txt --dr ranges.txt \
    --image Demo --uuid 1B2C3D4E-0000-1111-2222-333344445555 --arch arm64 \
    --mapping rename.json -o demo.ranges.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, &fv)
			if err != nil {
				return err
			}
			return runBuild(cmd, cfg, fv.verbose, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&fv.configPath, "config", "", "Config file (YAML)")
	flags.StringVar(&fv.debugInfo, "di", "", "Output of 'dwarfdump --debug-info'")
	flags.StringVar(&fv.debugRanges, "dr", "", "Output of 'dwarfdump --debug-ranges'")
	flags.Int64Var(&fv.maxInputSize, "max-input-size", safe.DefaultMaxFileSize, "Maximum size of each dump in bytes")
	flags.StringVar(&fv.image, "image", "", "Image name recorded in the output")
	flags.StringVar(&fv.uuid, "uuid", "", "Image UUID recorded in the output")
	flags.StringVar(&fv.arch, "arch", "", "Architecture recorded in the output")
	flags.StringVar(&fv.mapping, "mapping", "", "JSON or YAML file mapping obfuscated names to real names")
	flags.BoolVar(&fv.swiftDemangle, "swift-demangle", true, "Demangle Swift names with the external tool")
	flags.BoolVar(&fv.noSwiftDemangle, "no-swift-demangle", false, "Disable Swift demangling")
	flags.StringVar(&fv.swiftBin, "swift-demangle-bin", "", "Command prefix used to run swift-demangle (default xcrun)")
	flags.BoolVar(&fv.itanium, "itanium-demangle", false, "Demangle C++ and Rust names in-process")
	flags.StringVar(&fv.itaniumMode, "itanium-mode", "", "Itanium output detail (none, simplified, templates, full)")
	flags.IntVar(&fv.cacheSize, "demangle-cache-size", 0, "Demangle cache entries (0 disables the cache)")
	flags.StringVarP(&fv.output, "output", "o", "-", "Output file ('-' for stdout)")
	helpers.AddFormatFlag(cmd, &fv.format, helpers.FormatJSON, helpers.SupportedFormats)
	flags.StringVar(&fv.duckdb, "duckdb", "", "Also store the record in this DuckDB database")
	flags.StringVar(&fv.logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	flags.StringVar(&fv.logFormat, "log-format", "", "Log format (auto, console, json)")
	helpers.AddVerboseFlag(cmd, &fv.verbose)

	cmd.MarkFlagsMutuallyExclusive("swift-demangle", "no-swift-demangle")

	return cmd
}

// resolveConfig loads the config file and environment, then applies the flags
// that were set explicitly.
func resolveConfig(cmd *cobra.Command, fv *flagValues) (*config.Config, error) {
	cfg, err := config.Load(fv.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	setString := func(name string, dst *string, v string) {
		if flags.Changed(name) {
			*dst = v
		}
	}

	setString("di", &cfg.Inputs.DebugInfo, fv.debugInfo)
	setString("dr", &cfg.Inputs.DebugRanges, fv.debugRanges)
	setString("image", &cfg.Image.Path, fv.image)
	setString("uuid", &cfg.Image.UUID, fv.uuid)
	setString("arch", &cfg.Image.Arch, fv.arch)
	setString("mapping", &cfg.Mapping, fv.mapping)
	setString("swift-demangle-bin", &cfg.Demangle.SwiftBin, fv.swiftBin)
	setString("itanium-mode", &cfg.Demangle.ItaniumMode, fv.itaniumMode)
	setString("output", &cfg.Output.Path, fv.output)
	setString("format", &cfg.Output.Format, fv.format)
	setString("duckdb", &cfg.Output.DuckDB, fv.duckdb)
	setString("log-level", &cfg.Log.Level, fv.logLevel)
	setString("log-format", &cfg.Log.Format, fv.logFormat)

	if flags.Changed("format") {
		if err := helpers.ValidateFormat(fv.format, helpers.SupportedFormats); err != nil {
			return nil, err
		}
	}
	if flags.Changed("max-input-size") {
		cfg.Inputs.MaxSize = fv.maxInputSize
	}
	if flags.Changed("swift-demangle") {
		cfg.Demangle.Swift = fv.swiftDemangle
	}
	if flags.Changed("no-swift-demangle") {
		cfg.Demangle.Swift = !fv.noSwiftDemangle
	}
	if flags.Changed("itanium-demangle") {
		cfg.Demangle.Itanium = fv.itanium
	}
	if flags.Changed("demangle-cache-size") {
		cfg.Demangle.CacheSize = fv.cacheSize
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func runBuild(cmd *cobra.Command, cfg *config.Config, verbose bool, opts pipeline.Options) error {
	logCfg := logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cmd.ErrOrStderr(),
	}
	if verbose {
		logging.SetVerbose(&logCfg)
	}
	logger := logging.NewWithComponent(logCfg, "build")

	ctx := cmd.Context()
	res, err := pipeline.Build(ctx, cfg, logger, opts)
	if err != nil {
		return err
	}

	formatter, err := helpers.NewFormatter(helpers.OutputFormat(cfg.Output.Format))
	if err != nil {
		return err
	}
	if err := writeRecord(cfg.Output.Path, cmd.OutOrStdout(), func(w io.Writer) error {
		return formatter.Format(res.Record, w)
	}); err != nil {
		return err
	}

	if cfg.Output.DuckDB != "" {
		runID, err := pipeline.ExportDuckDB(ctx, cfg.Output.DuckDB, res.Record, logger)
		if err != nil {
			return err
		}
		logger.Info().Str("run_id", runID).Str("dsn", cfg.Output.DuckDB).Msg("Record stored in DuckDB")
	}

	logStats(logger, res)
	return nil
}

// writeRecord opens the output, runs write and reports the first write or close
// failure.
func writeRecord(path string, stdout io.Writer, write func(io.Writer) error) (err error) {
	out, err := safe.CreateOutput(path, stdout)
	if err != nil {
		return err
	}
	defer errors.CloseInto(&err, out, "output")

	if err := write(out); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	return nil
}

func logStats(logger zerolog.Logger, res *pipeline.Result) {
	s := res.Stats
	logger.Info().
		Int("entries", s.Entries).
		Int("subprogram_like", s.SubprogramLike).
		Int("functions", s.Emitted).
		Int("direct_ranges", s.DirectRanges).
		Int("table_ranges", s.IndirectRanges).
		Int("unknown_range_refs", s.UnknownRangeRef).
		Int("missing_name", s.MissingName).
		Msg("Build complete")
}
