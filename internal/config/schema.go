// Package config provides configuration loading and validation for symranges.
//
// Values are layered: DefaultConfig, then an optional YAML file, then SYMRANGES_*
// environment variables, then command-line flags (applied by the CLI).
package config

import "time"

// Config is the complete configuration of a build run.
type Config struct {
	Inputs   InputsConfig   `yaml:"inputs"`
	Image    ImageConfig    `yaml:"image"`
	Mapping  string         `yaml:"mapping" env:"SYMRANGES_MAPPING"`
	Demangle DemangleConfig `yaml:"demangle"`
	Output   OutputConfig   `yaml:"output"`
	Log      LogConfig      `yaml:"log"`
}

// InputsConfig locates the two dwarfdump outputs.
type InputsConfig struct {
	// DebugInfo is the output of `dwarfdump --debug-info`.
	DebugInfo string `yaml:"debug_info" env:"SYMRANGES_DEBUG_INFO"`
	// DebugRanges is the output of `dwarfdump --debug-ranges`.
	DebugRanges string `yaml:"debug_ranges" env:"SYMRANGES_DEBUG_RANGES"`
	// MaxSize bounds each dump in bytes.
	MaxSize int64 `yaml:"max_size" env:"SYMRANGES_MAX_INPUT_SIZE"`
}

// ImageConfig is copied verbatim into the result record.
type ImageConfig struct {
	Path string `yaml:"path" env:"SYMRANGES_IMAGE"`
	UUID string `yaml:"uuid" env:"SYMRANGES_UUID"`
	Arch string `yaml:"arch" env:"SYMRANGES_ARCH"`
}

// DemangleConfig selects the demanglers.
type DemangleConfig struct {
	Swift       bool          `yaml:"swift" env:"SYMRANGES_SWIFT_DEMANGLE"`
	SwiftBin    string        `yaml:"swift_bin" env:"SYMRANGES_SWIFT_DEMANGLE_BIN"`
	Itanium     bool          `yaml:"itanium" env:"SYMRANGES_ITANIUM_DEMANGLE"`
	ItaniumMode string        `yaml:"itanium_mode" env:"SYMRANGES_ITANIUM_MODE"`
	CacheSize   int           `yaml:"cache_size" env:"SYMRANGES_DEMANGLE_CACHE_SIZE"`
	Timeout     time.Duration `yaml:"timeout" env:"SYMRANGES_DEMANGLE_TIMEOUT"`
}

// OutputConfig controls where the record goes.
type OutputConfig struct {
	// Path is the output file; empty or "-" means stdout.
	Path string `yaml:"path" env:"SYMRANGES_OUTPUT"`
	// Format is one of json, table or csv.
	Format string `yaml:"format" env:"SYMRANGES_FORMAT"`
	// DuckDB is an optional database path receiving a copy of the record.
	DuckDB string `yaml:"duckdb" env:"SYMRANGES_DUCKDB"`
}

// LogConfig controls diagnostics on stderr.
type LogConfig struct {
	Level string `yaml:"level" env:"SYMRANGES_LOG_LEVEL"`
	// Format is auto, console or json. Auto picks console on a terminal.
	Format string `yaml:"format" env:"SYMRANGES_LOG_FORMAT"`
}
