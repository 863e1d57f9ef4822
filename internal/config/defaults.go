package config

import (
	"github.com/coral-mesh/symranges/internal/demangle"
	"github.com/coral-mesh/symranges/internal/safe"
)

// Output and log formats.
const (
	FormatJSON  = "json"
	FormatTable = "table"
	FormatCSV   = "csv"

	LogFormatAuto    = "auto"
	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

// DefaultConfig returns the configuration used when nothing else is set.
// Swift demangling is on by default, matching how dSYM dumps are usually produced.
func DefaultConfig() *Config {
	return &Config{
		Inputs: InputsConfig{
			MaxSize: safe.DefaultMaxFileSize,
		},
		Demangle: DemangleConfig{
			Swift:     true,
			SwiftBin:  demangle.DefaultSwiftBin,
			CacheSize: demangle.DefaultCacheSize,
			Timeout:   demangle.DefaultTimeout,
		},
		Output: OutputConfig{
			Path:   "-",
			Format: FormatJSON,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: LogFormatAuto,
		},
	}
}
