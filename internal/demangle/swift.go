package demangle

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"github.com/grafana/regexp"
	"github.com/rs/zerolog"
)

// swiftMangled matches the prefixes of Swift mangled names across mangling
// generations.
var swiftMangled = regexp.MustCompile(`^(_?\$s|_T|\$S)`)

const (
	// DefaultSwiftBin is the default prefix used to reach the demangler.
	DefaultSwiftBin = "xcrun"
	// SwiftSubtool is the tool invoked through the prefix.
	SwiftSubtool = "swift-demangle"
	// DefaultTimeout bounds a single tool invocation.
	DefaultTimeout = 10 * time.Second
)

// IsSwiftMangled reports whether name looks like a Swift mangled symbol.
func IsSwiftMangled(name string) bool {
	return swiftMangled.MatchString(name)
}

// Runner executes external commands.
type Runner interface {
	LookPath(file string) (string, error)
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// LookPath implements Runner.
func (ExecRunner) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

// Output implements Runner. It returns the command's standard output.
func (ExecRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	// #nosec G204 -- the binary is operator configured and the arguments are fixed.
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	err := cmd.Run()
	return stdout.Bytes(), err
}

// SwiftConfig configures the external Swift demangler.
type SwiftConfig struct {
	// Bin is the invocation prefix, "xcrun" by default.
	Bin string
	// Timeout bounds each invocation. Zero means DefaultTimeout.
	Timeout time.Duration
	// Runner executes the tool. Nil means ExecRunner.
	Runner Runner
	// Logger receives per-call diagnostics.
	Logger zerolog.Logger
}

// Swift demangles Swift names through `<bin> swift-demangle --compact <name>`.
type Swift struct {
	cfg       SwiftConfig
	available bool
}

// NewSwift probes the tool and returns a Swift demangler. When the probe fails the
// demangler passes every name through; check Available.
func NewSwift(ctx context.Context, cfg SwiftConfig) *Swift {
	if cfg.Bin == "" {
		cfg.Bin = DefaultSwiftBin
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Runner == nil {
		cfg.Runner = ExecRunner{}
	}

	s := &Swift{cfg: cfg}
	s.available = s.probe(ctx)
	return s
}

// probe checks that the prefix is on PATH and that invoking the subtool starts.
// A non-zero exit from `-help` still counts as available.
func (s *Swift) probe(ctx context.Context) bool {
	if _, err := s.cfg.Runner.LookPath(s.cfg.Bin); err != nil {
		s.cfg.Logger.Debug().Err(err).Str("bin", s.cfg.Bin).Msg("Demangler prefix not found")
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	_, err := s.cfg.Runner.Output(ctx, s.cfg.Bin, SwiftSubtool, "-help")
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		s.cfg.Logger.Debug().Err(err).Str("bin", s.cfg.Bin).Msg("Demangler probe failed")
		return false
	}
	return true
}

// Available reports whether the probe succeeded.
func (s *Swift) Available() bool {
	return s.available
}

// Demangle implements Demangler.
func (s *Swift) Demangle(name string) string {
	if !s.available || !IsSwiftMangled(name) {
		return name
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Timeout)
	defer cancel()

	out, err := s.cfg.Runner.Output(ctx, s.cfg.Bin, SwiftSubtool, "--compact", name)
	if err != nil {
		s.cfg.Logger.Debug().Err(err).Str("name", name).Msg("swift-demangle failed, keeping mangled name")
		return name
	}

	if res := strings.TrimSpace(string(out)); res != "" {
		return res
	}
	return name
}
