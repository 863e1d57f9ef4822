package demangle

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Options selects and configures the demanglers assembled by New.
type Options struct {
	// Swift enables the external swift-demangle tool.
	Swift bool
	// SwiftBin is the invocation prefix for the tool.
	SwiftBin string
	// Itanium enables in-process C++/Rust demangling.
	Itanium bool
	// ItaniumMode is passed to ItaniumOptions.
	ItaniumMode string
	// CacheSize bounds the memoization cache. Zero or less disables it.
	CacheSize int
	// Timeout bounds each external invocation.
	Timeout time.Duration
	// Runner overrides command execution, for tests.
	Runner Runner
}

// New assembles the demangler described by opts. When Swift demangling is requested
// but the tool is unusable, a single warning is logged and Swift names pass through.
func New(ctx context.Context, opts Options, logger zerolog.Logger) Demangler {
	logger = logger.With().Str("component", "demangle").Logger()

	var chain Chain
	if opts.Swift {
		sw := NewSwift(ctx, SwiftConfig{
			Bin:     opts.SwiftBin,
			Timeout: opts.Timeout,
			Runner:  opts.Runner,
			Logger:  logger,
		})
		if sw.Available() {
			chain = append(chain, sw)
		} else {
			logger.Warn().
				Str("bin", sw.cfg.Bin).
				Msgf("'%s %s' is not available; Swift names stay mangled", sw.cfg.Bin, SwiftSubtool)
		}
	}
	if opts.Itanium {
		chain = append(chain, NewItanium(ItaniumOptions(opts.ItaniumMode)...))
	}

	switch len(chain) {
	case 0:
		return Passthrough
	case 1:
		return WithCache(chain[0], opts.CacheSize)
	default:
		return WithCache(chain, opts.CacheSize)
	}
}
