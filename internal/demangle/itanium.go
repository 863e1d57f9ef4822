package demangle

import (
	"strings"

	"github.com/ianlancetaylor/demangle"
)

// Option sets for Itanium demangling, selected by ItaniumOptions.
var (
	itaniumUnspecified []demangle.Option
	itaniumNone        = make([]demangle.Option, 0)
	itaniumSimplified  = []demangle.Option{demangle.NoParams, demangle.NoEnclosingParams, demangle.NoTemplateParams}
	itaniumTemplates   = []demangle.Option{demangle.NoParams, demangle.NoEnclosingParams}
	itaniumFull        = []demangle.Option{demangle.NoClones}
)

// ItaniumOptions converts a mode name (none, simplified, templates, full) into
// demangler options. Unknown modes use the library defaults.
func ItaniumOptions(mode string) []demangle.Option {
	switch mode {
	case "none":
		return itaniumNone
	case "simplified":
		return itaniumSimplified
	case "templates":
		return itaniumTemplates
	case "full":
		return itaniumFull
	default:
		return itaniumUnspecified
	}
}

// IsItaniumMangled reports whether name looks like a C++ (_Z, or __Z on Mach-O) or
// Rust v0 (_R) mangled symbol.
func IsItaniumMangled(name string) bool {
	return strings.HasPrefix(name, "_Z") ||
		strings.HasPrefix(name, "__Z") ||
		strings.HasPrefix(name, "_R")
}

// Itanium demangles C++ and Rust names in-process.
type Itanium struct {
	opts []demangle.Option
}

// NewItanium creates an Itanium demangler with the given library options.
func NewItanium(opts ...demangle.Option) *Itanium {
	return &Itanium{opts: opts}
}

// Demangle implements Demangler.
func (d *Itanium) Demangle(name string) string {
	if !IsItaniumMangled(name) {
		return name
	}

	// Mach-O symbols carry an extra leading underscore.
	sym := name
	if strings.HasPrefix(sym, "__Z") {
		sym = sym[1:]
	}

	out, err := demangle.ToString(sym, d.opts...)
	if err != nil || out == "" {
		return name
	}
	return out
}
