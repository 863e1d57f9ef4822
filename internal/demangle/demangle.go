// Package demangle turns mangled symbol names into readable ones.
//
// Every Demangler is total: a name it cannot or should not handle comes back
// unchanged, and failures of external tools are absorbed. Implementations:
//
//   - Swift runs an external swift-demangle tool (usually through xcrun);
//   - Itanium demangles C++ and Rust names in-process;
//   - Cached memoizes another Demangler in a bounded LRU;
//   - Chain tries several demanglers in order.
package demangle

import (
	"github.com/coral-mesh/symranges/internal/namemap"
)

// Demangler rewrites a mangled name into a readable one.
type Demangler interface {
	Demangle(name string) string
}

// Func adapts a plain function to a Demangler.
type Func func(name string) string

// Demangle calls f(name).
func (f Func) Demangle(name string) string {
	return f(name)
}

// Passthrough returns every name unchanged.
var Passthrough Demangler = Func(func(name string) string { return name })

// Chain tries each Demangler in order and returns the first result that differs
// from the input.
type Chain []Demangler

// Demangle implements Demangler.
func (c Chain) Demangle(name string) string {
	for _, d := range c {
		if out := d.Demangle(name); out != name {
			return out
		}
	}
	return name
}

// Finisher returns the final naming step applied to every resolved name: the rename
// map first, then the demangler. Empty names stay empty.
func Finisher(names namemap.Map, d Demangler) func(string) string {
	if d == nil {
		d = Passthrough
	}
	return func(name string) string {
		if name == "" {
			return name
		}
		return d.Demangle(names.Apply(name))
	}
}
