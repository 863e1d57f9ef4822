// Package resolver turns scraped debug entries into named function ranges.
package resolver

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/coral-mesh/symranges/internal/dwarfdump"
	"github.com/coral-mesh/symranges/internal/namemap"
)

// Finisher is the last naming step applied to a resolved name, typically the rename
// map followed by demangling.
type Finisher func(name string) string

// Option configures a Resolver.
type Option func(*Resolver)

// WithNameMap sets the rename map applied to resolved names.
func WithNameMap(m namemap.Map) Option {
	return func(r *Resolver) { r.names = m }
}

// WithFinisher sets the naming step applied after resolution.
func WithFinisher(f Finisher) Option {
	return func(r *Resolver) { r.finish = f }
}

// WithLogger sets the logger used for emission diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Resolver) { r.logger = logger.With().Str("component", "resolver").Logger() }
}

// Resolver resolves names for debug entries and emits function ranges. It only
// reads the entry set and range table.
type Resolver struct {
	entries *dwarfdump.EntrySet
	ranges  dwarfdump.RangeTable
	names   namemap.Map
	finish  Finisher
	logger  zerolog.Logger
}

// New creates a Resolver over entries and ranges.
func New(entries *dwarfdump.EntrySet, ranges dwarfdump.RangeTable, opts ...Option) *Resolver {
	r := &Resolver{
		entries: entries,
		ranges:  ranges,
		logger:  zerolog.Nop(),
	}
	for _, o := range opts {
		o(r)
	}
	if r.finish == nil {
		names := r.names
		r.finish = func(name string) string { return names.Apply(name) }
	}
	return r
}

// ResolveName returns the name of e, following abstract-origin then specification
// references when e has no name of its own. The rename map is applied to whichever
// name is found. Cycles and dangling references resolve to no name.
func (r *Resolver) ResolveName(e *dwarfdump.DebugEntry) (string, bool) {
	return r.resolve(e, make(map[uint64]struct{}))
}

func (r *Resolver) resolve(e *dwarfdump.DebugEntry, seen map[uint64]struct{}) (string, bool) {
	if e.Name != "" {
		return r.names.Apply(e.Name), true
	}

	refs := [...]struct {
		off uint64
		ok  bool
	}{
		{e.AbstractOrigin, e.HasAbstractOrigin},
		{e.Specification, e.HasSpecification},
	}
	for _, ref := range refs {
		if !ref.ok {
			continue
		}
		if _, visited := seen[ref.off]; visited {
			continue
		}
		seen[ref.off] = struct{}{}

		target, ok := r.entries.Lookup(ref.off)
		if !ok {
			continue
		}
		if name, ok := r.resolve(target, seen); ok {
			return r.names.Apply(name), true
		}
	}
	return "", false
}

// Emit produces the function ranges of every subprogram-like entry, sorted by
// start then end. Direct low/high extents and ranges-table intervals are both
// emitted; identical ranges are kept.
func (r *Resolver) Emit() ([]FunctionRange, Stats) {
	stats := Stats{Entries: r.entries.Len()}
	funcs := make([]FunctionRange, 0)

	entries := r.entries.Entries()
	for i := range entries {
		e := &entries[i]
		if !e.IsSubprogramLike() {
			continue
		}
		stats.SubprogramLike++

		name, ok := r.ResolveName(e)
		if ok {
			name = r.finish(name)
		}

		missingBefore := stats.MissingName
		emit := func(p dwarfdump.RangePair, direct bool) {
			if name == "" {
				stats.MissingName++
				return
			}
			funcs = append(funcs, FunctionRange{Start: p.Start, End: p.End, Name: name})
			if direct {
				stats.DirectRanges++
			} else {
				stats.IndirectRanges++
			}
		}

		if p, ok := e.AddressRange(); ok && p.Valid() {
			emit(p, true)
		}

		if e.HasRanges {
			pairs, ok := r.ranges.Lookup(e.RangesOffset)
			if !ok {
				stats.UnknownRangeRef++
			}
			for _, p := range pairs {
				if p.Valid() {
					emit(p, false)
				}
			}
		}

		if stats.MissingName > missingBefore {
			r.logger.Trace().
				Str("tag", e.Tag).
				Uint64("offset", e.Offset).
				Msg("Emittable entry has no resolvable name")
		}
	}

	sort.SliceStable(funcs, func(i, j int) bool {
		if funcs[i].Start != funcs[j].Start {
			return funcs[i].Start < funcs[j].Start
		}
		return funcs[i].End < funcs[j].End
	})
	stats.Emitted = len(funcs)

	r.logger.Debug().
		Int("functions", stats.Emitted).
		Int("missing_name_on_emittable", stats.MissingName).
		Int("unknown_ranges_refs", stats.UnknownRangeRef).
		Msg("Emission complete")

	return funcs, stats
}

// Record emits the function ranges and wraps them with the image identity.
func (r *Resolver) Record(id Identity) (*ResultRecord, Stats) {
	funcs, stats := r.Emit()
	return &ResultRecord{
		Image:     id.Image,
		UUID:      id.UUID,
		Arch:      id.Arch,
		Functions: funcs,
	}, stats
}
