package dwarfdump

import "sort"

const (
	// TagSubprogram marks a function definition.
	TagSubprogram = "DW_TAG_subprogram"
	// TagInlinedSubroutine marks an inlined call site.
	TagInlinedSubroutine = "DW_TAG_inlined_subroutine"
)

// RangePair is one (start, end) interval from the ranges section.
// End is not guaranteed to be greater than Start.
type RangePair struct {
	Start uint64
	End   uint64
}

// Valid reports whether the pair describes a non-empty interval.
func (p RangePair) Valid() bool {
	return p.End > p.Start
}

// RangeTable maps a ranges-section offset to its intervals in encounter order.
type RangeTable map[uint64][]RangePair

// Lookup returns the intervals stored under off.
func (t RangeTable) Lookup(off uint64) ([]RangePair, bool) {
	pairs, ok := t[off]
	return pairs, ok
}

// PairCount returns the number of intervals across all offsets.
func (t RangeTable) PairCount() int {
	n := 0
	for _, pairs := range t {
		n += len(pairs)
	}
	return n
}

// Offsets returns the table offsets in ascending order.
func (t RangeTable) Offsets() []uint64 {
	offs := make([]uint64, 0, len(t))
	for off := range t {
		offs = append(offs, off)
	}
	sort.Slice(offs, func(i, j int) bool { return offs[i] < offs[j] })
	return offs
}

// DebugEntry is one DIE scraped from the debug-info dump.
// Optional attributes carry a Has* flag; Name is absent when empty.
type DebugEntry struct {
	Tag string

	Offset    uint64
	HasOffset bool

	Low     uint64
	HasLow  bool
	High    uint64
	HasHigh bool

	RangesOffset uint64
	HasRanges    bool

	Name string

	AbstractOrigin    uint64
	HasAbstractOrigin bool
	Specification     uint64
	HasSpecification  bool
}

// IsSubprogramLike reports whether the entry describes a function or an inlined call.
func (e *DebugEntry) IsSubprogramLike() bool {
	return e.Tag == TagSubprogram || e.Tag == TagInlinedSubroutine
}

// AddressRange returns the direct low/high extent if both bounds are known.
func (e *DebugEntry) AddressRange() (RangePair, bool) {
	if !e.HasLow || !e.HasHigh {
		return RangePair{}, false
	}
	return RangePair{Start: e.Low, End: e.High}, true
}

// EntrySet is the flat list of entries from one dump plus an offset index.
type EntrySet struct {
	entries  []DebugEntry
	byOffset map[uint64]int
}

// NewEntrySet indexes entries by offset. Entries without an offset are not
// indexed; on duplicate offsets the last entry wins.
func NewEntrySet(entries []DebugEntry) *EntrySet {
	s := &EntrySet{
		entries:  entries,
		byOffset: make(map[uint64]int, len(entries)),
	}
	for i := range entries {
		if entries[i].HasOffset {
			s.byOffset[entries[i].Offset] = i
		}
	}
	return s
}

// Entries returns the entries in dump order.
func (s *EntrySet) Entries() []DebugEntry {
	return s.entries
}

// Len returns the number of entries.
func (s *EntrySet) Len() int {
	return len(s.entries)
}

// Lookup returns the entry with the given DIE offset.
func (s *EntrySet) Lookup(off uint64) (*DebugEntry, bool) {
	i, ok := s.byOffset[off]
	if !ok {
		return nil, false
	}
	return &s.entries[i], true
}

// SubprogramCount returns how many entries are subprogram-like.
func (s *EntrySet) SubprogramCount() int {
	n := 0
	for i := range s.entries {
		if s.entries[i].IsSubprogramLike() {
			n++
		}
	}
	return n
}
