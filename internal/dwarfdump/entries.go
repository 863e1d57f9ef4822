package dwarfdump

import (
	"fmt"
	"io"
	"strconv"

	"github.com/grafana/regexp"
)

var (
	tagMarker   = regexp.MustCompile(`\b(DW_TAG_|TAG_)(\w+)`)
	entryOffset = regexp.MustCompile(`^\s*0x([0-9a-fA-F]+):`)

	attrLowPC       = regexp.MustCompile(`DW_AT_low_pc\s*\(\s*(?:addr:\s*)?0x([0-9a-fA-F]+)\s*\)`)
	attrHighPCAddr  = regexp.MustCompile(`DW_AT_high_pc\s*\(\s*(?:addr:\s*)?0x([0-9a-fA-F]+)\s*\)`)
	attrHighPCDelta = regexp.MustCompile(`DW_AT_high_pc\s*\(\s*udata:\s*([0-9]+)\s*\)`)
	attrRanges      = regexp.MustCompile(`DW_AT_ranges\s*\(\s*0x([0-9a-fA-F]+)\s*\)`)
	attrName        = regexp.MustCompile(`DW_AT_name\s*\("(.+?)"\)`)
	attrLinkageName = regexp.MustCompile(`DW_AT_linkage_name\s*\("(.+?)"\)`)
	attrAbstract    = regexp.MustCompile(`DW_AT_abstract_origin\s*\(\s*0x([0-9a-fA-F]+)\s*\)`)
	attrSpec        = regexp.MustCompile(`DW_AT_specification\s*\(\s*0x([0-9a-fA-F]+)\s*\)`)
)

// ParseEntries reads a debug-info dump and returns its entries.
// The only error returned is a read error from r.
func ParseEntries(r io.Reader) (*EntrySet, error) {
	var b entryBuilder
	sc := newLineScanner(r)
	for sc.Scan() {
		b.feed(sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read debug-info dump: %w", err)
	}
	return NewEntrySet(b.finish()), nil
}

// BuildEntries builds an EntrySet from already split lines.
func BuildEntries(lines []string) *EntrySet {
	var b entryBuilder
	for _, line := range lines {
		b.feed(line)
	}
	return NewEntrySet(b.finish())
}

// entryBuilder accumulates attributes into the currently open entry.
type entryBuilder struct {
	entries []DebugEntry
	cur     *DebugEntry
}

func (b *entryBuilder) feed(line string) {
	if m := tagMarker.FindStringSubmatch(line); m != nil {
		b.closeCurrent()
		b.cur = &DebugEntry{Tag: "DW_TAG_" + m[2]}
		if om := entryOffset.FindStringSubmatch(line); om != nil {
			if off, ok := parseHex(om[1]); ok {
				b.cur.Offset, b.cur.HasOffset = off, true
			}
		}
		return
	}
	if b.cur == nil {
		return
	}
	b.applyAttribute(line)
}

// applyAttribute applies the first attribute shape matching line.
func (b *entryBuilder) applyAttribute(line string) {
	e := b.cur

	if m := attrLowPC.FindStringSubmatch(line); m != nil {
		if v, ok := parseHex(m[1]); ok {
			e.Low, e.HasLow = v, true
		}
		return
	}
	if m := attrHighPCAddr.FindStringSubmatch(line); m != nil {
		if v, ok := parseHex(m[1]); ok && e.HasLow {
			e.High, e.HasHigh = v, true
		}
		return
	}
	if m := attrHighPCDelta.FindStringSubmatch(line); m != nil {
		if d, err := strconv.ParseUint(m[1], 10, 64); err == nil && e.HasLow {
			e.High, e.HasHigh = e.Low+d, true
		}
		return
	}
	if m := attrRanges.FindStringSubmatch(line); m != nil {
		if v, ok := parseHex(m[1]); ok {
			e.RangesOffset, e.HasRanges = v, true
		}
		return
	}
	if m := attrName.FindStringSubmatch(line); m != nil {
		e.Name = m[1]
		return
	}
	if m := attrLinkageName.FindStringSubmatch(line); m != nil {
		// The linkage name is only a fallback for a missing DW_AT_name.
		if e.Name == "" {
			e.Name = m[1]
		}
		return
	}
	if m := attrAbstract.FindStringSubmatch(line); m != nil {
		if v, ok := parseHex(m[1]); ok {
			e.AbstractOrigin, e.HasAbstractOrigin = v, true
		}
		return
	}
	if m := attrSpec.FindStringSubmatch(line); m != nil {
		if v, ok := parseHex(m[1]); ok {
			e.Specification, e.HasSpecification = v, true
		}
	}
}

func (b *entryBuilder) closeCurrent() {
	if b.cur != nil {
		b.entries = append(b.entries, *b.cur)
		b.cur = nil
	}
}

func (b *entryBuilder) finish() []DebugEntry {
	b.closeCurrent()
	return b.entries
}

func parseHex(s string) (uint64, bool) {
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
