package dwarfdump

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/grafana/regexp"
)

// rangeLine matches "<offset> <start> <end>" where the offset has at least four hex
// digits and addresses may omit their 0x prefix.
var rangeLine = regexp.MustCompile(`^\s*([0-9a-fA-F]{4,})\s+([0-9A-Fa-fx]+)\s+([0-9A-Fa-fx]+)`)

// ParseRanges reads a ranges dump and builds its RangeTable.
// The only error returned is a read error from r.
func ParseRanges(r io.Reader) (RangeTable, error) {
	table := make(RangeTable)
	sc := newLineScanner(r)
	for sc.Scan() {
		table.addLine(sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read ranges dump: %w", err)
	}
	return table, nil
}

// BuildRanges builds a RangeTable from already split lines.
func BuildRanges(lines []string) RangeTable {
	table := make(RangeTable)
	for _, line := range lines {
		table.addLine(line)
	}
	return table
}

func (t RangeTable) addLine(line string) {
	m := rangeLine.FindStringSubmatch(line)
	if m == nil {
		return
	}
	off, err := strconv.ParseUint(m[1], 16, 64)
	if err != nil {
		return
	}
	start, ok := parseAddress(m[2])
	if !ok {
		return
	}
	end, ok := parseAddress(m[3])
	if !ok {
		return
	}
	// (0, 0) terminates a list.
	if start == 0 && end == 0 {
		return
	}
	t[off] = append(t[off], RangePair{Start: start, End: end})
}

// parseAddress parses a hex address with or without a 0x prefix.
func parseAddress(s string) (uint64, bool) {
	s = strings.ToLower(s)
	if !strings.HasPrefix(s, "0x") {
		s = "0x" + s
	}
	v, err := strconv.ParseUint(s[2:], 16, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// maxLineSize bounds a single dump line. Attribute lines holding long C++ linkage
// names can exceed bufio's default.
const maxLineSize = 16 << 20

func newLineScanner(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return sc
}
