// Package dwarfdump scrapes the textual output of dwarfdump into range tables and
// debug entries.
//
// It is not a DWARF decoder. Two dumps are understood:
//
//   - the ranges section (`dwarfdump --debug-ranges`), parsed by ParseRanges into a
//     RangeTable keyed by table offset;
//   - the debug-info section (`dwarfdump --debug-info`), parsed by ParseEntries into
//     an EntrySet of flat DebugEntry values indexed by DIE offset.
//
// Both parsers are forgiving: lines they do not recognize are skipped and the only
// error they return comes from the underlying reader.
//
// # Usage
//
//	ranges, err := dwarfdump.ParseRanges(rangesDump)
//	if err != nil {
//		return err
//	}
//
//	entries, err := dwarfdump.ParseEntries(infoDump)
//	if err != nil {
//		return err
//	}
//
//	for _, e := range entries.Entries() {
//		if e.IsSubprogramLike() {
//			fmt.Printf("%s %q\n", e.Tag, e.Name)
//		}
//	}
package dwarfdump
