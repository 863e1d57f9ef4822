package resolver

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coral-mesh/symranges/internal/demangle"
	"github.com/coral-mesh/symranges/internal/dwarfdump"
	"github.com/coral-mesh/symranges/internal/namemap"
)

func entries(lines ...string) *dwarfdump.EntrySet {
	return dwarfdump.BuildEntries(lines)
}

func TestResolveName(t *testing.T) {
	set := entries(
		"0x10: DW_TAG_subprogram",
		`  DW_AT_name ("obf")`,
		"0x20: DW_TAG_inlined_subroutine",
		"  DW_AT_abstract_origin (0x10)",
		"0x30: DW_TAG_subprogram",
		"  DW_AT_specification (0x20)",
		"0x40: DW_TAG_subprogram",
		"  DW_AT_abstract_origin (0x99)",
		"  DW_AT_specification (0x10)",
		"0x50: DW_TAG_subprogram",
	)
	r := New(set, nil)

	tests := []struct {
		name   string
		offset uint64
		want   string
		found  bool
	}{
		{name: "direct", offset: 0x10, want: "obf", found: true},
		{name: "one hop", offset: 0x20, want: "obf", found: true},
		{name: "two hops", offset: 0x30, want: "obf", found: true},
		{name: "dangling origin falls back to specification", offset: 0x40, want: "obf", found: true},
		{name: "no references", offset: 0x50, found: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, ok := set.Lookup(tt.offset)
			require.True(t, ok)
			got, found := r.ResolveName(e)
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveName_Cycle(t *testing.T) {
	set := entries(
		"0x10: DW_TAG_subprogram",
		"  DW_AT_abstract_origin (0x20)",
		"0x20: DW_TAG_subprogram",
		"  DW_AT_specification (0x10)",
		"0x30: DW_TAG_subprogram",
		"  DW_AT_abstract_origin (0x30)",
	)
	r := New(set, nil)

	for _, off := range []uint64{0x10, 0x20, 0x30} {
		e, ok := set.Lookup(off)
		require.True(t, ok)
		name, found := r.ResolveName(e)
		assert.False(t, found)
		assert.Empty(t, name)
	}
}

func TestResolveName_NameMap(t *testing.T) {
	set := entries(
		"0x10: DW_TAG_subprogram",
		`  DW_AT_name ("obf")`,
		"0x20: DW_TAG_subprogram",
		"  DW_AT_abstract_origin (0x10)",
	)
	r := New(set, nil, WithNameMap(namemap.Map{"obf": "Original"}))

	for _, off := range []uint64{0x10, 0x20} {
		e, _ := set.Lookup(off)
		name, found := r.ResolveName(e)
		require.True(t, found)
		assert.Equal(t, "Original", name)
	}
}

func TestEmit_DirectAndIndirect(t *testing.T) {
	set := entries(
		"0x10: DW_TAG_subprogram",
		`  DW_AT_name ("work")`,
		"  DW_AT_low_pc (0x1000)",
		"  DW_AT_high_pc (udata: 32)",
		"  DW_AT_ranges (0x40)",
	)
	ranges := dwarfdump.BuildRanges([]string{
		"00000040 0x3000 0x3010",
		"00000040 0x2000 0x2008",
		"00000040 0x2100 0x2100",
	})

	funcs, stats := New(set, ranges).Emit()

	assert.Equal(t, []FunctionRange{
		{Start: 0x1000, End: 0x1020, Name: "work"},
		{Start: 0x2000, End: 0x2008, Name: "work"},
		{Start: 0x3000, End: 0x3010, Name: "work"},
	}, funcs)
	assert.Equal(t, 1, stats.DirectRanges)
	assert.Equal(t, 2, stats.IndirectRanges)
	assert.Equal(t, 3, stats.Emitted)
}

func TestEmit_Filtering(t *testing.T) {
	set := entries(
		"0x10: DW_TAG_compile_unit",
		`  DW_AT_name ("cu.c")`,
		"  DW_AT_low_pc (0x1000)",
		"  DW_AT_high_pc (0x9000)",
		"0x20: DW_TAG_subprogram",
		`  DW_AT_name ("empty")`,
		"  DW_AT_low_pc (0x1000)",
		"  DW_AT_high_pc (udata: 0)",
		"0x30: DW_TAG_subprogram",
		"  DW_AT_low_pc (0x2000)",
		"  DW_AT_high_pc (0x2040)",
		"  DW_AT_ranges (0x80)",
		"0x40: DW_TAG_lexical_block",
		"  DW_AT_low_pc (0x2000)",
		"  DW_AT_high_pc (0x2010)",
		"0x50: DW_TAG_subprogram",
		`  DW_AT_name ("unknown_ref")`,
		"  DW_AT_ranges (0x999)",
	)
	ranges := dwarfdump.BuildRanges([]string{
		"00000080 0x2100 0x2140",
		"00000080 0x2200 0x21f0",
	})

	funcs, stats := New(set, ranges).Emit()

	assert.Empty(t, funcs)
	assert.NotNil(t, funcs, "an empty result serializes as []")
	assert.Equal(t, 5, stats.Entries)
	assert.Equal(t, 3, stats.SubprogramLike)
	assert.Equal(t, 2, stats.MissingName, "one direct and one indirect range without a name")
	assert.Equal(t, 1, stats.UnknownRangeRef)
}

func TestEmit_Sorted(t *testing.T) {
	set := entries(
		"0x10: DW_TAG_subprogram",
		`  DW_AT_name ("c")`,
		"  DW_AT_low_pc (0x3000)",
		"  DW_AT_high_pc (0x3100)",
		"0x20: DW_TAG_subprogram",
		`  DW_AT_name ("b_long")`,
		"  DW_AT_low_pc (0x1000)",
		"  DW_AT_high_pc (0x1200)",
		"0x30: DW_TAG_inlined_subroutine",
		`  DW_AT_name ("b_short")`,
		"  DW_AT_low_pc (0x1000)",
		"  DW_AT_high_pc (0x1100)",
		"0x40: DW_TAG_subprogram",
		`  DW_AT_name ("dup")`,
		"  DW_AT_low_pc (0x500)",
		"  DW_AT_high_pc (0x600)",
		"  DW_AT_ranges (0x10)",
	)
	ranges := dwarfdump.BuildRanges([]string{"00000010 0x500 0x600"})

	funcs, _ := New(set, ranges).Emit()

	assert.Equal(t, []FunctionRange{
		{Start: 0x500, End: 0x600, Name: "dup"},
		{Start: 0x500, End: 0x600, Name: "dup"},
		{Start: 0x1000, End: 0x1100, Name: "b_short"},
		{Start: 0x1000, End: 0x1200, Name: "b_long"},
		{Start: 0x3000, End: 0x3100, Name: "c"},
	}, funcs)
}

func TestEmit_Finisher(t *testing.T) {
	set := entries(
		"0x10: DW_TAG_subprogram",
		`  DW_AT_name ("$s4Demo3baryyF")`,
		"  DW_AT_low_pc (0x1000)",
		"  DW_AT_high_pc (0x1010)",
		"0x20: DW_TAG_subprogram",
		`  DW_AT_linkage_name ("obf")`,
		"  DW_AT_low_pc (0x2000)",
		"  DW_AT_high_pc (0x2010)",
	)
	names := namemap.Map{"obf": "Original"}

	t.Run("demangling disabled keeps mangled names", func(t *testing.T) {
		r := New(set, nil, WithNameMap(names), WithFinisher(demangle.Finisher(names, demangle.Passthrough)))
		funcs, _ := r.Emit()
		require.Len(t, funcs, 2)
		assert.Equal(t, "$s4Demo3baryyF", funcs[0].Name)
		assert.Equal(t, "Original", funcs[1].Name)
	})

	t.Run("demangler sees mapped names", func(t *testing.T) {
		fake := demangle.Func(func(s string) string {
			if demangle.IsSwiftMangled(s) {
				return "Demo.bar()"
			}
			return strings.ToUpper(s)
		})
		r := New(set, nil, WithNameMap(names), WithFinisher(demangle.Finisher(names, fake)))
		funcs, _ := r.Emit()
		require.Len(t, funcs, 2)
		assert.Equal(t, "Demo.bar()", funcs[0].Name)
		assert.Equal(t, "ORIGINAL", funcs[1].Name)
	})

	t.Run("cached and uncached finishers agree", func(t *testing.T) {
		fake := demangle.Func(func(s string) string { return "<" + s + ">" })
		plain, _ := New(set, nil, WithFinisher(demangle.Finisher(names, fake))).Emit()
		cached, _ := New(set, nil, WithFinisher(demangle.Finisher(names, demangle.WithCache(fake, 1)))).Emit()
		assert.Equal(t, plain, cached)
	})
}

func TestRecord_EndToEnd(t *testing.T) {
	ranges := dwarfdump.BuildRanges([]string{
		"001000  0x0  0x0",
		"001000  0x100  0x200",
	})
	set := entries(
		"0x00000010: DW_TAG_subprogram",
		`  DW_AT_name ("foo")`,
		"  DW_AT_ranges (0x1000)",
	)

	rec, stats := New(set, ranges).Record(Identity{Image: "Demo", UUID: "A1B2", Arch: "arm64"})

	assert.Equal(t, &ResultRecord{
		Image:     "Demo",
		UUID:      "A1B2",
		Arch:      "arm64",
		Functions: []FunctionRange{{Start: 256, End: 512, Name: "foo"}},
	}, rec)
	assert.Equal(t, 1, stats.Emitted)
}
