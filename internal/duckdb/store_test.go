package duckdb

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coral-mesh/symranges/internal/resolver"
	"github.com/coral-mesh/symranges/internal/testutil"
)

func sampleRecord() *resolver.ResultRecord {
	return &resolver.ResultRecord{
		Image: "Demo",
		UUID:  "5F2C7A61-0E7B-3C44-9C3A-0E4B8F8B7D21",
		Arch:  "arm64",
		Functions: []resolver.FunctionRange{
			{Start: 0x100, End: 0x200, Name: "foo"},
			{Start: 0x100, End: 0x200, Name: "foo"},
			{Start: 0x7fff00001000, End: 0x7fff00001040, Name: "Demo::baz<int>()"},
		},
	}
}

func TestStore_SaveRecord(t *testing.T) {
	ctx, cancel := testutil.NewTestContext()
	defer cancel()

	db, err := OpenDB(":memory:")
	require.NoError(t, err)
	defer db.Close()

	store, err := NewStore(ctx, db, testutil.NewTestLogger(t))
	require.NoError(t, err)

	rec := sampleRecord()
	runID, err := store.SaveRecord(ctx, rec)
	require.NoError(t, err)
	assert.NotEmpty(t, runID)

	var image, arch string
	var count int
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT image, arch, function_count FROM images WHERE run_id = ?`, runID).Scan(&image, &arch, &count))
	assert.Equal(t, "Demo", image)
	assert.Equal(t, "arm64", arch)
	assert.Equal(t, 3, count)

	funcs, err := store.LoadFunctions(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, rec.Functions, funcs)
}

func TestStore_MultipleRuns(t *testing.T) {
	ctx, cancel := testutil.NewTestContext()
	defer cancel()

	path := filepath.Join(t.TempDir(), "ranges.duckdb")

	db, err := OpenDB(path)
	require.NoError(t, err)
	store, err := NewStore(ctx, db, testutil.NewTestLogger(t))
	require.NoError(t, err)

	first, err := store.SaveRecord(ctx, sampleRecord())
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// Reopening keeps earlier runs and reuses the schema.
	db, err = OpenDB(path)
	require.NoError(t, err)
	defer db.Close()
	store, err = NewStore(ctx, db, testutil.NewTestLogger(t))
	require.NoError(t, err)

	empty := &resolver.ResultRecord{Image: "Empty", UUID: "0", Arch: "x86_64", Functions: []resolver.FunctionRange{}}
	second, err := store.SaveRecord(ctx, empty)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	var runs int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT count(*) FROM images`).Scan(&runs))
	assert.Equal(t, 2, runs)

	funcs, err := store.LoadFunctions(ctx, second)
	require.NoError(t, err)
	assert.Empty(t, funcs)
}
