package build

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coral-mesh/symranges/internal/config"
	"github.com/coral-mesh/symranges/internal/pipeline"
	"github.com/coral-mesh/symranges/internal/testutil"
)

const (
	debugInfo = `0x00000010: DW_TAG_subprogram
  DW_AT_name ("foo")
  DW_AT_ranges (0x00001000)
`
	debugRanges = `001000  0x0  0x0
001000  0x100  0x200
`
)

// missingTool makes the Swift probe fail without touching PATH.
type missingTool struct{}

func (missingTool) LookPath(string) (string, error) { return "", exec.ErrNotFound }

func (missingTool) Output(context.Context, string, ...string) ([]byte, error) {
	return nil, exec.ErrNotFound
}

type result struct {
	stdout string
	stderr string
	err    error
}

func run(t *testing.T, args ...string) result {
	t.Helper()

	cmd := newBuildCmd(pipeline.Options{Runner: missingTool{}})
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	ctx, cancel := testutil.NewTestContext()
	defer cancel()

	err := cmd.ExecuteContext(ctx)
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func inputs(t *testing.T) []string {
	t.Helper()
	return []string{
		"--di", testutil.WriteFixture(t, "info.txt", debugInfo),
		"--dr", testutil.WriteFixture(t, "ranges.txt", debugRanges),
		"--image", "Demo",
		"--uuid", "A1B2",
		"--arch", "arm64",
		"--no-swift-demangle",
	}
}

func TestNewBuildCmd(t *testing.T) {
	cmd := NewBuildCmd()

	assert.Equal(t, "build", cmd.Use)
	assert.NotEmpty(t, cmd.Short)

	for _, name := range []string{"di", "dr", "image", "uuid", "arch", "mapping", "swift-demangle",
		"no-swift-demangle", "swift-demangle-bin", "itanium-demangle", "output", "format", "duckdb", "verbose"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "--%s flag not defined", name)
	}
	assert.Equal(t, "json", cmd.Flags().Lookup("format").DefValue)
	assert.Equal(t, "-", cmd.Flags().Lookup("output").DefValue)
}

func TestBuild_JSONToStdout(t *testing.T) {
	res := run(t, inputs(t)...)
	require.NoError(t, res.err)

	assert.Equal(t,
		`{"image":"Demo","uuid":"A1B2","arch":"arm64","functions":[{"start":256,"end":512,"name":"foo"}]}`+"\n",
		res.stdout)
}

func TestBuild_CSVToFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "nested", "demo.csv")

	res := run(t, append(inputs(t), "--format", "csv", "-o", out)...)
	require.NoError(t, res.err)
	assert.Empty(t, res.stdout)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "start,end,name\n256,512,foo\n", string(data))
}

func TestBuild_NameMap(t *testing.T) {
	mapping := testutil.WriteFixture(t, "map.yaml", "foo: realFoo\n")

	res := run(t, append(inputs(t), "--mapping", mapping)...)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, `"name":"realFoo"`)
}

func TestBuild_MissingRequired(t *testing.T) {
	res := run(t, "--image", "Demo")
	require.Error(t, res.err)

	assert.Contains(t, res.err.Error(), "inputs.debug_info")
	assert.Contains(t, res.err.Error(), "inputs.debug_ranges")
	assert.Contains(t, res.err.Error(), "image.uuid")
	assert.Empty(t, res.stdout)
}

func TestBuild_MissingInputFile(t *testing.T) {
	args := inputs(t)
	args[1] = filepath.Join(t.TempDir(), "missing.txt")

	res := run(t, args...)
	require.Error(t, res.err)
	assert.Empty(t, res.stdout)
}

func TestBuild_SwiftFlagsExclusive(t *testing.T) {
	res := run(t, append(inputs(t), "--swift-demangle")...)
	require.Error(t, res.err)
}

func TestBuild_UnsupportedFormat(t *testing.T) {
	res := run(t, append(inputs(t), "--format", "xml")...)
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), `unsupported format "xml"`)
}

func TestBuild_Verbose(t *testing.T) {
	res := run(t, append(inputs(t), "--verbose")...)
	require.NoError(t, res.err)

	assert.Contains(t, res.stderr, "Ranges table built")
	assert.Contains(t, res.stderr, "Debug entries built")
	assert.Contains(t, res.stderr, "Build complete")
}

func TestBuild_QuietByDefault(t *testing.T) {
	res := run(t, inputs(t)...)
	require.NoError(t, res.err)
	assert.Empty(t, res.stderr)
}

func TestBuild_DuckDB(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "ranges.duckdb")

	res := run(t, append(inputs(t), "--duckdb", dsn, "--log-level", "info")...)
	require.NoError(t, res.err)

	assert.Contains(t, res.stderr, "Record stored in DuckDB")
	_, err := os.Stat(dsn)
	assert.NoError(t, err)
}

func TestResolveConfig_FlagsOverrideFile(t *testing.T) {
	file := testutil.WriteFixture(t, "symranges.yaml", `
inputs:
  debug_info: from-file-info.txt
  debug_ranges: from-file-ranges.txt
image:
  path: FromFile
  uuid: FILE-UUID
  arch: x86_64
demangle:
  swift: false
  itanium: true
output:
  format: table
`)

	cmd := NewBuildCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--config", file, "--arch", "arm64", "--swift-demangle"}))

	var fv flagValues
	fv.configPath = file
	fv.arch = "arm64"
	fv.swiftDemangle = true

	cfg, err := resolveConfig(cmd, &fv)
	require.NoError(t, err)

	assert.Equal(t, "from-file-info.txt", cfg.Inputs.DebugInfo)
	assert.Equal(t, "FromFile", cfg.Image.Path)
	assert.Equal(t, "arm64", cfg.Image.Arch)
	assert.True(t, cfg.Demangle.Swift)
	assert.True(t, cfg.Demangle.Itanium)
	assert.Equal(t, config.FormatTable, cfg.Output.Format)
}
