package schema

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrite_Record(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, TargetRecord))

	var s map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &s))

	props, ok := s["properties"].(map[string]any)
	require.True(t, ok)
	for _, key := range []string{"image", "uuid", "arch", "functions"} {
		assert.Contains(t, props, key)
	}

	functions := props["functions"].(map[string]any)
	assert.Equal(t, "array", functions["type"])
	items := functions["items"].(map[string]any)
	assert.Contains(t, items["properties"], "start")
	assert.Contains(t, items["properties"], "name")
}

func TestWrite_Config(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, TargetConfig))

	var s map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &s))

	props := s["properties"].(map[string]any)
	for _, key := range []string{"inputs", "image", "mapping", "demangle", "output", "log"} {
		assert.Contains(t, props, key)
	}
}

func TestWrite_UnknownTarget(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, "nope")
	require.Error(t, err)
	assert.Empty(t, buf.String())
}

func TestNewSchemaCmd(t *testing.T) {
	cmd := NewSchemaCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--target", "record"})

	require.NoError(t, cmd.Execute())
	assert.True(t, json.Valid(out.Bytes()))
}
