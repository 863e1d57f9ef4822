// Package namemap loads the optional rename map applied to resolved symbol names.
package namemap

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/coral-mesh/symranges/internal/safe"
)

// MaxFileSize bounds the rename map file.
const MaxFileSize = 64 << 20

// Map rewrites original names into replacement names. A nil Map is empty.
type Map map[string]string

// Apply returns the replacement for name, or name itself.
func (m Map) Apply(name string) string {
	if r, ok := m[name]; ok {
		return r
	}
	return name
}

// Parse decodes a flat JSON object or YAML mapping of string to string.
func Parse(data []byte) (Map, error) {
	m := Map{}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode rename map: %w", err)
	}
	return m, nil
}

// Load reads the rename map at path. An empty path yields an empty map.
// Read and decode failures are logged and also yield an empty map.
func Load(path string, logger zerolog.Logger) Map {
	if path == "" {
		return Map{}
	}

	data, err := safe.ReadFile(path, &safe.ReadOptions{MaxSize: MaxFileSize, AllowSymlinks: true})
	if err != nil {
		evt := logger.Warn().Err(err).Str("path", path)
		if errors.Is(err, os.ErrNotExist) {
			evt = evt.Bool("missing", true)
		}
		evt.Msg("Failed to read rename map, continuing without it")
		return Map{}
	}

	m, err := Parse(data)
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("Failed to decode rename map, continuing without it")
		return Map{}
	}

	logger.Debug().Int("entries", len(m)).Str("path", path).Msg("Rename map loaded")
	return m
}
