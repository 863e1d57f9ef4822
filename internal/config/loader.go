package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/coral-mesh/symranges/internal/safe"
)

// maxConfigSize bounds the YAML config file.
const maxConfigSize = 1 << 20

// Load builds the configuration from defaults, the YAML file at path (optional) and
// the environment. Flags are applied afterwards by the caller, then Validate.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := safe.ReadFile(path, &safe.ReadOptions{MaxSize: maxConfigSize, AllowSymlinks: true})
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := LoadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	return cfg, nil
}
