package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is consulted when --config is not given.
const DefaultConfigFile = "sbec.yaml"

// ToolConfig holds tooling concerns that live outside the schema itself:
// where compiled output goes and which generator target it is meant for.
type ToolConfig struct {
	OutputDir string `yaml:"output_dir"` // directory for compiled IR files
	Target    string `yaml:"target"`     // generator target language tag
	Format    string `yaml:"format"`     // default output format (json|text)
}

// LoadToolConfig reads a yaml tool config. An empty path falls back to
// DefaultConfigFile; a missing default file yields the zero config, but
// a missing explicit file is an error.
func LoadToolConfig(path string) (ToolConfig, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return ToolConfig{}, nil
		}
		return ToolConfig{}, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg ToolConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return ToolConfig{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if cfg.Format != "" && !isValidFormat(cfg.Format) {
		return ToolConfig{}, fmt.Errorf("config %s: invalid format %q", path, cfg.Format)
	}
	return cfg, nil
}
