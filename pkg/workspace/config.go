package workspace

import (
	"errors"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the optional per-workspace configuration file, read
// from the workspace root.
const ConfigFileName = ".runbook.yaml"

// Config is the per-workspace configuration. Notebooks lists files or
// directories whose notebook files should appear under the workspace.
type Config struct {
	Notebooks []string `yaml:"notebooks"`
}

// LoadConfig reads the workspace configuration from wsPath. A missing file
// yields an empty config and no error; a malformed file is an error the
// caller may choose to swallow. Unknown keys are rejected so typos do not
// silently disappear.
func LoadConfig(wsPath string) (*Config, error) {
	f, err := os.Open(filepath.Join(wsPath, ConfigFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return &Config{}, nil
		}
		return nil, err
	}
	return &cfg, nil
}
