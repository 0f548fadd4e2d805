package platform

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileConfig is the optional on-disk configuration the CLI reads before
// applying flags. Flags win over file values.
type FileConfig struct {
	StateDir   string `yaml:"state_dir"`
	APIBaseURL string `yaml:"api_base_url"`
	Watch      bool   `yaml:"watch"`
}

// LoadConfig reads a YAML config file. A missing file is not an error; it
// just yields the zero config.
func LoadConfig(path string) (FileConfig, error) {
	var cfg FileConfig

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}
