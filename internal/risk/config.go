package risk

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadConfig reads a risk-pattern config file. Pattern order in the
// file is match order, so the file is parsed with yaml.v3 directly
// rather than through viper, which does not preserve list order
// guarantees for merged keys.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read risk config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse risk config: %w", err)
	}
	return cfg, nil
}
