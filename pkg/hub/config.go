package hub

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/idconnect/idconnect/pkg/errors"
)

// LoadConfig reads a hub configuration from a YAML file.
func LoadConfig(path string) (Config, error) {
	raw, err := os.ReadFile(path) // #nosec G304 - config path comes from the caller
	if err != nil {
		return Config{}, errors.NewConfigurationError(
			fmt.Sprintf("failed to read config file %s", path), err)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, errors.NewConfigurationError(
			fmt.Sprintf("failed to parse config file %s", path), err)
	}
	return cfg, nil
}
