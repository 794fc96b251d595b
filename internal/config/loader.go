package config

import (
	"os"
	"path/filepath"

	"github.com/RahulJ0hn/Clarifi/internal/errorwrapper"
	"gopkg.in/yaml.v3"
)

// GetConfigPath determines the configuration file path.
// Priority:
// 1. -config command-line flag
// 2. CLARIFI_CONFIG_PATH environment variable
// 3. config.yaml in the current working directory
// 4. config.yaml in the executable's directory
func GetConfigPath(configFilePathFlag string) string {
	if configFilePathFlag != "" {
		if _, err := os.Stat(configFilePathFlag); err == nil {
			return configFilePathFlag
		}
	}

	if envPath := os.Getenv("CLARIFI_CONFIG_PATH"); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	locations := []string{}
	if cwd, err := os.Getwd(); err == nil {
		locations = append(locations, cwd)
	}
	if exePath, err := os.Executable(); err == nil {
		locations = append(locations, filepath.Dir(exePath))
	}

	for _, loc := range locations {
		path := filepath.Join(loc, "config.yaml")
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// LoadGlobalConfig reads and validates the configuration file. An empty path
// yields the defaults.
func LoadGlobalConfig(path string) (*GlobalConfig, error) {
	cfg := NewDefaultGlobalConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errorwrapper.WrapError(err, "reading config file "+path)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errorwrapper.WrapError(err, "parsing config file "+path)
		}
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
