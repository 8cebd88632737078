// Package config loads user settings from a YAML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const envConfig = "VOUCH_CONFIG"

// Config holds user-tunable settings. Zero values fall back to
// Default().
type Config struct {
	// TrustList seeds the trust list of newly created reviews.
	TrustList []string `yaml:"trustList"`
	// SkipGlobs extends the built-in path skip patterns.
	SkipGlobs []string `yaml:"skipGlobs"`
	// AutoApproveStaged is the policy default for new reviews.
	AutoApproveStaged bool `yaml:"autoApproveStaged"`
	// Listen is the serve command's listen address.
	Listen string `yaml:"listen"`
	// LogLevel is a zerolog level name: debug, info, warn, error.
	LogLevel string `yaml:"logLevel"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Listen:   "127.0.0.1:7317",
		LogLevel: "info",
	}
}

// Path returns the config file location: $VOUCH_CONFIG when set,
// otherwise ~/.vouch/config.yaml.
func Path() (string, error) {
	if v := os.Getenv(envConfig); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".vouch", "config.yaml"), nil
}

// Load reads the config file, returning defaults when it does not
// exist. Settings left out of the file keep their default values.
func Load() (Config, error) {
	path, err := Path()
	if err != nil {
		return Default(), err
	}
	return LoadFile(path)
}

// LoadFile reads a config file at an explicit path.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.Listen == "" {
		cfg.Listen = Default().Listen
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = Default().LogLevel
	}
	return cfg, nil
}
