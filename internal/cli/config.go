package cli

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds user preferences loaded from the config file. Flags always
// take precedence over config values.
type Config struct {
	Partition PartitionConfig `toml:"partition"`
	Cache     CacheConfig     `toml:"cache"`
	Render    RenderConfig    `toml:"render"`
}

// PartitionConfig carries default partitioner options.
type PartitionConfig struct {
	Seed          uint64  `toml:"seed"`
	BalanceFactor float64 `toml:"balance_factor"`
	MaxPasses     int     `toml:"max_passes"`
	CoarsenTo     int     `toml:"coarsen_to"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	Disabled bool   `toml:"disabled"`
	Dir      string `toml:"dir"`
	RedisURL string `toml:"redis_url"`
}

// RenderConfig carries default rendering options.
type RenderConfig struct {
	Layout      string `toml:"layout"`
	ShowWeights bool   `toml:"show_weights"`
}

// configPath returns the config file location using XDG standard
// (~/.config/cleave/config.toml).
func configPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// loadConfig reads the user's config file. A missing file yields the zero
// config without error; a malformed file is reported.
func loadConfig() (Config, error) {
	path, err := configPath()
	if err != nil {
		return Config{}, nil
	}
	return loadConfigFile(path)
}

// loadConfigFile reads and decodes a config file at an explicit path.
func loadConfigFile(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
