package shogi

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config is the shared settings file read by the koma binaries. Flags given
// on the command line take precedence.
type Config struct {
	Depth    int    `json:"depth"`
	Strategy string `json:"strategy"`
	Seed     int64  `json:"seed"`
	Logging  bool   `json:"logging"`
	Addr     string `json:"addr"`
}

func DefaultConfig() Config {
	return Config{Depth: 3, Strategy: "alphabeta", Seed: 1, Addr: ":8080"}
}

// FindConfigPath walks up from the working directory looking for
// config.json and returns its path and directory.
func FindConfigPath() (string, string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", "", err
	}
	dir := cwd
	for {
		path := filepath.Join(dir, "config.json")
		if _, err := os.Stat(path); err == nil {
			return path, dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", "", fmt.Errorf("config.json not found from %s", cwd)
}

// LoadConfig reads path over the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	if cfg.Depth < 0 {
		return Config{}, fmt.Errorf("%s: negative depth %d", path, cfg.Depth)
	}
	return cfg, nil
}

// ResolveConfig loads the file named by arg, or the discovered config.json
// when arg is empty. A missing discovered file yields the defaults.
func ResolveConfig(arg string) (Config, error) {
	if arg != "" {
		return LoadConfig(arg)
	}
	path, _, err := FindConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadConfig(path)
}

// NewStrategy builds the configured strategy.
func (c Config) NewStrategy() (Strategy, error) {
	return NewStrategy(c.Strategy, c.Depth, c.Seed)
}
