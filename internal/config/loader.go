package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	pathEnv     = "CONFIG_PATH"
	defaultPath = "./config.yaml"
)

// Load reads configuration from the file named by CONFIG_PATH, falling
// back to ./config.yaml. Environment variables override the file, and
// env-default tags fill whatever neither sets.
func Load() (*Config, error) {
	return LoadPath(os.Getenv(pathEnv))
}

// LoadPath is Load with the file path given by the caller, e.g. a -config
// flag. A non-empty path must exist. With an empty path the default file is
// optional and a missing one means environment-only configuration.
func LoadPath(path string) (*Config, error) {
	cfg, err := read(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return cfg, nil
}

func read(path string) (*Config, error) {
	var cfg Config

	optional := path == ""
	if optional {
		path = defaultPath
	}

	_, err := os.Stat(path)
	switch {
	case err == nil:
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	case optional && errors.Is(err, fs.ErrNotExist):
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
	default:
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	}
	return &cfg, nil
}
