package config

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDifficulty = 2
	DefaultWorkers    = 1
)

// MaxDifficulty is the number of hex characters in a SHA-256 digest.
const MaxDifficulty = sha256.Size * 2

var ErrInvalidDifficulty = errors.New("difficulty must be between 1 and 64")

type Config struct {
	Difficulty int `yaml:"difficulty"`
	// MaxAttempts bounds the nonce search; 0 leaves it unbounded.
	MaxAttempts uint64 `yaml:"max_attempts"`
	Workers     int    `yaml:"workers"`
}

func Default() Config {
	return Config{
		Difficulty: DefaultDifficulty,
		Workers:    DefaultWorkers,
	}
}

// Load reads the YAML file at path over the defaults. A missing file is not an
// error: the defaults are returned as they are.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Difficulty <= 0 || c.Difficulty > MaxDifficulty {
		return fmt.Errorf("%w: got %d", ErrInvalidDifficulty, c.Difficulty)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers cannot be negative: got %d", c.Workers)
	}
	return nil
}
