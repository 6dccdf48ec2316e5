// Package config holds the options shared by the key and vault operations.
package config

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// DefaultMaxSize is the largest vault file processed when no limit is configured.
const DefaultMaxSize = "256MiB"

// Config controls how vault files are read and rewritten.
type Config struct {
	// MaxSize is the largest vault file accepted, in human readable form ("64MiB", "1GB").
	MaxSize string `mapstructure:"max-size" validate:"required,bytesize"`

	// PreserveTimestamps keeps the modification time of the vault file across rewrites.
	PreserveTimestamps bool `mapstructure:"preserve-timestamps"`
}

// Default returns a configuration with every field set to its default.
func Default() *Config {
	return &Config{
		MaxSize: DefaultMaxSize,
	}
}

// Load reads the options file at path on top of the defaults and validates the result.
// The format is inferred from the file extension.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)
	v.SetDefault("max-size", DefaultMaxSize)
	v.SetDefault("preserve-timestamps", false)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config %q: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config %q: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration against the struct tags.
func (c Config) Validate() error {
	validate := validator.New()

	if err := registerByteSize(validate); err != nil {
		return err
	}

	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("validating configuration: %w", err)
	}

	return nil
}

// MaxBytes returns MaxSize in bytes. It must only be called on a validated configuration.
func (c Config) MaxBytes() uint64 {
	size, err := humanize.ParseBytes(c.MaxSize)
	if err != nil {
		return 0
	}

	return size
}
