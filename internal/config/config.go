// Package config loads ctfdump settings using viper.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// FileName is the configuration file ctfdump looks for when no path is given.
const FileName = "ctfdump.yaml"

// EnvPrefix prefixes environment overrides, e.g. CTFDUMP_LOG_LEVEL.
const EnvPrefix = "CTFDUMP"

// Config is the complete ctfdump configuration.
type Config struct {
	Log     LogConfig     `mapstructure:"log"`
	Decoder DecoderConfig `mapstructure:"decoder"`
	Reader  ReaderConfig  `mapstructure:"reader"`
	Output  OutputConfig  `mapstructure:"output"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string     `mapstructure:"level"`  // trace / debug / info / warn / error
	Format string     `mapstructure:"format"` // text / json
	File   FileConfig `mapstructure:"file"`
}

// FileConfig configures rotated file log output.
type FileConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	MaxBackups int    `mapstructure:"max_backups"`
	Compress   bool   `mapstructure:"compress"`
}

// DecoderConfig bounds the value decoder.
type DecoderConfig struct {
	MaxDepth    int `mapstructure:"max_depth"`
	MaxElements int `mapstructure:"max_elements"`
}

// ReaderConfig controls multi-stream reading.
type ReaderConfig struct {
	Workers            int  `mapstructure:"workers"` // 0 = one goroutine per stream
	SkipCorruptPackets bool `mapstructure:"skip_corrupt_packets"`
}

// OutputConfig selects how decoded events are printed.
type OutputConfig struct {
	Format string `mapstructure:"format"` // text / json
}

// Load reads the configuration. With an empty path, FileName is searched in
// the working directory and $HOME/.config/ctfdump; a missing file is not an
// error then. Environment variables override file values.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(strings.TrimSuffix(FileName, ".yaml"))
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/ctfdump")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Default returns the configuration used when nothing is configured.
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	_ = v.Unmarshal(&cfg)

	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file.enabled", false)
	v.SetDefault("log.file.path", "ctfdump.log")
	v.SetDefault("log.file.max_size_mb", 100)
	v.SetDefault("log.file.max_age_days", 30)
	v.SetDefault("log.file.max_backups", 5)
	v.SetDefault("log.file.compress", true)

	v.SetDefault("decoder.max_depth", 64)
	v.SetDefault("decoder.max_elements", 1<<20)

	v.SetDefault("reader.workers", 0)
	v.SetDefault("reader.skip_corrupt_packets", false)

	v.SetDefault("output.format", "text")
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	validLevels := map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Log.Level] {
		return fmt.Errorf("invalid log level: %s (must be trace/debug/info/warn/error)", c.Log.Level)
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return fmt.Errorf("invalid log format: %s (must be json/text)", c.Log.Format)
	}
	if c.Log.File.Enabled && c.Log.File.Path == "" {
		return errors.New("log.file.path is required when log.file.enabled=true")
	}

	if c.Decoder.MaxDepth < 1 {
		return fmt.Errorf("decoder.max_depth must be positive, got %d", c.Decoder.MaxDepth)
	}
	if c.Decoder.MaxElements < 0 {
		return fmt.Errorf("decoder.max_elements must not be negative, got %d", c.Decoder.MaxElements)
	}
	if c.Reader.Workers < 0 {
		return fmt.Errorf("reader.workers must not be negative, got %d", c.Reader.Workers)
	}

	if c.Output.Format != "json" && c.Output.Format != "text" {
		return fmt.Errorf("invalid output format: %s (must be json/text)", c.Output.Format)
	}

	return nil
}
