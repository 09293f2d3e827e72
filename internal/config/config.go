// Package config provides configuration management for convey using Viper.
package config

import (
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/thoreinstein/convey/internal/errors"
	"github.com/thoreinstein/convey/internal/paths"
)

// AppName is the application name used for config file locations.
const AppName = "convey"

// Config represents the top-level configuration structure.
type Config struct {
	Version int `mapstructure:"version" yaml:"version"`

	// MergeStrategy is the default merge strategy for migrate when
	// --merge-strategy is not given: preserve-existing, overwrite, merge.
	MergeStrategy string `mapstructure:"merge_strategy" yaml:"merge_strategy"`

	Backup BackupConfig `mapstructure:"backup" yaml:"backup"`
}

// BackupConfig controls backup snapshot behavior.
type BackupConfig struct {
	// Dir overrides the backup root directory.
	Dir string `mapstructure:"dir" yaml:"dir"`

	// Retention is the number of backup snapshots to keep; older
	// snapshots are pruned after each successful backup.
	Retention int `mapstructure:"retention" yaml:"retention"`
}

// Init initializes Viper with defaults and search paths. Call once at
// startup before Load.
func Init() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.AddConfigPath(".")
	viper.AddConfigPath(filepath.Join(paths.ConfigHome(), AppName))

	viper.SetEnvPrefix("CONVEY")
	viper.AutomaticEnv()

	viper.SetDefault("version", 1)
	viper.SetDefault("merge_strategy", "preserve-existing")
	viper.SetDefault("backup.dir", paths.BackupRoot())
	viper.SetDefault("backup.retention", 5)
}

// Load reads the configuration file. With an explicit path, a missing
// file is an error; with an empty path, defaults apply when no config
// file exists in the search locations.
func Load(path string) (*Config, error) {
	if path != "" {
		viper.SetConfigFile(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if path != "" {
				return nil, errors.Wrapf(err, "config file not found at %s", path)
			}
		} else {
			return nil, errors.Wrap(err, "reading config file")
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshaling config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks structural constraints on loaded configuration.
func (c *Config) Validate() error {
	switch c.MergeStrategy {
	case "preserve-existing", "overwrite", "merge":
	default:
		return errors.Wrapf(errors.ErrInvalidConfig,
			"merge_strategy %q (valid: preserve-existing, overwrite, merge)", c.MergeStrategy)
	}
	if c.Backup.Retention < 0 {
		return errors.Wrap(errors.ErrInvalidConfig, "backup.retention must be non-negative")
	}
	return nil
}
