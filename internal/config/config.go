// Package config loads settings from defaults, an optional file and
// ROWSET_ environment variables.
package config

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "ROWSET_"

type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Database DatabaseConfig `mapstructure:"database"`
	Filter   FilterConfig   `mapstructure:"filter"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
	// Workers bounds concurrent loads.
	Workers int `mapstructure:"workers"`
}

// FilterConfig holds the defaults for query-clause filtering.
type FilterConfig struct {
	CaseSensitive bool `mapstructure:"casesensitive"`
	Trimmed       bool `mapstructure:"trimmed"`
	CacheSize     int  `mapstructure:"cachesize"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", ":memory:")
	v.SetDefault("database.workers", 4)
	v.SetDefault("filter.casesensitive", true)
	v.SetDefault("filter.trimmed", false)
	v.SetDefault("filter.cachesize", 256)
}

// Load reads the configuration. path names an optional config file (any
// format viper understands); an empty path skips it. Environment variables
// such as ROWSET_DATABASE_DSN override file values.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
	}

	// ROWSET_DATABASE_DSN -> database.dsn
	for _, env := range os.Environ() {
		key, value, ok := strings.Cut(env, "=")
		if !ok || !strings.HasPrefix(key, EnvPrefix) {
			continue
		}
		prop := strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
		prop = strings.TrimPrefix(strings.Replace(prop, "_", ".", 1), ".")
		v.Set(prop, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if cfg.Filter.CacheSize <= 0 {
		return nil, errors.Errorf("filter.cachesize must be positive, got %d", cfg.Filter.CacheSize)
	}
	return &cfg, nil
}
